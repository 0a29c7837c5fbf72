package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"reviewflow/internal/adapters/observability"
	"reviewflow/internal/domain"
)

// State of the review wizard.
type State string

const (
	StateStep1      State = "step1"
	StateStep2      State = "step2"
	StateStep3      State = "step3"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

var transitions = map[State]map[State]struct{}{
	StateStep1:      {StateStep2: {}, StateCancelled: {}},
	StateStep2:      {StateStep1: {}, StateStep3: {}, StateCancelled: {}},
	StateStep3:      {StateStep2: {}, StateSubmitting: {}, StateCancelled: {}},
	StateSubmitting: {StateCompleted: {}, StateStep3: {}},
	StateCompleted:  {},
	StateCancelled:  {},
}

var stepStates = [...]State{StateStep1, StateStep2, StateStep3}

// CanTransition reports whether the wizard may move from one state to another.
func CanTransition(from, to State) bool {
	_, ok := transitions[from][to]
	return ok
}

// Step returns the 1-based step of an active state, 3 while submitting, 0 once closed.
func (s State) Step() int {
	switch s {
	case StateStep1:
		return 1
	case StateStep2:
		return 2
	case StateStep3, StateSubmitting:
		return 3
	}
	return 0
}

func (s State) Terminal() bool { return s == StateCompleted || s == StateCancelled }

type WizardOptions struct {
	// Author is the identity the review is filed under; empty means anonymous.
	Author              string
	RequireAspectRating bool
	// Strict panics on writes outside the active schema.
	Strict    bool
	Navigator domain.Navigator
}

type SubmitResult struct {
	ReviewID    int64
	Destination string
}

// Wizard drives one review through its three steps to submission.
// Methods are safe for concurrent use.
type Wizard struct {
	mu        sync.Mutex
	state     State
	store     *DraftStore
	validator StepValidator
	reviews   domain.ReviewStore
	nav       domain.Navigator
	author    string
	result    SubmitResult
}

// NewWizard starts a wizard at step 1 for an already resolved subject.
func NewWizard(subject domain.Subject, reviews domain.ReviewStore, opts WizardOptions) (*Wizard, error) {
	store := NewDraftStore(opts.Strict)
	if err := store.Init(subject); err != nil {
		return nil, err
	}
	nav := opts.Navigator
	if nav == nil {
		nav = noopNavigator{}
	}
	return &Wizard{
		state:     StateStep1,
		store:     store,
		validator: StepValidator{RequireAspectRating: opts.RequireAspectRating},
		reviews:   reviews,
		nav:       nav,
		author:    opts.Author,
	}, nil
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Wizard) Step() int { return w.State().Step() }

func (w *Wizard) Snapshot() domain.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Snapshot()
}

func (w *Wizard) Schema() domain.Schema {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Schema()
}

// Result is the outcome of a completed submission.
func (w *Wizard) Result() (SubmitResult, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result, w.state == StateCompleted
}

// Update writes one draft field. Writes are refused while a submission is
// in flight so a failed attempt returns the exact draft that was sent.
func (w *Wizard) Update(path string, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.state == StateSubmitting:
		return domain.ErrSubmitInFlight
	case w.state.Terminal():
		return domain.ErrWizardClosed
	}
	return w.store.Update(path, value)
}

// CanAdvance evaluates the gate of the current step.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Terminal() || w.state == StateSubmitting {
		return false
	}
	return w.validator.CanAdvance(w.state.Step(), w.store.Snapshot(), w.store.Faulted())
}

// Advance moves forward one step. A closed gate is a no-op reported as
// ErrValidationBlocked. Step 3 only leaves through Submit.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.activeLocked(); err != nil {
		return err
	}
	step := w.state.Step()
	if step >= len(stepStates) {
		return fmt.Errorf("%w: last step, submit instead", domain.ErrValidationBlocked)
	}
	if !w.validator.CanAdvance(step, w.store.Snapshot(), w.store.Faulted()) {
		return fmt.Errorf("%w: step %d", domain.ErrValidationBlocked, step)
	}
	return w.transitionLocked(stepStates[step])
}

// Retreat moves back one step without touching the draft.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.activeLocked(); err != nil {
		return err
	}
	step := w.state.Step()
	if step <= 1 {
		return domain.ErrNoPreviousStep
	}
	return w.transitionLocked(stepStates[step-2])
}

// Cancel discards the draft and sends the caller back. An in-flight
// submission cannot be cancelled.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	if err := w.activeLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := w.transitionLocked(StateCancelled); err != nil {
		w.mu.Unlock()
		return err
	}
	w.store.Discard()
	nav := w.nav
	w.mu.Unlock()

	nav.NavigateBack()
	return nil
}

// Submit persists the draft from step 3. The lock is released while the
// store call runs; the submitting state keeps other calls out.
func (w *Wizard) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	switch {
	case w.state == StateSubmitting:
		kind := w.kindLabel()
		w.mu.Unlock()
		observability.ObserveSubmission(kind, "in_flight")
		return SubmitResult{}, domain.ErrSubmitInFlight
	case w.state.Terminal():
		w.mu.Unlock()
		return SubmitResult{}, domain.ErrWizardClosed
	case w.state != StateStep3:
		st := w.state
		w.mu.Unlock()
		return SubmitResult{}, fmt.Errorf("%w: submit from %s", domain.ErrValidationBlocked, st)
	}
	draft := w.store.Snapshot()
	if !w.validator.CanAdvance(3, draft, w.store.Faulted()) {
		kind := w.kindLabel()
		w.mu.Unlock()
		observability.ObserveSubmission(kind, "blocked")
		return SubmitResult{}, fmt.Errorf("%w: step 3", domain.ErrValidationBlocked)
	}
	if err := w.transitionLocked(StateSubmitting); err != nil {
		w.mu.Unlock()
		return SubmitResult{}, err
	}
	review := ToReview(draft, w.author)
	w.mu.Unlock()

	id, err := w.reviews.SubmitReview(ctx, review)

	w.mu.Lock()
	if err != nil {
		_ = w.transitionLocked(StateStep3)
		w.mu.Unlock()
		observability.ObserveSubmission(string(review.SubjectKind), "failed")
		log.Warn().Err(err).Str("kind", string(review.SubjectKind)).Msg("review submission failed")
		return SubmitResult{}, fmt.Errorf("%w: %w", domain.ErrSubmissionFailed, err)
	}
	w.result = SubmitResult{ReviewID: id, Destination: DestinationFor(draft.Subject)}
	_ = w.transitionLocked(StateCompleted)
	res, nav := w.result, w.nav
	w.mu.Unlock()

	observability.ObserveSubmission(string(review.SubjectKind), "ok")
	log.Info().Int64("review_id", id).Str("destination", res.Destination).Msg("review submitted")
	nav.NavigateTo(res.Destination)
	return res, nil
}

func (w *Wizard) activeLocked() error {
	switch {
	case w.state == StateSubmitting:
		return domain.ErrSubmitInFlight
	case w.state.Terminal():
		return domain.ErrWizardClosed
	}
	return nil
}

func (w *Wizard) transitionLocked(to State) error {
	from := w.state
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid wizard transition %s -> %s", from, to)
	}
	w.state = to
	observability.ObserveTransition(string(from), string(to))
	log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("wizard transition")
	return nil
}

func (w *Wizard) kindLabel() string {
	return string(w.store.Schema().Kind)
}

func logUpdateErr(path string, err error) {
	ev := log.Warn()
	if errors.Is(err, domain.ErrUnknownField) {
		ev = log.Error()
	}
	ev.Err(err).Str("path", path).Msg("draft update rejected")
}

type noopNavigator struct{}

func (noopNavigator) NavigateTo(string) {}
func (noopNavigator) NavigateBack()     {}
