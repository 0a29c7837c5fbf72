package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewflow/internal/app"
	"reviewflow/internal/domain"
)

func harbourLoft() domain.Subject {
	return domain.Subject{Kind: domain.KindProperty, ID: "p-1", Name: "Harbour Loft", Locale: "Lisbon, PT"}
}

func newWizard(t *testing.T, s domain.Subject, store domain.ReviewStore, nav domain.Navigator) *app.Wizard {
	t.Helper()
	w, err := app.NewWizard(s, store, app.WizardOptions{Author: "ana", Navigator: nav})
	require.NoError(t, err)
	return w
}

func fillBasics(t *testing.T, w *app.Wizard) {
	t.Helper()
	require.NoError(t, w.Update(app.PathOverallRating, 5))
	require.NoError(t, w.Update(app.PathTitle, "Great place"))
	require.NoError(t, w.Update(app.PathContent, strings.Repeat("x", 60)))
}

func toStep3(t *testing.T, w *app.Wizard) {
	t.Helper()
	fillBasics(t, w)
	require.NoError(t, w.Advance())
	require.NoError(t, w.Advance())
	require.Equal(t, app.StateStep3, w.State())
}

func TestWizard_BlockedAdvanceIsNoop(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)

	assert.False(t, w.CanAdvance())
	err := w.Advance()
	assert.ErrorIs(t, err, domain.ErrValidationBlocked)
	assert.Equal(t, app.StateStep1, w.State())
	assert.Equal(t, 1, w.Step())
}

func TestWizard_AdvanceWithValidBasics(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)
	fillBasics(t, w)

	assert.True(t, w.CanAdvance())
	require.NoError(t, w.Advance())
	assert.Equal(t, 2, w.Step())
}

func TestWizard_WhitespacePaddedContentStaysBlocked(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)
	require.NoError(t, w.Update(app.PathOverallRating, 4))
	require.NoError(t, w.Update(app.PathTitle, "Nice"))
	require.NoError(t, w.Update(app.PathContent, "short"+strings.Repeat(" ", 45)))

	assert.False(t, w.CanAdvance())
	assert.ErrorIs(t, w.Advance(), domain.ErrValidationBlocked)
	assert.Equal(t, 1, w.Step())
}

func TestWizard_RetreatKeepsDraft(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)
	toStep3(t, w)
	before := w.Snapshot()

	require.NoError(t, w.Retreat())
	require.NoError(t, w.Retreat())
	assert.Equal(t, app.StateStep1, w.State())
	assert.ErrorIs(t, w.Retreat(), domain.ErrNoPreviousStep)
	assert.Equal(t, before, w.Snapshot())
}

func TestWizard_Step3LeavesOnlyBySubmit(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)
	toStep3(t, w)
	assert.ErrorIs(t, w.Advance(), domain.ErrValidationBlocked)
	assert.Equal(t, app.StateStep3, w.State())
}

func TestWizard_SubmitBeforeStep3(t *testing.T) {
	repo := &fakeRepo{}
	w := newWizard(t, harbourLoft(), repo, nil)
	fillBasics(t, w)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidationBlocked)
	assert.Empty(t, repo.submitted)
}

func TestWizard_SubmitSuccess(t *testing.T) {
	repo := &fakeRepo{}
	nav := &app.RouteRecorder{}
	w := newWizard(t, harbourLoft(), repo, nav)
	toStep3(t, w)
	require.NoError(t, w.Update(app.AspectPath(domain.AspectLocation), 4))

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ReviewID)
	assert.Equal(t, "/properties/p-1/reviews", res.Destination)
	assert.Equal(t, app.StateCompleted, w.State())
	assert.Equal(t, res.Destination, nav.Route())

	got, ok := w.Result()
	assert.True(t, ok)
	assert.Equal(t, res, got)

	require.Len(t, repo.submitted, 1)
	r := repo.submitted[0]
	assert.Equal(t, 5, r.Rating)
	assert.Equal(t, "ana", deref(r.Author))
	assert.Equal(t, "p-1", deref(r.SubjectID))
	assert.Equal(t, map[string]int{domain.AspectLocation: 4}, r.Aspects)

	assert.ErrorIs(t, w.Update(app.PathTitle, "late edit"), domain.ErrWizardClosed)
	_, err = w.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrWizardClosed)
}

func TestWizard_SubmitFailureRestoresStep3(t *testing.T) {
	boom := errors.New("connection reset")
	w := newWizard(t, harbourLoft(), &fakeRepo{err: boom}, nil)
	toStep3(t, w)
	require.NoError(t, w.Update(app.PathPhotos, []string{"front.jpg"}))
	before := w.Snapshot()

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, app.StateStep3, w.State())
	assert.Equal(t, before, w.Snapshot())

	_, ok := w.Result()
	assert.False(t, ok)
}

func TestWizard_FaultedDraftCannotSubmit(t *testing.T) {
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nil)
	toStep3(t, w)
	require.ErrorIs(t, w.Update(app.AspectPath(domain.AspectPunctuality), 5), domain.ErrUnknownField)

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidationBlocked)

	require.NoError(t, w.Update(app.PathTitle, "Great place, really"))
	_, err = w.Submit(context.Background())
	assert.NoError(t, err)
}

func TestWizard_CancelDiscardsAndGoesBack(t *testing.T) {
	nav := &app.RouteRecorder{}
	w := newWizard(t, harbourLoft(), &fakeRepo{}, nav)
	fillBasics(t, w)

	require.NoError(t, w.Cancel())
	assert.Equal(t, app.StateCancelled, w.State())
	assert.Equal(t, app.BackRoute, nav.Route())
	assert.Equal(t, 0, w.Step())
	assert.Nil(t, w.Snapshot().Subject)

	assert.ErrorIs(t, w.Cancel(), domain.ErrWizardClosed)
	assert.ErrorIs(t, w.Advance(), domain.ErrWizardClosed)
}

// blockingStore holds SubmitReview until released.
type blockingStore struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) SubmitReview(ctx context.Context, r domain.Review) (int64, error) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return 42, nil
}

func TestWizard_InFlightSubmitRejectsEverything(t *testing.T) {
	store := &blockingStore{entered: make(chan struct{}), release: make(chan struct{})}
	w := newWizard(t, harbourLoft(), store, nil)
	toStep3(t, w)

	type outcome struct {
		res app.SubmitResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := w.Submit(context.Background())
		done <- outcome{res, err}
	}()
	<-store.entered

	assert.Equal(t, app.StateSubmitting, w.State())
	assert.Equal(t, 3, w.Step())
	assert.False(t, w.CanAdvance())
	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrSubmitInFlight)
	assert.ErrorIs(t, w.Update(app.PathTitle, "changed"), domain.ErrSubmitInFlight)
	assert.ErrorIs(t, w.Cancel(), domain.ErrSubmitInFlight)
	assert.ErrorIs(t, w.Retreat(), domain.ErrSubmitInFlight)

	close(store.release)
	out := <-done
	require.NoError(t, out.err)
	assert.Equal(t, int64(42), out.res.ReviewID)
	assert.Equal(t, app.StateCompleted, w.State())
}

func TestWizard_GenericSubjectGoesToFeed(t *testing.T) {
	repo := &fakeRepo{}
	w := newWizard(t, domain.Subject{Kind: domain.KindService}, repo, nil)
	toStep3(t, w)

	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, app.FeedRoute, res.Destination)
	assert.Nil(t, repo.submitted[0].SubjectID)
	assert.Equal(t, domain.KindService, repo.submitted[0].SubjectKind)
}

func TestCanTransition(t *testing.T) {
	assert.True(t, app.CanTransition(app.StateStep1, app.StateStep2))
	assert.True(t, app.CanTransition(app.StateSubmitting, app.StateStep3))
	assert.False(t, app.CanTransition(app.StateStep1, app.StateStep3))
	assert.False(t, app.CanTransition(app.StateSubmitting, app.StateCancelled))
	assert.False(t, app.CanTransition(app.StateCompleted, app.StateStep1))
	assert.False(t, app.CanTransition(app.StateCancelled, app.StateStep1))
}
