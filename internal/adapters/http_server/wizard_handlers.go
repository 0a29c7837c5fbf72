package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewflow/internal/app"
	"reviewflow/internal/domain"
)

const maxBody = 1 << 20

type startRequest struct {
	PropertyID string `json:"propertyId"`
	ProviderID string `json:"providerId"`
	Author     string `json:"author"`
}

type kindRequest struct {
	Kind string `json:"kind"`
}

type updateRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

type wizardView struct {
	SessionID   string          `json:"sessionId"`
	NeedsChoice bool            `json:"needsChoice"`
	State       app.State       `json:"state,omitempty"`
	Step        int             `json:"step,omitempty"`
	CanAdvance  bool            `json:"canAdvance"`
	Subject     *domain.Subject `json:"subject,omitempty"`
	Draft       *domain.Draft   `json:"draft,omitempty"`
	Schema      *domain.Schema  `json:"schema,omitempty"`
	ReviewID    int64           `json:"reviewId,omitempty"`
	Destination string          `json:"destination,omitempty"`
}

func viewOf(s *app.Session) wizardView {
	v := wizardView{SessionID: s.ID, NeedsChoice: s.NeedsChoice(), Destination: s.Route()}
	if s.Cancelled() {
		v.State = app.StateCancelled
	}
	w := s.Wizard()
	if w == nil {
		return v
	}
	v.State = w.State()
	v.Step = w.Step()
	v.CanAdvance = w.CanAdvance()
	if !v.State.Terminal() {
		d := w.Snapshot()
		sc := w.Schema()
		v.Draft, v.Schema, v.Subject = &d, &sc, d.Subject
	}
	if res, ok := w.Result(); ok {
		v.ReviewID = res.ReviewID
	}
	return v
}

// problemFor maps workflow errors to HTTP status and title.
func problemFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrSubmissionFailed):
		return http.StatusBadGateway, "Submission Failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request Cancelled"
	case errors.Is(err, domain.ErrSubjectNotFound):
		return http.StatusNotFound, "Subject Not Found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, domain.ErrConflictingEntry):
		return http.StatusBadRequest, "Conflicting Entry"
	case errors.Is(err, domain.ErrValidationBlocked):
		return http.StatusConflict, "Validation Blocked"
	case errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict, "Submission In Flight"
	case errors.Is(err, domain.ErrNoPreviousStep),
		errors.Is(err, domain.ErrWizardClosed),
		errors.Is(err, domain.ErrSubjectResolved):
		return http.StatusConflict, "Invalid Wizard State"
	case errors.Is(err, domain.ErrUnknownField),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrUnknownKind):
		return http.StatusUnprocessableEntity, "Invalid Draft Value"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

func writeError(w http.ResponseWriter, err error) {
	status, title := problemFor(err)
	if status >= 500 {
		log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeProblem(w, status, title, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	return decodeBody(w, r, dst, false)
}

// decodeBody reads one JSON value; allowEmpty leaves dst untouched on an empty body.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if allowEmpty && errors.Is(err, io.EOF) {
		return true
	}
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

// session loads the path session, writing a 404 when it is gone.
func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	s, ok := h.S.Get(chi.URLParam(r, "sid"))
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "wizard session not found or expired")
		return nil, false
	}
	return s, true
}

// wizard is session plus a seeded wizard; a generic entry must pick a kind first.
func (h *Handlers) wizard(w http.ResponseWriter, r *http.Request) (*app.Session, *app.Wizard, bool) {
	s, ok := h.session(w, r)
	if !ok {
		return nil, nil, false
	}
	wz := s.Wizard()
	if wz == nil {
		writeProblem(w, http.StatusConflict, "Kind Required", "choose a subject kind first")
		return nil, nil, false
	}
	return s, wz, true
}

func (h *Handlers) startWizard(w http.ResponseWriter, r *http.Request) {
	// a generic entry may post no body at all
	var req startRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	s, err := h.S.Start(r.Context(), app.Entry{PropertyID: req.PropertyID, ProviderID: req.ProviderID}, req.Author)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(s))
}

func (h *Handlers) getWizard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *Handlers) chooseKind(w http.ResponseWriter, r *http.Request) {
	var req kindRequest
	if !decode(w, r, &req) {
		return
	}
	kind, ok := domain.ParseKind(req.Kind)
	if !ok {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid Draft Value", "kind must be property or service")
		return
	}
	s, err := h.S.ChooseKind(chi.URLParam(r, "sid"), kind)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *Handlers) updateDraft(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if !decode(w, r, &req) {
		return
	}
	if err := wz.Update(req.Path, req.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *Handlers) advance(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*app.Wizard).Advance)
}

func (h *Handlers) retreat(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, (*app.Wizard).Retreat)
}

// cancel also works from the kind chooser, before any wizard exists.
func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	s, err := h.S.Cancel(chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *Handlers) step(w http.ResponseWriter, r *http.Request, move func(*app.Wizard) error) {
	s, wz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if err := move(wz); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	s, wz, ok := h.wizard(w, r)
	if !ok {
		return
	}
	if _, err := wz.Submit(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}
