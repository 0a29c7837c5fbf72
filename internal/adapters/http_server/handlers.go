// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"reviewflow/internal/app"
	"reviewflow/internal/domain"
)

const maxLimit = 200

type Handlers struct {
	Q *app.QueryService
	S *app.Sessions
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// reviewItem is a stored review plus its read-only star rendering.
type reviewItem struct {
	domain.Review
	Stars string `json:"stars"`
}

type reviewsResponse struct {
	Items      []reviewItem `json:"items"`
	NextCursor *string      `json:"nextCursor,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Get("/v1/reviews", h.listFeed)
	s.mux.Get("/v1/properties/{id}/reviews", h.listSubjectReviews(domain.KindProperty))
	s.mux.Get("/v1/services/{id}/reviews", h.listSubjectReviews(domain.KindService))

	s.mux.Route("/v1/wizards", func(r chi.Router) {
		r.Post("/", h.startWizard)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", h.getWizard)
			r.Post("/kind", h.chooseKind)
			r.Patch("/draft", h.updateDraft)
			r.Post("/advance", h.advance)
			r.Post("/retreat", h.retreat)
			r.Post("/cancel", h.cancel)
			r.Post("/submit", h.submit)
		})
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write reviews body")
	}
}

func pageQuery(w http.ResponseWriter, r *http.Request) (domain.PageQuery, bool) {
	q := r.URL.Query()
	page := domain.PageQuery{Limit: app.DefaultLimit, Sort: app.DefaultSort}
	if ls := q.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return page, false
		}
		page.Limit = l
	}
	switch s := q.Get("sort"); s {
	case "":
	case "-created_at", "created_at":
		page.Sort = s
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid sort", "sort must be created_at or -created_at")
		return page, false
	}
	if c := q.Get("cursor"); c != "" {
		page.Cursor = &c
	}
	return page, true
}

func toResponse(p domain.ReviewsPage) reviewsResponse {
	out := reviewsResponse{Items: make([]reviewItem, 0, len(p.Items)), NextCursor: p.NextCursor}
	for _, rv := range p.Items {
		out.Items = append(out.Items, reviewItem{Review: rv, Stars: app.Render(rv.Rating, nil, false).String()})
	}
	return out
}

func (h *Handlers) listSubjectReviews(kind domain.SubjectKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		page, ok := pageQuery(w, r)
		if !ok {
			return
		}
		out, err := h.Q.ListSubjectReviews(r.Context(), kind, id, page)
		if err != nil {
			writeError(w, err)
			return
		}
		writeCached(w, r, toResponse(out))
	}
}

func (h *Handlers) listFeed(w http.ResponseWriter, r *http.Request) {
	page, ok := pageQuery(w, r)
	if !ok {
		return
	}
	out, err := h.Q.ListFeed(r.Context(), page)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, toResponse(out))
}
