package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"reviewflow/internal/domain"
)

// Entry is what the caller knows when opening the wizard. At most one id is set.
type Entry struct {
	PropertyID string `json:"propertyId,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
}

// Resolution is either a concrete subject or a request to let the user pick a kind.
type Resolution struct {
	Subject     *domain.Subject
	NeedsChoice bool
}

type SubjectResolver struct {
	catalog domain.Catalog
	group   singleflight.Group
}

func NewSubjectResolver(c domain.Catalog) *SubjectResolver {
	return &SubjectResolver{catalog: c}
}

// Resolve turns an entry into a subject. Any catalog failure for a supplied id
// is reported as ErrSubjectNotFound wrapping the cause.
func (r *SubjectResolver) Resolve(ctx context.Context, e Entry) (Resolution, error) {
	pid, sid := strings.TrimSpace(e.PropertyID), strings.TrimSpace(e.ProviderID)
	switch {
	case pid != "" && sid != "":
		return Resolution{}, domain.ErrConflictingEntry
	case pid != "":
		return r.fetch(ctx, domain.KindProperty, pid)
	case sid != "":
		return r.fetch(ctx, domain.KindService, sid)
	}
	return Resolution{NeedsChoice: true}, nil
}

// ChooseKind establishes a subject from a user-picked kind with no concrete target.
func (r *SubjectResolver) ChooseKind(kind domain.SubjectKind) (domain.Subject, error) {
	if _, ok := domain.SchemaFor(kind); !ok {
		return domain.Subject{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	return domain.Subject{Kind: kind}, nil
}

func (r *SubjectResolver) fetch(ctx context.Context, kind domain.SubjectKind, id string) (Resolution, error) {
	key := string(kind) + ":" + id
	// the shared fetch outlives any single caller; each caller waits on its own ctx
	ch := r.group.DoChan(key, func() (any, error) {
		return r.catalog.FetchSubject(context.WithoutCancel(ctx), kind, id)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("kind", string(kind)).Str("id", id).Msg("subject lookup failed")
		return Resolution{}, fmt.Errorf("%w: %s %s: %w", domain.ErrSubjectNotFound, kind, id, res.Err)
	}
	sub := res.Val.(domain.Subject)
	if res.Shared {
		sub = cloneSubject(sub)
	}
	// the catalog is trusted for presentation only; identity comes from the entry
	sub.Kind, sub.ID = kind, id
	return Resolution{Subject: &sub}, nil
}

func cloneSubject(s domain.Subject) domain.Subject {
	out := s
	out.Services = append([]string(nil), s.Services...)
	return out
}
