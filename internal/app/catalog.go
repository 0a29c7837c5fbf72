package app

import (
	"context"
	"fmt"
	"time"

	"reviewflow/internal/domain"
)

// CatalogService serves subject presentation data, cache first.
type CatalogService struct {
	client   domain.CatalogClient
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(c domain.CatalogClient, cache domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{client: c, cache: cache, cacheTTL: ttl}
}

func subjectKey(kind domain.SubjectKind, id string) string {
	return fmt.Sprintf("subject:%s:%s", kind, id)
}

func (s *CatalogService) FetchSubject(ctx context.Context, kind domain.SubjectKind, id string) (domain.Subject, error) {
	key := subjectKey(kind, id)
	var sub domain.Subject
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &sub); ok {
			return sub, nil
		}
	}

	var (
		raw map[string]any
		err error
	)
	switch kind {
	case domain.KindProperty:
		raw, err = s.client.GetProperty(ctx, id)
	case domain.KindService:
		raw, err = s.client.GetProvider(ctx, id)
	default:
		return domain.Subject{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if err != nil {
		// misses are not cached; the subject may be published later
		return domain.Subject{}, err
	}
	if raw == nil {
		return domain.Subject{}, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}

	sub = mapSubject(kind, id, raw)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, sub, int(s.cacheTTL.Seconds()))
	}
	return sub, nil
}

// Forget drops a cached subject.
func (s *CatalogService) Forget(ctx context.Context, kind domain.SubjectKind, id string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Del(ctx, subjectKey(kind, id))
}
