package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reviewflow/internal/domain"
)

const (
	DefaultSort  = "-created_at"
	DefaultLimit = 50
	feedKey      = "feed"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func reviewsKey(scope string, pg domain.PageQuery) string {
	return fmt.Sprintf("reviews:%s:%d:%s", scope, pg.Limit, pg.Sort)
}

func subjectScope(kind domain.SubjectKind, id string) string {
	return string(kind) + ":" + id
}

func (s *QueryService) ListSubjectReviews(ctx context.Context, kind domain.SubjectKind, id string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return s.cached(ctx, reviewsKey(subjectScope(kind, id), pg), pg, func() (domain.ReviewsPage, error) {
		return s.repo.ListSubjectReviews(ctx, kind, id, pg)
	})
}

func (s *QueryService) ListFeed(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return s.cached(ctx, reviewsKey(feedKey, pg), pg, func() (domain.ReviewsPage, error) {
		return s.repo.ListFeed(ctx, pg)
	})
}

func (s *QueryService) cached(ctx context.Context, key string, pg domain.PageQuery, load func() (domain.ReviewsPage, error)) (domain.ReviewsPage, error) {
	if pg.Cursor != nil {
		// only first pages are cached
		return load()
	}
	var out domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	rs, err := load()
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array (prevents tests from mutating cached value)
	copyRS := deepCopyReviewsPage(rs)

	// optional size guard
	if b, _ := json.Marshal(copyRS); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, copyRS, int(s.cacheTTL.Seconds()))
	}
	return copyRS, nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.Review, n)
		copy(out.Items, in.Items)
	}
	return out
}
