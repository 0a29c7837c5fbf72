package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"reviewflow/internal/domain"
)

// commonLimits are the list sizes whose cache entries get evicted on submit.
var commonLimits = []int{DefaultLimit, 100, 200}

// SubmissionService is the ReviewStore the wizards submit to: it persists the
// review and evicts the list caches that would now be stale.
type SubmissionService struct {
	repo  domain.ReviewStore
	cache domain.Cache
}

func NewSubmissionService(r domain.ReviewStore, cache domain.Cache) *SubmissionService {
	return &SubmissionService{repo: r, cache: cache}
}

func (s *SubmissionService) SubmitReview(ctx context.Context, r domain.Review) (int64, error) {
	if r.Rating < 1 || r.Rating > MaxRating {
		return 0, fmt.Errorf("%w: rating %d", domain.ErrInvalidValue, r.Rating)
	}
	id, err := s.repo.SubmitReview(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("persist review: %w", err)
	}

	if s.cache != nil {
		if r.SubjectID != nil {
			s.invalidateReviews(ctx, subjectScope(r.SubjectKind, *r.SubjectID))
		}
		s.invalidateReviews(ctx, feedKey)
	}
	log.Debug().Int64("id", id).Str("kind", string(r.SubjectKind)).Msg("review persisted")
	return id, nil
}

// invalidate the most common review cache variants
func (s *SubmissionService) invalidateReviews(ctx context.Context, scope string) {
	for _, lim := range commonLimits {
		key := reviewsKey(scope, domain.PageQuery{Limit: lim, Sort: DefaultSort})
		if err := s.cache.Del(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache evict failed")
		}
	}
}
