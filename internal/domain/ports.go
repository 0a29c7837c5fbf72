package domain

import "context"

// ReviewStore is the persistence collaborator the wizard submits to.
type ReviewStore interface {
	SubmitReview(ctx context.Context, r Review) (int64, error)
}

type ReviewRepository interface {
	ReviewStore

	// Read paths
	ListSubjectReviews(ctx context.Context, kind SubjectKind, id string, pg PageQuery) (ReviewsPage, error)
	ListFeed(ctx context.Context, pg PageQuery) (ReviewsPage, error)
}

// Catalog looks up presentation data for a subject. Returns ErrNotFound when absent.
type Catalog interface {
	FetchSubject(ctx context.Context, kind SubjectKind, id string) (Subject, error)
}

// CatalogClient is the raw remote catalog.
type CatalogClient interface {
	GetProperty(ctx context.Context, id string) (map[string]any, error)
	GetProvider(ctx context.Context, id string) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Navigator receives the wizard's exit routes.
type Navigator interface {
	NavigateTo(route string)
	NavigateBack()
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type ReviewsPage struct {
	Items      []Review `json:"items"`
	NextCursor *string  `json:"nextCursor,omitempty"`
}
