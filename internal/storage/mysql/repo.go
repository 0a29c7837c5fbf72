package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"reviewflow/internal/domain"
)

const (
	sortNewest   = "-created_at"
	sortOldest   = "created_at"
	defaultLimit = 50
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
func nullPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SubmitReview(ctx context.Context, rv domain.Review) (int64, error) {
	var aspects, photos []byte
	if len(rv.Aspects) > 0 {
		aspects, _ = json.Marshal(rv.Aspects)
	}
	if len(rv.Photos) > 0 {
		photos, _ = json.Marshal(rv.Photos)
	}
	var pref any
	if rv.ContactPreference != "" {
		pref = string(rv.ContactPreference)
	}

	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		string(rv.SubjectKind),
		valStr(rv.SubjectID),
		valStr(rv.Author),
		rv.Rating,
		rv.Title,
		rv.Text,
		rv.Recommend,
		valStr(rv.StayDuration),
		valStr(rv.ServiceType),
		valStr(rv.ProjectDetails),
		valJSON(aspects),
		valJSON(photos),
		rv.AllowContact,
		pref,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) ListSubjectReviews(ctx context.Context, kind domain.SubjectKind, id string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit, cursor, newest, err := pageArgs(pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	if newest {
		return r.list(ctx, limit, listSubjectNewestSQL, string(kind), id, cursor, cursor, limit+1)
	}
	return r.list(ctx, limit, listSubjectOldestSQL, string(kind), id, cursor, limit+1)
}

func (r *Repo) ListFeed(ctx context.Context, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit, cursor, newest, err := pageArgs(pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	if newest {
		return r.list(ctx, limit, listFeedNewestSQL, cursor, cursor, limit+1)
	}
	return r.list(ctx, limit, listFeedOldestSQL, cursor, limit+1)
}

func pageArgs(pg domain.PageQuery) (limit int, cursor int64, newest bool, err error) {
	limit = pg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	switch pg.Sort {
	case "", sortNewest:
		newest = true
	case sortOldest:
	default:
		return 0, 0, false, fmt.Errorf("%w: sort %q", domain.ErrInvalidValue, pg.Sort)
	}
	if pg.Cursor != nil && *pg.Cursor != "" {
		cursor, err = strconv.ParseInt(*pg.Cursor, 10, 64)
		if err != nil || cursor <= 0 {
			return 0, 0, false, fmt.Errorf("%w: cursor %q", domain.ErrInvalidValue, *pg.Cursor)
		}
	}
	return limit, cursor, newest, nil
}

// list runs a page query that asks for one row past limit; that extra row
// only tells us whether a next page exists.
func (r *Repo) list(ctx context.Context, limit int, query string, args ...any) (domain.ReviewsPage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	out := make([]domain.Review, 0, limit)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}

	page := domain.ReviewsPage{Items: out}
	if len(out) > limit {
		page.Items = out[:limit]
		next := strconv.FormatInt(out[limit-1].ID, 10)
		page.NextCursor = &next
	}
	return page, nil
}

func scanReview(rows *sql.Rows) (domain.Review, error) {
	var rv domain.Review
	var (
		kind                       string
		subjectID, author          sql.NullString
		stay, serviceType, project sql.NullString
		aspectsRaw, photosRaw      []byte
		pref                       sql.NullString
	)
	if err := rows.Scan(
		&rv.ID,
		&kind,
		&subjectID,
		&author,
		&rv.Rating,
		&rv.Title,
		&rv.Text,
		&rv.Recommend,
		&stay,
		&serviceType,
		&project,
		&aspectsRaw,
		&photosRaw,
		&rv.AllowContact,
		&pref,
		&rv.CreatedAt,
	); err != nil {
		return domain.Review{}, err
	}

	rv.SubjectKind = domain.SubjectKind(kind)
	rv.SubjectID = nullPtr(subjectID)
	rv.Author = nullPtr(author)
	rv.StayDuration = nullPtr(stay)
	rv.ServiceType = nullPtr(serviceType)
	rv.ProjectDetails = nullPtr(project)
	if pref.Valid {
		rv.ContactPreference = domain.ContactPreference(pref.String)
	}
	if len(aspectsRaw) > 0 {
		if err := json.Unmarshal(aspectsRaw, &rv.Aspects); err != nil {
			return domain.Review{}, fmt.Errorf("review %d aspects: %w", rv.ID, err)
		}
	}
	if len(photosRaw) > 0 {
		if err := json.Unmarshal(photosRaw, &rv.Photos); err != nil {
			return domain.Review{}, fmt.Errorf("review %d photos: %w", rv.ID, err)
		}
	}
	return rv, nil
}
