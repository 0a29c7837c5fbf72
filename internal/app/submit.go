package app

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"reviewflow/internal/domain"
)

// Destination routes after a successful submission.
const (
	FeedRoute           = "/reviews"
	propertyReviewsPath = "/properties/%s/reviews"
	serviceReviewsPath  = "/services/%s/reviews"
)

// DestinationFor picks where to go after submitting: the subject's review list,
// or the general feed when the subject was never concretized.
func DestinationFor(s *domain.Subject) string {
	if s == nil || !s.Concrete() {
		return FeedRoute
	}
	id := url.PathEscape(s.ID)
	switch s.Kind {
	case domain.KindProperty:
		return fmt.Sprintf(propertyReviewsPath, id)
	case domain.KindService:
		return fmt.Sprintf(serviceReviewsPath, id)
	}
	return FeedRoute
}

// ToReview converts a validated draft into the record handed to the review store.
func ToReview(d domain.Draft, author string) domain.Review {
	r := domain.Review{
		Rating:    d.OverallRating,
		Title:     strings.TrimSpace(d.Title),
		Text:      strings.TrimSpace(d.Content),
		Recommend: d.Recommend,
		Photos:    append([]string(nil), d.Photos...),
		CreatedAt: time.Now().UTC(),

		AllowContact: d.Contact.AllowContact,
	}
	if d.Contact.AllowContact {
		r.ContactPreference = d.Contact.Preference
	}
	if a := strings.TrimSpace(author); a != "" {
		r.Author = &a
	}
	if d.Subject != nil {
		r.SubjectKind = d.Subject.Kind
		r.SubjectID = ptrStr(d.Subject.ID)
	}

	switch v := d.Variant.(type) {
	case *domain.PropertyFields:
		r.StayDuration = ptrStr(string(v.StayDuration))
		r.Aspects = ratedOnly(v.AspectRatings)
	case *domain.ServiceFields:
		r.ServiceType = ptrStr(v.ServiceType)
		r.ProjectDetails = ptrStr(strings.TrimSpace(v.ProjectDetails))
		r.Aspects = ratedOnly(v.AspectRatings)
	}
	return r
}

// ratedOnly drops unrated (0) aspects; nil when none were rated.
func ratedOnly(in map[string]int) map[string]int {
	var out map[string]int
	for k, v := range in {
		if v <= 0 {
			continue
		}
		if out == nil {
			out = make(map[string]int, len(in))
		}
		out[k] = v
	}
	return out
}
