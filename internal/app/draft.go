package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"reviewflow/internal/domain"
)

// Draft paths accepted by DraftStore.Update.
const (
	PathTitle         = "title"
	PathContent       = "content"
	PathOverallRating = "overallRating"
	PathRecommend     = "recommend"
	PathPhotos        = "photos"
	PathAllowContact  = "contactConsent.allowContact"
	PathPreference    = "contactConsent.preference"

	variantPrefix = "variantFields."
	aspectPrefix  = "variantFields.aspectRatings."
)

const MaxRating = 5

// AspectPath returns the update path of an aspect rating.
func AspectPath(key string) string { return aspectPrefix + key }

// VariantPath returns the update path of a variant extra field.
func VariantPath(name string) string { return variantPrefix + name }

// DraftStore owns the authoritative draft of one wizard session.
// All mutation goes through Update; readers get copies from Snapshot.
// It is not safe for concurrent use; Wizard serializes access.
type DraftStore struct {
	draft   domain.Draft
	schema  domain.Schema
	faulted bool
	strict  bool
}

// NewDraftStore returns an empty store. In strict mode a write to a field
// outside the active schema panics instead of only being rejected.
func NewDraftStore(strict bool) *DraftStore {
	return &DraftStore{strict: strict}
}

// Init seeds a fresh draft for subject using its kind's schema.
func (s *DraftStore) Init(subject domain.Subject) error {
	schema, ok := domain.SchemaFor(subject.Kind)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownKind, subject.Kind)
	}
	variant, ok := domain.NewVariantFields(schema)
	if !ok {
		return fmt.Errorf("%w: no variant for %q", domain.ErrUnknownKind, subject.Kind)
	}
	sub := subject
	s.schema = schema
	s.faulted = false
	// cloned so the caller's Services slice is not shared
	s.draft = domain.Draft{
		Subject:   &sub,
		Recommend: true,
		Variant:   variant,
		Photos:    []string{},
		Contact:   domain.ContactConsent{AllowContact: false, Preference: domain.PreferEmail},
	}.Clone()
	return nil
}

func (s *DraftStore) Snapshot() domain.Draft { return s.draft.Clone() }

func (s *DraftStore) Schema() domain.Schema { return s.schema }

// Faulted reports an outstanding UnknownField rejection. The next successful
// Update clears it.
func (s *DraftStore) Faulted() bool { return s.faulted }

// Discard drops the draft.
func (s *DraftStore) Discard() {
	s.draft = domain.Draft{}
	s.faulted = false
}

// Update writes value at path on a copy and swaps it in only on success.
func (s *DraftStore) Update(path string, value any) error {
	if s.draft.Subject == nil {
		return fmt.Errorf("%w: draft not initialized", domain.ErrUnknownField)
	}
	next := s.draft.Clone()
	if err := s.apply(&next, path, value); err != nil {
		if errors.Is(err, domain.ErrUnknownField) {
			s.faulted = true
			log.Error().Err(err).
				Str("path", path).
				Str("kind", string(s.schema.Kind)).
				Msg("draft update outside active schema")
			if s.strict {
				panic(err)
			}
		}
		return err
	}
	s.draft = next
	s.faulted = false
	return nil
}

func (s *DraftStore) apply(d *domain.Draft, path string, value any) error {
	switch path {
	case PathTitle:
		v, err := asString(path, value)
		if err != nil {
			return err
		}
		d.Title = v
	case PathContent:
		v, err := asString(path, value)
		if err != nil {
			return err
		}
		d.Content = v
	case PathOverallRating:
		v, err := asRating(path, value)
		if err != nil {
			return err
		}
		d.OverallRating = v
	case PathRecommend:
		v, err := asBool(path, value)
		if err != nil {
			return err
		}
		d.Recommend = v
	case PathPhotos:
		v, err := asStrings(path, value)
		if err != nil {
			return err
		}
		d.Photos = v
	case PathAllowContact:
		v, err := asBool(path, value)
		if err != nil {
			return err
		}
		d.Contact.AllowContact = v
	case PathPreference:
		v, err := asString(path, value)
		if err != nil {
			return err
		}
		pref, ok := domain.ParseContactPreference(v)
		if !ok {
			return invalid(path, value)
		}
		d.Contact.Preference = pref
	default:
		switch {
		case strings.HasPrefix(path, aspectPrefix):
			return s.applyAspect(d, path, strings.TrimPrefix(path, aspectPrefix), value)
		case strings.HasPrefix(path, variantPrefix):
			return s.applyExtra(d, path, strings.TrimPrefix(path, variantPrefix), value)
		}
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, path)
	}
	return nil
}

func (s *DraftStore) applyAspect(d *domain.Draft, path, key string, value any) error {
	if !s.schema.HasAspect(key) {
		return fmt.Errorf("%w: %s is not an aspect of %s", domain.ErrUnknownField, key, s.schema.Kind)
	}
	v, err := asRating(path, value)
	if err != nil {
		return err
	}
	d.Variant.Aspects()[key] = v
	return nil
}

func (s *DraftStore) applyExtra(d *domain.Draft, path, name string, value any) error {
	desc, ok := s.schema.Extra(name)
	if !ok {
		return fmt.Errorf("%w: %s is not a field of %s", domain.ErrUnknownField, name, s.schema.Kind)
	}
	v, err := asString(path, value)
	if err != nil {
		return err
	}
	if !desc.Allows(v) {
		return invalid(path, value)
	}

	switch f := d.Variant.(type) {
	case *domain.PropertyFields:
		if name == domain.FieldStayDuration {
			f.StayDuration = domain.StayDuration(v)
			return nil
		}
	case *domain.ServiceFields:
		switch name {
		case domain.FieldServiceType:
			if v != "" && !d.Subject.OffersService(v) {
				return invalid(path, value)
			}
			f.ServiceType = v
			return nil
		case domain.FieldProjectDetails:
			f.ProjectDetails = v
			return nil
		}
	}
	// schema lists a field the variant type does not carry
	return fmt.Errorf("%w: %s has no storage in %T", domain.ErrUnknownField, name, d.Variant)
}

// ---- value coercion (values arrive typed from Go callers or as decoded JSON) ----

func invalid(path string, value any) error {
	return fmt.Errorf("%w: %s=%v", domain.ErrInvalidValue, path, value)
}

func asString(path string, value any) (string, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return "", invalid(path, value)
}

func asBool(path string, value any) (bool, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return false, invalid(path, value)
}

func asRating(path string, value any) (int, error) {
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		if v != math.Trunc(v) {
			return 0, invalid(path, value)
		}
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, invalid(path, value)
		}
		n = int(i)
	default:
		return 0, invalid(path, value)
	}
	if n < 0 || n > MaxRating {
		return 0, invalid(path, value)
	}
	return n, nil
}

func asStrings(path string, value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, it := range v {
			s, ok := it.(string)
			if !ok {
				return nil, invalid(path, value)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return []string{}, nil
	}
	return nil, invalid(path, value)
}
