package domain

type ContactPreference string

const (
	PreferEmail           ContactPreference = "email"
	PreferPlatformMessage ContactPreference = "platformMessage"
)

func ParseContactPreference(s string) (ContactPreference, bool) {
	switch ContactPreference(s) {
	case PreferEmail, PreferPlatformMessage:
		return ContactPreference(s), true
	}
	return "", false
}

type ContactConsent struct {
	AllowContact bool              `json:"allowContact"`
	Preference   ContactPreference `json:"preference"`
}

// VariantFields is the kind-specific part of a draft. Each subject kind has
// exactly one implementation, so fields of another variant cannot be reached.
type VariantFields interface {
	Kind() SubjectKind
	Aspects() map[string]int
	Clone() VariantFields
}

type PropertyFields struct {
	StayDuration  StayDuration   `json:"stayDuration,omitempty"`
	AspectRatings map[string]int `json:"aspectRatings"`
}

func (*PropertyFields) Kind() SubjectKind         { return KindProperty }
func (p *PropertyFields) Aspects() map[string]int { return p.AspectRatings }

func (p *PropertyFields) Clone() VariantFields {
	out := *p
	out.AspectRatings = cloneRatings(p.AspectRatings)
	return &out
}

type ServiceFields struct {
	ServiceType    string         `json:"serviceType,omitempty"`
	ProjectDetails string         `json:"projectDetails,omitempty"`
	AspectRatings  map[string]int `json:"aspectRatings"`
}

func (*ServiceFields) Kind() SubjectKind         { return KindService }
func (s *ServiceFields) Aspects() map[string]int { return s.AspectRatings }

func (s *ServiceFields) Clone() VariantFields {
	out := *s
	out.AspectRatings = cloneRatings(s.AspectRatings)
	return &out
}

// NewVariantFields builds the empty variant for a schema, every aspect at 0.
func NewVariantFields(s Schema) (VariantFields, bool) {
	ratings := make(map[string]int, len(s.AspectKeys))
	for _, k := range s.AspectKeys {
		ratings[k] = 0
	}
	switch s.Kind {
	case KindProperty:
		return &PropertyFields{AspectRatings: ratings}, true
	case KindService:
		return &ServiceFields{AspectRatings: ratings}, true
	}
	return nil, false
}

// Draft is the in-progress review. Subject is nil until resolved.
type Draft struct {
	Subject       *Subject       `json:"subject"`
	OverallRating int            `json:"overallRating"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Recommend     bool           `json:"recommend"`
	Variant       VariantFields  `json:"variantFields"`
	Photos        []string       `json:"photos"`
	Contact       ContactConsent `json:"contactConsent"`
}

// Clone returns a deep copy; mutating it never affects d.
func (d Draft) Clone() Draft {
	out := d
	if d.Subject != nil {
		s := d.Subject.clone()
		out.Subject = &s
	}
	if d.Variant != nil {
		out.Variant = d.Variant.Clone()
	}
	out.Photos = append([]string{}, d.Photos...)
	return out
}

// RatedAspects counts aspects with a rating above 0.
func (d Draft) RatedAspects() int {
	if d.Variant == nil {
		return 0
	}
	n := 0
	for _, v := range d.Variant.Aspects() {
		if v > 0 {
			n++
		}
	}
	return n
}

func cloneRatings(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
