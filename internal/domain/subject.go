package domain

import "strings"

type SubjectKind string

const (
	KindProperty SubjectKind = "property"
	KindService  SubjectKind = "service"
)

// ParseKind accepts the wire names plus a few aliases used by older links.
func ParseKind(s string) (SubjectKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "property", "properties":
		return KindProperty, true
	case "service", "services", "provider", "serviceprovider", "service_provider":
		return KindService, true
	}
	return "", false
}

// Subject is the property or service provider a review is about.
// ID is empty when the user picked a kind without a concrete target.
type Subject struct {
	Kind     SubjectKind `json:"kind"`
	ID       string      `json:"id,omitempty"`
	Name     string      `json:"displayName,omitempty"`
	Image    string      `json:"displayImage,omitempty"`
	Locale   string      `json:"locationOrCategory,omitempty"`
	Services []string    `json:"services,omitempty"`
}

func (s Subject) Concrete() bool { return s.ID != "" }

// OffersService reports whether name is one of the advertised services.
// A subject with no advertised list accepts any name.
func (s Subject) OffersService(name string) bool {
	if len(s.Services) == 0 {
		return true
	}
	for _, sv := range s.Services {
		if sv == name {
			return true
		}
	}
	return false
}

func (s Subject) clone() Subject {
	out := s
	if s.Services != nil {
		out.Services = append([]string(nil), s.Services...)
	}
	return out
}
