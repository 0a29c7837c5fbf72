package app

import (
	"strings"

	"reviewflow/internal/domain"
)

/********** alias registries (single source of truth) **********/

var subjectAliases = map[string][]string{
	"name":     {"name", "displayName", "display_name", "title", "hotel_name", "business_name", "company.name"},
	"image":    {"image", "displayImage", "main_image", "main_image_th", "thumbnail", "avatar", "logo"},
	"city":     {"address.city", "city", "location.city", "locality", "town"},
	"country":  {"address.country", "country", "countryCode", "country_code"},
	"location": {"location", "locationText", "location.name", "area", "neighborhood"},
	"category": {"category", "categoryName", "category.name", "specialty", "trade"},
}

var (
	imageListPaths   = []string{"images", "photos", "gallery"}
	serviceListPaths = []string{"services", "offeredServices", "offered_services", "service_types", "serviceTypes"}
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns string at path or "".
func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstAlias: first non-empty string for a named alias set.
func firstAlias(m map[string]any, key string) string {
	for _, p := range subjectAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, sep)
}

// firstSliceStrings: accept []any with either strings or {url/src/name/title}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		raw, ok := lookupAny(m, k).([]any)
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, it := range raw {
			switch t := it.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				for _, f := range []string{"url", "src", "name", "title"} {
					if s, ok := t[f].(string); ok && strings.TrimSpace(s) != "" {
						out = append(out, strings.TrimSpace(s))
						break
					}
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

/********** subject mapper **********/

// mapSubject turns a raw catalog payload into presentation data. Properties show
// their location, providers their category.
func mapSubject(kind domain.SubjectKind, id string, p map[string]any) domain.Subject {
	s := domain.Subject{Kind: kind, ID: id, Name: firstAlias(p, "name")}

	s.Image = firstAlias(p, "image")
	if s.Image == "" {
		if imgs := firstSliceStrings(p, imageListPaths...); len(imgs) > 0 {
			s.Image = imgs[0]
		}
	}

	switch kind {
	case domain.KindProperty:
		s.Locale = firstAlias(p, "location")
		if s.Locale == "" {
			s.Locale = joinNonEmpty(", ", firstAlias(p, "city"), firstAlias(p, "country"))
		}
	case domain.KindService:
		s.Locale = firstAlias(p, "category")
		s.Services = dedupe(firstSliceStrings(p, serviceListPaths...))
	}
	return s
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
