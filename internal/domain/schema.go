package domain

// Aspect keys per variant.
const (
	AspectLocation        = "location"
	AspectLandlord        = "landlord"
	AspectValueForMoney   = "valueForMoney"
	AspectAmenities       = "amenities"
	AspectPunctuality     = "punctuality"
	AspectProfessionalism = "professionalism"
	AspectQuality         = "quality"
	AspectCommunication   = "communication"
)

// Extra field names.
const (
	FieldStayDuration   = "stayDuration"
	FieldServiceType    = "serviceType"
	FieldProjectDetails = "projectDetails"
)

type StayDuration string

const (
	StayUnder6Months StayDuration = "less_than_6_months"
	Stay6To12Months  StayDuration = "6_to_12_months"
	Stay1To2Years    StayDuration = "1_to_2_years"
	StayOver2Years   StayDuration = "more_than_2_years"
)

var stayDurations = []string{
	string(StayUnder6Months),
	string(Stay6To12Months),
	string(Stay1To2Years),
	string(StayOver2Years),
}

type FieldInput string

const (
	InputSingleSelect FieldInput = "single_select"
	InputFreeText     FieldInput = "free_text"
)

// FieldDescriptor describes one variant-specific input besides the aspect ratings.
// Options is the static choice list; FromSubjectServices means the choices come
// from the subject's advertised services instead.
type FieldDescriptor struct {
	Name                string     `json:"name"`
	Input               FieldInput `json:"input"`
	Optional            bool       `json:"optional"`
	Options             []string   `json:"options,omitempty"`
	FromSubjectServices bool       `json:"fromSubjectServices,omitempty"`
}

type Schema struct {
	Kind        SubjectKind       `json:"kind"`
	AspectKeys  []string          `json:"aspectKeys"`
	ExtraFields []FieldDescriptor `json:"extraFields"`
}

// schemas is the single source of truth for which variant keys are legal.
// A new subject kind only needs an entry here plus its VariantFields type.
var schemas = map[SubjectKind]Schema{
	KindProperty: {
		Kind:       KindProperty,
		AspectKeys: []string{AspectLocation, AspectLandlord, AspectValueForMoney, AspectAmenities},
		ExtraFields: []FieldDescriptor{
			{Name: FieldStayDuration, Input: InputSingleSelect, Optional: true, Options: stayDurations},
		},
	},
	KindService: {
		Kind:       KindService,
		AspectKeys: []string{AspectPunctuality, AspectProfessionalism, AspectQuality, AspectCommunication, AspectValueForMoney},
		ExtraFields: []FieldDescriptor{
			{Name: FieldServiceType, Input: InputSingleSelect, Optional: true, FromSubjectServices: true},
			{Name: FieldProjectDetails, Input: InputFreeText, Optional: true},
		},
	},
}

// SchemaFor returns a copy of the schema registered for kind.
func SchemaFor(kind SubjectKind) (Schema, bool) {
	s, ok := schemas[kind]
	if !ok {
		return Schema{}, false
	}
	out := Schema{Kind: s.Kind, AspectKeys: append([]string(nil), s.AspectKeys...)}
	for _, f := range s.ExtraFields {
		f.Options = append([]string(nil), f.Options...)
		out.ExtraFields = append(out.ExtraFields, f)
	}
	return out, true
}

func (s Schema) HasAspect(key string) bool {
	for _, k := range s.AspectKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (s Schema) Extra(name string) (FieldDescriptor, bool) {
	for _, f := range s.ExtraFields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Allows reports whether v is an acceptable value for a static single-select.
// The empty string clears an optional field.
func (f FieldDescriptor) Allows(v string) bool {
	if v == "" {
		return f.Optional
	}
	if f.Input != InputSingleSelect || f.FromSubjectServices {
		return true
	}
	for _, o := range f.Options {
		if o == v {
			return true
		}
	}
	return false
}
