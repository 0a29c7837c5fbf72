package domain

import "time"

// Review is a submitted review as stored. SubjectID is nil for reviews written
// from the generic entry point.
type Review struct {
	ID                int64             `json:"id"`
	SubjectKind       SubjectKind       `json:"subjectKind"`
	SubjectID         *string           `json:"subjectId,omitempty"`
	Author            *string           `json:"author,omitempty"`
	Rating            int               `json:"rating"`
	Title             string            `json:"title"`
	Text              string            `json:"text"`
	Recommend         bool              `json:"recommend"`
	StayDuration      *string           `json:"stayDuration,omitempty"`
	ServiceType       *string           `json:"serviceType,omitempty"`
	ProjectDetails    *string           `json:"projectDetails,omitempty"`
	Aspects           map[string]int    `json:"aspects,omitempty"`
	Photos            []string          `json:"photos,omitempty"`
	AllowContact      bool              `json:"allowContact"`
	ContactPreference ContactPreference `json:"contactPreference,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
}
