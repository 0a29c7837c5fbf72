package app_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"reviewflow/internal/app"
	"reviewflow/internal/domain"
)

func basics(rating int, title, content string) domain.Draft {
	return domain.Draft{OverallRating: rating, Title: title, Content: content}
}

func TestStepValidator_StepOne(t *testing.T) {
	v := app.StepValidator{}
	sixty := strings.Repeat("a", 60)

	cases := []struct {
		name string
		d    domain.Draft
		want bool
	}{
		{"complete", basics(5, "Great place", sixty), true},
		{"no rating", basics(0, "Great place", sixty), false},
		{"blank title", basics(5, "   ", sixty), false},
		{"short content", basics(5, "Great place", strings.Repeat("a", 49)), false},
		{"exactly fifty", basics(1, "t", strings.Repeat("a", 50)), true},
		{"fifty runes", basics(1, "t", strings.Repeat("é", 50)), true},
		{"padded with spaces", basics(5, "Great place", "short"+strings.Repeat(" ", 45)), false},
		{"padded fifty", basics(5, "Great place", "\n  "+strings.Repeat("a", 50)+"  \t"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, v.CanAdvance(1, tc.d, false))
		})
	}
}

func TestStepValidator_StepTwoAndThree(t *testing.T) {
	d := basics(5, "Great place", strings.Repeat("a", 60))
	d.Variant = &domain.PropertyFields{AspectRatings: map[string]int{domain.AspectLocation: 0}}

	assert.True(t, app.StepValidator{}.CanAdvance(2, d, false))
	assert.False(t, app.StepValidator{RequireAspectRating: true}.CanAdvance(2, d, false))
	d.Variant.Aspects()[domain.AspectLocation] = 3
	assert.True(t, app.StepValidator{RequireAspectRating: true}.CanAdvance(2, d, false))

	assert.True(t, app.StepValidator{}.CanAdvance(3, d, false))
	assert.False(t, app.StepValidator{}.CanAdvance(3, d, true), "faulted draft must not submit")
	assert.False(t, app.StepValidator{}.CanAdvance(4, d, false))
}
