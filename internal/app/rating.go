package app

import (
	"fmt"
	"strings"

	"reviewflow/internal/domain"
)

// RatingControl is a stateless N-star control. The caller owns the value and
// passes it back in on every render.
type RatingControl struct {
	Value       int
	Max         int
	Interactive bool
	onSelect    func(int)
}

// Render builds a control for the current value. onSelect may be nil for
// display-only use.
func Render(current int, onSelect func(int), interactive bool) RatingControl {
	if current < 0 {
		current = 0
	}
	if current > MaxRating {
		current = MaxRating
	}
	return RatingControl{Value: current, Max: MaxRating, Interactive: interactive, onSelect: onSelect}
}

// Select reports star n (1-based) to onSelect. A display-only control ignores it.
func (c RatingControl) Select(n int) error {
	if !c.Interactive {
		return nil
	}
	if n < 1 || n > c.Max {
		return fmt.Errorf("%w: star %d of %d", domain.ErrInvalidValue, n, c.Max)
	}
	if c.onSelect != nil {
		c.onSelect(n)
	}
	return nil
}

func (c RatingControl) String() string {
	return strings.Repeat("★", c.Value) + strings.Repeat("☆", c.Max-c.Value)
}

// RatingSetter binds a control's selections to a draft path. It serves
// in-process UI callers that own a Wizard; the HTTP API writes ratings
// through Wizard.Update instead.
func RatingSetter(w *Wizard, path string) func(int) {
	return func(n int) {
		if err := w.Update(path, n); err != nil {
			logUpdateErr(path, err)
		}
	}
}
