// Package elements provides typed, lazily resolved element handles and the
// factory that creates them.
package elements

import (
	"context"
	"fmt"
	"strings"

	"github.com/testforge/uicore/internal/driver"
)

// ElementState is the acceptance policy for a node during lookup
type ElementState string

const (
	StateDisplayed        ElementState = "displayed"
	StateExistsInAnyState ElementState = "exists_in_any_state"
)

func (s ElementState) IsValid() bool {
	switch s {
	case StateDisplayed, StateExistsInAnyState:
		return true
	}
	return false
}

// Accepts reports whether node satisfies the state
func (s ElementState) Accepts(ctx context.Context, node driver.Node) (bool, error) {
	switch s {
	case StateDisplayed:
		return node.IsDisplayed(ctx)
	case StateExistsInAnyState:
		return true, nil
	}
	return false, fmt.Errorf("unknown element state %q", s)
}

func (s ElementState) messageKey() string {
	if s == StateDisplayed {
		return "loc.el.state.displayed"
	}
	return "loc.el.state.exists"
}

// ParseState accepts "displayed", "exists", "exists_in_any_state" and "any"
func ParseState(v string) (ElementState, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "displayed", "":
		return StateDisplayed, nil
	case "exists", "exists_in_any_state", "any":
		return StateExistsInAnyState, nil
	}
	return "", fmt.Errorf("unknown element state %q", v)
}

// ElementsCount is the acceptance policy for the size of a collection lookup
type ElementsCount string

const (
	CountZero         ElementsCount = "zero"
	CountMoreThanZero ElementsCount = "more_than_zero"
	CountAny          ElementsCount = "any"
)

func (c ElementsCount) IsValid() bool {
	switch c {
	case CountZero, CountMoreThanZero, CountAny:
		return true
	}
	return false
}

func (c ElementsCount) messageKey() string {
	switch c {
	case CountZero:
		return "loc.elements.count.zero"
	case CountMoreThanZero:
		return "loc.elements.count.more.than.zero"
	}
	return "loc.elements.count.any"
}

// ParseCount accepts "zero", "more-than-zero"/"more_than_zero" and "any"
func ParseCount(v string) (ElementsCount, error) {
	c := ElementsCount(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(v)), "-", "_"))
	if c == "" {
		return CountAny, nil
	}
	if !c.IsValid() {
		return "", fmt.Errorf("unknown elements count %q", v)
	}
	return c, nil
}
