// Package locator describes how to find nodes in a rendered document.
//
// A Locator is an immutable chain of parts. Each part is searched inside every
// match of the previous one, so parent/child relationships are expressed by
// composition and never by holding on to live nodes.
package locator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidLocator is returned for locators that cannot address any node
var ErrInvalidLocator = errors.New("invalid locator")

// Strategy is the query language of a single locator part
type Strategy string

const (
	StrategyCSS   Strategy = "css"
	StrategyXPath Strategy = "xpath"
	StrategyID    Strategy = "id"
	StrategyName  Strategy = "name"
	StrategyText  Strategy = "text"
)

func (s Strategy) IsValid() bool {
	switch s {
	case StrategyCSS, StrategyXPath, StrategyID, StrategyName, StrategyText:
		return true
	}
	return false
}

// By is a single query expression
type By struct {
	Strategy Strategy
	Value    string
}

func (b By) String() string {
	return fmt.Sprintf("%s=%s", b.Strategy, b.Value)
}

// Part is one step of a locator chain. Index < 0 keeps every match.
type Part struct {
	By    By
	Index int
}

// Locator is an ordered chain of parts. A locator built with a negative
// index carries the error; Err reports it.
type Locator struct {
	parts []Part
	err   error
}

func newLocator(strategy Strategy, value string) Locator {
	return Locator{parts: []Part{{By: By{Strategy: strategy, Value: value}, Index: -1}}}
}

// CSS creates a locator from a CSS selector
func CSS(selector string) Locator { return newLocator(StrategyCSS, selector) }

// XPath creates a locator from an XPath expression
func XPath(expr string) Locator { return newLocator(StrategyXPath, expr) }

// ID creates a locator matching the id attribute
func ID(id string) Locator { return newLocator(StrategyID, id) }

// Name creates a locator matching the name attribute
func Name(name string) Locator { return newLocator(StrategyName, name) }

// Text creates a locator matching visible text
func Text(text string) Locator { return newLocator(StrategyText, text) }

// Parse builds a single-part locator from a strategy name and value
func Parse(strategy, value string) (Locator, error) {
	s := Strategy(strings.ToLower(strategy))
	if !s.IsValid() {
		return Locator{}, fmt.Errorf("unknown locator strategy %q", strategy)
	}
	if value == "" {
		return Locator{}, fmt.Errorf("empty %s locator", s)
	}
	return newLocator(s, value), nil
}

// Child returns a locator that searches rel inside every match of l
func (l Locator) Child(rel Locator) Locator {
	parts := make([]Part, 0, len(l.parts)+len(rel.parts))
	parts = append(parts, l.parts...)
	parts = append(parts, rel.parts...)
	err := l.err
	if err == nil {
		err = rel.err
	}
	return Locator{parts: parts, err: err}
}

// Nth narrows the last part of l to its i-th match (zero based). A
// negative i leaves the parts unchanged and makes the locator invalid.
func (l Locator) Nth(i int) Locator {
	if len(l.parts) == 0 {
		return l
	}
	parts := make([]Part, len(l.parts))
	copy(parts, l.parts)
	if i < 0 {
		return Locator{parts: parts, err: fmt.Errorf("%w: negative index %d on %s", ErrInvalidLocator, i, l)}
	}
	parts[len(parts)-1].Index = i
	return Locator{parts: parts, err: l.err}
}

// Err reports why l cannot address any node, or nil when it can
func (l Locator) Err() error {
	if l.err != nil {
		return l.err
	}
	if len(l.parts) == 0 {
		return fmt.Errorf("%w: no parts", ErrInvalidLocator)
	}
	return nil
}

// Parts returns a copy of the chain
func (l Locator) Parts() []Part {
	parts := make([]Part, len(l.parts))
	copy(parts, l.parts)
	return parts
}

func (l Locator) IsZero() bool {
	return len(l.parts) == 0
}

func (l Locator) String() string {
	if l.IsZero() {
		return "<empty locator>"
	}
	segments := make([]string, 0, len(l.parts)*2)
	for _, p := range l.parts {
		segments = append(segments, p.By.String())
		if p.Index >= 0 {
			segments = append(segments, fmt.Sprintf("nth=%d", p.Index))
		}
	}
	return strings.Join(segments, " >> ")
}
