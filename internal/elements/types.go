package elements

import (
	"context"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
)

// Kind names a registered element type
type Kind string

const (
	KindElement  Kind = "element"
	KindButton   Kind = "button"
	KindTextBox  Kind = "textbox"
	KindLabel    Kind = "label"
	KindLink     Kind = "link"
	KindCheckBox Kind = "checkbox"
)

type Button struct {
	*BaseElement
}

func NewButton(f *ElementFactory, loc locator.Locator, name string, state ElementState) *Button {
	return &Button{NewBaseElement(f, loc, name, state, KindButton)}
}

type Label struct {
	*BaseElement
}

func NewLabel(f *ElementFactory, loc locator.Locator, name string, state ElementState) *Label {
	return &Label{NewBaseElement(f, loc, name, state, KindLabel)}
}

type Link struct {
	*BaseElement
}

func NewLink(f *ElementFactory, loc locator.Locator, name string, state ElementState) *Link {
	return &Link{NewBaseElement(f, loc, name, state, KindLink)}
}

// Href returns the href attribute, "" when absent
func (l *Link) Href(ctx context.Context) (string, error) {
	return l.Attribute(ctx, "href")
}

type TextBox struct {
	*BaseElement
}

func NewTextBox(f *ElementFactory, loc locator.Locator, name string, state ElementState) *TextBox {
	return &TextBox{NewBaseElement(f, loc, name, state, KindTextBox)}
}

// Type appends text to the current value
func (t *TextBox) Type(ctx context.Context, text string) error {
	return t.action(ctx, "type", "loc.text.typing", []any{text}, func(ctx context.Context, n driver.Node) error {
		return n.Type(ctx, text)
	})
}

// ClearAndType replaces the current value with text
func (t *TextBox) ClearAndType(ctx context.Context, text string) error {
	if err := t.action(ctx, "clear", "loc.text.clearing", nil, func(ctx context.Context, n driver.Node) error {
		return n.Clear(ctx)
	}); err != nil {
		return err
	}
	return t.Type(ctx, text)
}

func (t *TextBox) Value(ctx context.Context) (string, error) {
	return query(ctx, t.BaseElement, "value", "loc.el.getattr", []any{"value"}, func(ctx context.Context, n driver.Node) (string, error) {
		return n.Value(ctx)
	})
}

type CheckBox struct {
	*BaseElement
}

func NewCheckBox(f *ElementFactory, loc locator.Locator, name string, state ElementState) *CheckBox {
	return &CheckBox{NewBaseElement(f, loc, name, state, KindCheckBox)}
}

func (c *CheckBox) IsChecked(ctx context.Context) (bool, error) {
	return query(ctx, c.BaseElement, "is_checked", "loc.checkbox.get.state", nil, func(ctx context.Context, n driver.Node) (bool, error) {
		return n.IsChecked(ctx)
	})
}

func (c *CheckBox) Check(ctx context.Context) error {
	return c.setState(ctx, true)
}

func (c *CheckBox) Uncheck(ctx context.Context) error {
	return c.setState(ctx, false)
}

// Toggle clicks the box regardless of its state
func (c *CheckBox) Toggle(ctx context.Context) error {
	return c.Click(ctx)
}

// setState clicks only when the node is not already in the wanted state
func (c *CheckBox) setState(ctx context.Context, checked bool) error {
	return c.action(ctx, "set_state", "loc.checkbox.set.state", []any{checked}, func(ctx context.Context, n driver.Node) error {
		current, err := n.IsChecked(ctx)
		if err != nil {
			return err
		}
		if current == checked {
			return nil
		}
		return n.Click(ctx)
	})
}
