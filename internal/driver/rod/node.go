package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

type node struct {
	el      *rod.Element
	timeout time.Duration
}

func (n *node) scoped(ctx context.Context) *rod.Element {
	el := n.el.Context(ctx)
	if _, ok := ctx.Deadline(); !ok && n.timeout > 0 {
		el = el.Timeout(n.timeout)
	}
	return el
}

func (n *node) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := n.scoped(ctx).Visible()
	return v, mapError(err)
}

func (n *node) IsEnabled(ctx context.Context) (bool, error) {
	disabled, err := n.scoped(ctx).Property("disabled")
	if err != nil {
		return false, mapError(err)
	}
	return !disabled.Bool(), nil
}

func (n *node) IsChecked(ctx context.Context) (bool, error) {
	checked, err := n.scoped(ctx).Property("checked")
	if err != nil {
		return false, mapError(err)
	}
	return checked.Bool(), nil
}

func (n *node) Click(ctx context.Context) error {
	return mapError(n.scoped(ctx).Click(proto.InputMouseButtonLeft, 1))
}

func (n *node) Text(ctx context.Context) (string, error) {
	v, err := n.scoped(ctx).Text()
	return v, mapError(err)
}

func (n *node) Value(ctx context.Context) (string, error) {
	v, err := n.scoped(ctx).Property("value")
	if err != nil {
		return "", mapError(err)
	}
	return v.Str(), nil
}

func (n *node) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, err := n.scoped(ctx).Attribute(name)
	if err != nil {
		return "", false, mapError(err)
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (n *node) Type(ctx context.Context, text string) error {
	return mapError(n.scoped(ctx).Input(text))
}

func (n *node) Clear(ctx context.Context) error {
	el := n.scoped(ctx)
	if err := el.SelectAllText(); err != nil {
		return mapError(err)
	}
	return mapError(el.Input(""))
}

func (n *node) Focus(ctx context.Context) error {
	return mapError(n.scoped(ctx).Focus())
}
