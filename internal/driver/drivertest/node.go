package drivertest

import (
	"context"
	"sync"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
)

// Node is a scripted element. New nodes are displayed and enabled.
type Node struct {
	mu        sync.Mutex
	text      string
	attrs     map[string]string
	displayed bool
	enabled   bool
	checked   bool
	detached  bool
	focused   bool
	clicks    int
	kids      map[locator.By][]*Node
}

var _ driver.Node = (*Node)(nil)

func NewNode(text string) *Node {
	return &Node{
		text:      text,
		attrs:     make(map[string]string),
		displayed: true,
		enabled:   true,
		kids:      make(map[locator.By][]*Node),
	}
}

// Hidden returns a node that exists but is not displayed
func Hidden(text string) *Node {
	n := NewNode(text)
	n.displayed = false
	return n
}

// AddChild registers children found by by inside n
func (n *Node) AddChild(by locator.By, children ...*Node) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kids[by] = append(n.kids[by], children...)
	return n
}

func (n *Node) WithAttr(name, value string) *Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attrs[name] = value
	return n
}

func (n *Node) SetDisplayed(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.displayed = v
}

func (n *Node) SetEnabled(v bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = v
}

func (n *Node) SetText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.text = text
}

// Detach makes every later operation on n fail with driver.ErrStaleNode
func (n *Node) Detach() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.detached = true
}

func (n *Node) IsDetached() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.detached
}

func (n *Node) Clicks() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.clicks
}

func (n *Node) Focused() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.focused
}

func (n *Node) children(by locator.By) []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return nil
	}
	return append([]*Node(nil), n.kids[by]...)
}

func (n *Node) IsDisplayed(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return false, driver.ErrStaleNode
	}
	return n.displayed, nil
}

func (n *Node) IsEnabled(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return false, driver.ErrStaleNode
	}
	return n.enabled, nil
}

func (n *Node) IsChecked(ctx context.Context) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return false, driver.ErrStaleNode
	}
	return n.checked, nil
}

func (n *Node) Click(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return driver.ErrStaleNode
	}
	n.clicks++
	if n.attrs["type"] == "checkbox" {
		n.checked = !n.checked
	}
	return nil
}

func (n *Node) Text(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return "", driver.ErrStaleNode
	}
	return n.text, nil
}

func (n *Node) Value(ctx context.Context) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return "", driver.ErrStaleNode
	}
	return n.attrs["value"], nil
}

func (n *Node) Attribute(ctx context.Context, name string) (string, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return "", false, driver.ErrStaleNode
	}
	v, ok := n.attrs[name]
	return v, ok, nil
}

func (n *Node) Type(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return driver.ErrStaleNode
	}
	n.attrs["value"] += text
	return nil
}

func (n *Node) Clear(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return driver.ErrStaleNode
	}
	n.attrs["value"] = ""
	return nil
}

func (n *Node) Focus(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return driver.ErrStaleNode
	}
	n.focused = true
	return nil
}
