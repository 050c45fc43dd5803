// Package drivertest provides a scripted in-memory page implementing
// driver.Session for tests of code that sits above the driver boundary.
package drivertest

import (
	"context"
	"sync"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
)

// Page is an in-memory document. Nodes are registered under the exact
// locator part that should find them.
type Page struct {
	mu      sync.Mutex
	roots   map[locator.By][]*Node
	queries int
	url     string
	closed  bool

	// FindErr, when set, is returned by every FindElements call
	FindErr error

	// ScreenshotData is returned by Screenshot
	ScreenshotData []byte
}

var _ driver.Session = (*Page)(nil)

func NewPage() *Page {
	return &Page{
		roots:          make(map[locator.By][]*Node),
		ScreenshotData: []byte("\x89PNG"),
	}
}

// Add appends top-level nodes found by by
func (p *Page) Add(by locator.By, nodes ...*Node) *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roots[by] = append(p.roots[by], nodes...)
	return p
}

// Replace swaps the nodes found by by, detaching the previous ones
func (p *Page) Replace(by locator.By, nodes ...*Node) {
	p.mu.Lock()
	old := p.roots[by]
	p.roots[by] = nodes
	p.mu.Unlock()

	for _, n := range old {
		n.Detach()
	}
}

// Remove detaches every node found by by
func (p *Page) Remove(by locator.By) {
	p.Replace(by)
}

// Queries returns how many FindElements calls were made
func (p *Page) Queries() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries
}

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) FindElements(ctx context.Context, loc locator.Locator) ([]driver.Node, error) {
	p.mu.Lock()
	p.queries++
	findErr := p.FindErr
	var current []*Node
	parts := loc.Parts()
	if len(parts) > 0 {
		current = append(current, p.roots[parts[0].By]...)
	}
	p.mu.Unlock()

	if findErr != nil {
		return nil, findErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for i, part := range parts {
		if i > 0 {
			var next []*Node
			for _, n := range current {
				next = append(next, n.children(part.By)...)
			}
			current = next
		}
		current = attached(current)
		if part.Index >= 0 {
			if part.Index >= len(current) {
				return nil, nil
			}
			current = []*Node{current[part.Index]}
		}
	}

	result := make([]driver.Node, 0, len(current))
	for _, n := range current {
		result = append(result, n)
	}
	return result, nil
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	return nil
}

func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ScreenshotData, nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func attached(nodes []*Node) []*Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !n.IsDetached() {
			out = append(out, n)
		}
	}
	return out
}
