package elements

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/localization"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/resilience"
)

// Supplier builds a typed handle. The factory passes itself so handles can
// resolve nodes and create children. T is unconstrained since Element
// refers back to the factory; the functions taking a Supplier require T Element.
type Supplier[T any] func(f *ElementFactory, loc locator.Locator, name string, state ElementState) T

// ElementFactory creates element handles. Handles are lazy: creating one
// does not query the driver.
type ElementFactory struct {
	finder  *ElementFinder
	wait    *resilience.ConditionalWait
	retrier *resilience.ActionRetrier
	logger  *localization.LocalizedLogger
	metrics *observability.Metrics

	mu       sync.RWMutex
	registry map[Kind]Supplier[Element]
}

func NewElementFactory(finder *ElementFinder, wait *resilience.ConditionalWait, retrier *resilience.ActionRetrier, logger *localization.LocalizedLogger, metrics *observability.Metrics) *ElementFactory {
	f := &ElementFactory{
		finder:   finder,
		wait:     wait,
		retrier:  retrier,
		logger:   logger,
		metrics:  metrics,
		registry: make(map[Kind]Supplier[Element]),
	}
	RegisterKind[*BaseElement](f, KindElement, func(f *ElementFactory, loc locator.Locator, name string, state ElementState) *BaseElement {
		return NewBaseElement(f, loc, name, state, KindElement)
	})
	RegisterKind[*Button](f, KindButton, NewButton)
	RegisterKind[*TextBox](f, KindTextBox, NewTextBox)
	RegisterKind[*Label](f, KindLabel, NewLabel)
	RegisterKind[*Link](f, KindLink, NewLink)
	RegisterKind[*CheckBox](f, KindCheckBox, NewCheckBox)
	return f
}

func (f *ElementFactory) Finder() *ElementFinder {
	return f.finder
}

// Register binds kind to supplier, replacing any previous binding
func (f *ElementFactory) Register(kind Kind, supplier Supplier[Element]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[kind] = supplier
}

// RegisterKind registers a supplier of a concrete element type
func RegisterKind[T Element](f *ElementFactory, kind Kind, supplier Supplier[T]) {
	f.Register(kind, func(f *ElementFactory, loc locator.Locator, name string, state ElementState) Element {
		return supplier(f, loc, name, state)
	})
}

// Kinds lists the registered kinds
func (f *ElementFactory) Kinds() []Kind {
	f.mu.RLock()
	defer f.mu.RUnlock()
	kinds := make([]Kind, 0, len(f.registry))
	for k := range f.registry {
		kinds = append(kinds, k)
	}
	return kinds
}

func (f *ElementFactory) supplier(kind Kind) (Supplier[Element], error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	s, ok := f.registry[kind]
	if !ok {
		return nil, domain.UnknownElementKind(string(kind))
	}
	return s, nil
}

// GetCustomElement returns a handle for loc. The state defaults to StateDisplayed.
func GetCustomElement[T Element](f *ElementFactory, supplier Supplier[T], loc locator.Locator, opts ...Option) T {
	o := buildOptions(StateDisplayed, opts)
	return supplier(f, loc, o.Name, o.State)
}

// FindChildElement returns a handle for childLoc below parent. The state
// defaults to StateExistsInAnyState.
func FindChildElement[T Element](f *ElementFactory, parent Element, childLoc locator.Locator, supplier Supplier[T], opts ...Option) T {
	o := buildOptions(StateExistsInAnyState, opts)
	return supplier(f, parent.Locator().Child(childLoc), o.Name, o.State)
}

// FindElements returns one handle per node in state, after checking the
// count policy. Each handle addresses its node by position.
func FindElements[T Element](ctx context.Context, f *ElementFactory, loc locator.Locator, supplier Supplier[T], opts ...Option) ([]T, error) {
	o := buildOptions(StateDisplayed, opts)
	matches, err := f.findAll(ctx, loc, o)
	if err != nil {
		return nil, err
	}

	handles := make([]T, 0, len(matches))
	for i, m := range matches {
		name := o.Name
		if name != "" {
			name = fmt.Sprintf("%s #%d", o.Name, i+1)
		}
		handles = append(handles, supplier(f, nth(loc, m.Index), name, o.State))
	}
	return handles, nil
}

// nth addresses the i-th node loc resolves to. A locator already narrowed
// to one node is returned as is.
func nth(loc locator.Locator, i int) locator.Locator {
	parts := loc.Parts()
	if len(parts) > 0 && parts[len(parts)-1].Index >= 0 {
		return loc
	}
	return loc.Nth(i)
}

func (f *ElementFactory) findAll(ctx context.Context, loc locator.Locator, o Options) ([]Match, error) {
	if !o.Count.IsValid() {
		return nil, fmt.Errorf("unknown elements count %q", o.Count)
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = f.finder.DefaultTimeout()
	}

	var (
		snap snapshot
		err  error
	)
	switch o.Count {
	case CountAny:
		snap, err = f.finder.poll(ctx, loc, o.State)
	case CountMoreThanZero:
		snap, err = f.finder.find(ctx, loc, o.State, timeout)
	case CountZero:
		snap, err = f.finder.findNone(ctx, loc, o.State, timeout)
	}

	switch {
	case err == nil:
		f.metrics.RecordCollectionLookup(string(o.Count), observability.ResultFound)
		return snap.matches, nil
	case errors.Is(err, domain.ErrTimeout):
		f.metrics.RecordCollectionLookup(string(o.Count), observability.ResultCountFailed)
		m := f.logger.Manager()
		msg := m.Get("loc.elements.count.mismatch", loc.String(), m.Get(o.Count.messageKey()), len(snap.matches))
		f.logger.Logger().Debug(msg)
		return nil, domain.ElementsCountMismatch(msg, loc.String(), string(o.Count), len(snap.matches), err)
	default:
		f.metrics.RecordCollectionLookup(string(o.Count), observability.ResultError)
		return nil, fmt.Errorf("finding elements by %s: %w", loc, err)
	}
}

// GetElement returns a handle of a registered kind
func (f *ElementFactory) GetElement(kind Kind, loc locator.Locator, opts ...Option) (Element, error) {
	s, err := f.supplier(kind)
	if err != nil {
		return nil, err
	}
	return GetCustomElement(f, s, loc, opts...), nil
}

func (f *ElementFactory) FindChildElementOf(kind Kind, parent Element, childLoc locator.Locator, opts ...Option) (Element, error) {
	s, err := f.supplier(kind)
	if err != nil {
		return nil, err
	}
	return FindChildElement(f, parent, childLoc, s, opts...), nil
}

func (f *ElementFactory) FindElementsOf(ctx context.Context, kind Kind, loc locator.Locator, opts ...Option) ([]Element, error) {
	s, err := f.supplier(kind)
	if err != nil {
		return nil, err
	}
	return FindElements(ctx, f, loc, s, opts...)
}

func (f *ElementFactory) GetButton(loc locator.Locator, opts ...Option) *Button {
	return GetCustomElement[*Button](f, NewButton, loc, opts...)
}

func (f *ElementFactory) GetTextBox(loc locator.Locator, opts ...Option) *TextBox {
	return GetCustomElement[*TextBox](f, NewTextBox, loc, opts...)
}

func (f *ElementFactory) GetLabel(loc locator.Locator, opts ...Option) *Label {
	return GetCustomElement[*Label](f, NewLabel, loc, opts...)
}

func (f *ElementFactory) GetLink(loc locator.Locator, opts ...Option) *Link {
	return GetCustomElement[*Link](f, NewLink, loc, opts...)
}

func (f *ElementFactory) GetCheckBox(loc locator.Locator, opts ...Option) *CheckBox {
	return GetCustomElement[*CheckBox](f, NewCheckBox, loc, opts...)
}
