package elements

import "time"

// Options describes a lookup. Unset fields take the defaults of the
// operation they are passed to.
type Options struct {
	Name  string
	State ElementState
	Count ElementsCount
	// Timeout bounds collection lookups; zero means the configured condition timeout
	Timeout time.Duration
}

type Option func(*Options)

// WithName sets the name used in log messages and errors
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

func WithState(state ElementState) Option {
	return func(o *Options) { o.State = state }
}

func WithCount(count ElementsCount) Option {
	return func(o *Options) { o.Count = count }
}

func WithLookupTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

func buildOptions(defaultState ElementState, opts []Option) Options {
	o := Options{State: defaultState, Count: CountAny}
	for _, opt := range opts {
		opt(&o)
	}
	if o.State == "" {
		o.State = defaultState
	}
	if o.Count == "" {
		o.Count = CountAny
	}
	return o
}
