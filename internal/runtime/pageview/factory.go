package pageview

import "math/rand/v2"

// RandSource supplies the random draws used by Factory.
type RandSource interface {
	IntN(n int) int
}

// globalSource draws from the randomly seeded math/rand/v2 top-level
// generator, which is safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithRandSource replaces the random source, typically with a deterministic
// one in tests.
func WithRandSource(src RandSource) FactoryOption {
	return func(f *Factory) {
		if src != nil {
			f.rng = src
		}
	}
}

// Factory generates random page views.
type Factory struct {
	rng RandSource
}

func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{rng: globalSource{}}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Generate returns a fresh PageView tagged with source. Page and user are
// drawn uniformly; the duration is ShortDuration or LongDuration with equal
// probability.
func (f *Factory) Generate(source string) PageView {
	user := users[f.rng.IntN(len(users))]
	page := pages[f.rng.IntN(len(pages))]
	duration := LongDuration
	if f.rng.IntN(2) == 0 {
		duration = ShortDuration
	}
	return PageView{
		Page:     page,
		Duration: duration,
		UserID:   user,
		Source:   source,
	}
}
