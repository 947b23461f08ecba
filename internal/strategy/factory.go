package strategy

import (
	"sort"

	"github.com/hpungsan/specforge/internal/errors"
)

// Factory resolves strategy names to strategy instances.
type Factory struct {
	strategies map[string]Strategy
}

// NewFactory builds one instance of each strategy over shared deps.
func NewFactory(deps Deps) *Factory {
	return &Factory{strategies: map[string]Strategy{
		NameCreate:   NewCreate(deps),
		NamePredict:  NewPredict(deps),
		NameOptimize: NewOptimize(deps),
	}}
}

// Get returns the strategy registered under name. Matching is exact and
// case-sensitive.
func (f *Factory) Get(name string) (Strategy, error) {
	s, ok := f.strategies[name]
	if !ok {
		return nil, errors.NewUnknownStrategy(name, f.Names())
	}
	return s, nil
}

// Names returns the registered strategy names in sorted order.
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.strategies))
	for name := range f.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
