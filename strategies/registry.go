// Package strategies maps strategy ids to signal-generator factories.
package strategies

import (
	"fmt"
	"sort"

	"krxbacktest/internal/engine"
	"krxbacktest/strategies/bollinger"
	"krxbacktest/strategies/goldencross"
	"krxbacktest/strategies/rsireversal"
)

// Factory builds a signal generator from a run's strategy parameters.
type Factory func(params engine.Params) (engine.SignalGenerator, error)

var registry = map[string]Factory{
	goldencross.ID: func(p engine.Params) (engine.SignalGenerator, error) { return goldencross.New(p) },
	rsireversal.ID: func(p engine.Params) (engine.SignalGenerator, error) { return rsireversal.New(p) },
	bollinger.ID:   func(p engine.Params) (engine.SignalGenerator, error) { return bollinger.New(p) },
}

// New builds the generator for the given strategy id. An unregistered id
// fails with engine.ErrUnknownStrategy.
func New(id string, params map[string]float64) (engine.SignalGenerator, error) {
	factory, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", engine.ErrUnknownStrategy, id, List())
	}
	return factory(engine.Params(params))
}

// List returns the sorted ids of all registered strategies.
func List() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
