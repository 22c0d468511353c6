package llm

import (
	"context"
	"fmt"

	"langagent/log"
)

// DefaultCandidates are tried in order when no model is configured.
var DefaultCandidates = []string{
	"gpt-4o-mini",
	"gpt-3.5-turbo",
	"gpt-4-turbo-preview",
	"gpt-4",
}

// ModelFactory builds a Model for a candidate name. Indirection keeps the
// probe testable without the OpenAI endpoint.
type ModelFactory func(model string) (Model, error)

// SelectModel probes the candidate models with a trivial request and returns
// the first one that answers. Unavailable candidates are logged and skipped.
func SelectModel(ctx context.Context, factory ModelFactory, candidates []string) (Model, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}

	for _, name := range candidates {
		m, err := factory(name)
		if err != nil {
			log.Warn("model %s not usable: %v", name, err)
			continue
		}
		if _, err := m.Complete(ctx, "", "Hello"); err != nil {
			log.Warn("model %s not available: %v", name, err)
			continue
		}
		log.Info("using model: %s", name)
		return m, nil
	}

	return nil, fmt.Errorf("no available model among %v", candidates)
}
