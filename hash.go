package flowdsl

import (
	"encoding/json"
	"hash/fnv"
)

// HashConfiguration returns a structural hash usable as a cache key by UIs
// that rebuild equivalent configurations with fresh object identities on
// every edit. Equal content hashes equally regardless of how the maps were
// constructed: the hash runs over the canonical JSON form, whose map keys are
// emitted sorted.
func HashConfiguration(cfg *Configuration) uint64 {
	h := fnv.New64a()
	if cfg == nil {
		return h.Sum64()
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		// Non-serializable config values; fall back to the DSL-visible parts.
		data, _ = json.Marshal(struct {
			Steps     []string
			Workflows []WorkflowDefinition
		}{stepNames(cfg), cfg.Workflows})
	}
	_, _ = h.Write(data)
	return h.Sum64()
}

// HashGraph is the diagram-side analog of HashConfiguration.
func HashGraph(g *Graph) uint64 {
	h := fnv.New64a()
	if g == nil {
		return h.Sum64()
	}
	data, err := json.Marshal(g)
	if err != nil {
		return h.Sum64()
	}
	_, _ = h.Write(data)
	return h.Sum64()
}

func stepNames(cfg *Configuration) []string {
	names := make([]string, 0, len(cfg.Steps))
	for _, step := range cfg.Steps {
		names = append(names, step.Name)
	}
	return names
}
