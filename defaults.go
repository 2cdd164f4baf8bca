package flowdsl

// Override layers form a small precedence lattice applied in sequence:
// category defaults < named defaults < individual config < global settings.
// Modeling the lattice as an ordered layer list means a new layer is one
// append, with no change to the merge logic.
type overrideLayer struct {
	name   string
	values map[string]any
}

func applyLayers(layers []overrideLayer) map[string]any {
	merged := map[string]any{}
	for _, layer := range layers {
		for key, value := range FlattenMap(layer.values) {
			merged[key] = value
		}
	}
	return UnflattenMap(merged)
}

// ResolveStepConfig merges the effective configuration for a step from the
// override layers. The result is a fresh map; the configuration is not
// mutated.
func (c *Configuration) ResolveStepConfig(name string) map[string]any {
	layers := []overrideLayer{
		{name: "category", values: c.Defaults.Step},
		{name: "named", values: c.Defaults.Named[name]},
	}
	if step, ok := c.Step(name); ok {
		layers = append(layers, overrideLayer{name: "config", values: step.Config})
	}
	layers = append(layers, overrideLayer{name: "settings", values: c.Settings})
	return applyLayers(layers)
}

// ResolveGuardConfig merges the effective configuration for a named guard.
// Guards carry no individual config section, so the lattice skips that layer.
func (c *Configuration) ResolveGuardConfig(name string) map[string]any {
	return applyLayers([]overrideLayer{
		{name: "category", values: c.Defaults.Guard},
		{name: "named", values: c.Defaults.Named[name]},
		{name: "settings", values: c.Settings},
	})
}
