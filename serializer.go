package flowdsl

import (
	"fmt"
	"strings"
)

// Serialize renders a Configuration as canonical DSL text: steps and
// workflows in declaration order, settings/defaults/config flattened to
// sorted dotted keys, durations in their largest evenly-dividing unit.
// Re-parsing the output reproduces the configuration; serializing again
// reproduces the text byte for byte.
//
// A configuration that violates its own invariants is a caller bug, reported
// as ErrInvalidConfiguration instead of a best-effort document.
func Serialize(cfg *Configuration) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if err := checkSerializable(cfg); err != nil {
		return "", err
	}

	var b strings.Builder
	writeSettings(&b, cfg.Settings)
	writeDefaults(&b, cfg.Defaults)
	for _, step := range cfg.Steps {
		writeStep(&b, step)
	}
	for _, wf := range cfg.Workflows {
		writeWorkflow(&b, wf)
	}
	return b.String(), nil
}

func writeSettings(b *strings.Builder, settings map[string]any) {
	if len(settings) == 0 {
		return
	}
	flat := FlattenMap(settings)
	b.WriteString("settings:\n")
	for _, key := range sortedFlatKeys(flat) {
		fmt.Fprintf(b, "  %s = %s\n", key, FormatScalar(flat[key]))
	}
	b.WriteString("\n")
}

func writeDefaults(b *strings.Builder, defaults Defaults) {
	if defaults.IsZero() {
		return
	}
	flat := map[string]any{}
	for key, value := range FlattenMap(defaults.Step) {
		flat["step."+key] = value
	}
	for key, value := range FlattenMap(defaults.Guard) {
		flat["guard."+key] = value
	}
	for name, bucket := range defaults.Named {
		for key, value := range FlattenMap(bucket) {
			flat[name+"."+key] = value
		}
	}
	b.WriteString("defaults:\n")
	for _, key := range sortedFlatKeys(flat) {
		fmt.Fprintf(b, "  %s = %s\n", key, FormatScalar(flat[key]))
	}
	b.WriteString("\n")
}

func writeStep(b *strings.Builder, step StepDefinition) {
	fmt.Fprintf(b, "step %s: %s\n", step.Name, step.Type)
	if len(step.Guards) > 0 {
		fmt.Fprintf(b, "  requires: %s\n", strings.Join(step.Guards, ", "))
	}
	if step.Retry != nil {
		b.WriteString("  " + formatRetry(step.Retry) + "\n")
	}
	// config comes last: the parser stays in step-config context until the
	// next section header.
	if len(step.Config) > 0 {
		b.WriteString("  config:\n")
		flat := FlattenMap(step.Config)
		for _, key := range sortedFlatKeys(flat) {
			fmt.Fprintf(b, "    %s = %s\n", key, FormatScalar(flat[key]))
		}
	}
	b.WriteString("\n")
}

func formatRetry(retry *RetryPolicy) string {
	out := fmt.Sprintf("retry: %dx", retry.MaxAttempts)
	if retry.DelayMillis > 0 {
		out += " / " + FormatDurationMillis(retry.DelayMillis)
	}
	if retry.Guard != "" {
		out += " ? " + retry.Guard
	}
	return out
}

func writeWorkflow(b *strings.Builder, wf WorkflowDefinition) {
	fmt.Fprintf(b, "workflow %s:\n", wf.Name)
	if wf.Root != "" {
		fmt.Fprintf(b, "  root: %s\n", wf.Root)
	}
	for _, edge := range wf.Edges {
		b.WriteString("  " + formatEdge(edge) + "\n")
	}
	b.WriteString("\n")
}

func formatEdge(edge EdgeDefinition) string {
	out := fmt.Sprintf("%s -> %s", edge.From, edge.To)
	if edge.Guard != "" {
		out += " ? " + edge.Guard
	}
	if edge.OnFailure != nil {
		out += " " + formatFailure(edge.OnFailure)
	}
	return out
}

// formatFailure mirrors the failure clause grammar one to one.
func formatFailure(policy *FailurePolicy) string {
	switch policy.Strategy {
	case StrategyAlternative:
		return "fail -> " + policy.AlternativeTarget
	case StrategyRetry:
		out := fmt.Sprintf("fail retry %dx", policy.RetryAttempts)
		if policy.RetryDelayMillis > 0 {
			out += " / " + FormatDurationMillis(policy.RetryDelayMillis)
		}
		return out
	case StrategySkip:
		return "fail skip"
	case StrategyStop:
		return "fail stop"
	default:
		return "fail continue"
	}
}

// checkSerializable asserts the invariants the serializer relies on.
func checkSerializable(cfg *Configuration) error {
	if cfg == nil {
		return fmt.Errorf("%w: configuration is required", ErrInvalidConfiguration)
	}
	if !serializableValue(cfg.Settings) {
		return fmt.Errorf("%w: settings contain a non-serializable value", ErrInvalidConfiguration)
	}
	if !serializableValue(cfg.Defaults.Step) || !serializableValue(cfg.Defaults.Guard) {
		return fmt.Errorf("%w: defaults contain a non-serializable value", ErrInvalidConfiguration)
	}
	for name, bucket := range cfg.Defaults.Named {
		if !serializableValue(bucket) {
			return fmt.Errorf("%w: defaults for %q contain a non-serializable value", ErrInvalidConfiguration, name)
		}
	}
	stepNames := make(map[string]struct{}, len(cfg.Steps))
	for _, step := range cfg.Steps {
		if normalizeName(step.Name) == "" {
			return fmt.Errorf("%w: step with empty name", ErrInvalidConfiguration)
		}
		if _, dup := stepNames[step.Name]; dup {
			return fmt.Errorf("%w: duplicate step %q", ErrInvalidConfiguration, step.Name)
		}
		stepNames[step.Name] = struct{}{}
		if step.Retry != nil {
			if step.Retry.MaxAttempts < 1 {
				return fmt.Errorf("%w: step %q retry attempts must be >= 1", ErrInvalidConfiguration, step.Name)
			}
			if step.Retry.DelayMillis < 0 {
				return fmt.Errorf("%w: step %q retry delay must be >= 0", ErrInvalidConfiguration, step.Name)
			}
		}
		if !serializableValue(step.Config) {
			return fmt.Errorf("%w: step %q config is not serializable", ErrInvalidConfiguration, step.Name)
		}
	}

	wfNames := make(map[string]struct{}, len(cfg.Workflows))
	for _, wf := range cfg.Workflows {
		if normalizeName(wf.Name) == "" {
			return fmt.Errorf("%w: workflow with empty name", ErrInvalidConfiguration)
		}
		if _, dup := wfNames[wf.Name]; dup {
			return fmt.Errorf("%w: duplicate workflow %q", ErrInvalidConfiguration, wf.Name)
		}
		wfNames[wf.Name] = struct{}{}
		for i, edge := range wf.Edges {
			if normalizeName(edge.From) == "" || normalizeName(edge.To) == "" {
				return fmt.Errorf("%w: workflow %q edge[%d] requires from and to", ErrInvalidConfiguration, wf.Name, i)
			}
			if edge.OnFailure == nil {
				continue
			}
			if !validStrategy(edge.OnFailure.Strategy) {
				return fmt.Errorf("%w: workflow %q edge[%d] has unknown strategy %q", ErrInvalidConfiguration, wf.Name, i, edge.OnFailure.Strategy)
			}
			if edge.OnFailure.Strategy == StrategyAlternative && normalizeName(edge.OnFailure.AlternativeTarget) == "" {
				return fmt.Errorf("%w: workflow %q edge[%d] alternative strategy requires a target", ErrInvalidConfiguration, wf.Name, i)
			}
			if edge.OnFailure.Strategy == StrategyRetry && edge.OnFailure.RetryAttempts < 1 {
				return fmt.Errorf("%w: workflow %q edge[%d] retry attempts must be >= 1", ErrInvalidConfiguration, wf.Name, i)
			}
		}
	}
	return nil
}
