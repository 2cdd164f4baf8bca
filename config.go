package flowdsl

import "strings"

// Reserved workflow terminals. Edges may target either of these instead of a
// declared step; neither is ever synthesized as a step entry.
const (
	TerminalSuccess = "SUCCESS"
	TerminalFailure = "FAILURE"
)

// IsTerminal reports whether name is one of the reserved workflow endpoints.
func IsTerminal(name string) bool {
	return name == TerminalSuccess || name == TerminalFailure
}

// Edge kinds.
const (
	EdgeKindNormal   = "normal"
	EdgeKindTerminal = "terminal"
)

// Failure strategies applied when an edge's guard fails.
const (
	StrategyStop        = "STOP"
	StrategySkip        = "SKIP"
	StrategyAlternative = "ALTERNATIVE"
	StrategyRetry       = "RETRY"
	StrategyContinue    = "CONTINUE"
)

// Configuration is the root aggregate produced by the parser and consumed by
// the serializer, the validator and the execution simulator. Steps and
// workflows keep declaration order; names are unique within each list.
type Configuration struct {
	Settings  map[string]any       `json:"settings,omitempty" yaml:"settings,omitempty"`
	Defaults  Defaults             `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Steps     []StepDefinition     `json:"steps" yaml:"steps"`
	Workflows []WorkflowDefinition `json:"workflows" yaml:"workflows"`
}

// NewConfiguration returns an empty configuration ready for mutation by the
// parser or an owning editor.
func NewConfiguration() *Configuration {
	return &Configuration{
		Settings: map[string]any{},
		Defaults: Defaults{
			Step:  map[string]any{},
			Guard: map[string]any{},
			Named: map[string]map[string]any{},
		},
	}
}

// Defaults holds override values merged below individual step/guard config.
// Step and Guard apply category-wide; Named buckets apply per component name.
type Defaults struct {
	Step  map[string]any            `json:"step,omitempty" yaml:"step,omitempty"`
	Guard map[string]any            `json:"guard,omitempty" yaml:"guard,omitempty"`
	Named map[string]map[string]any `json:"named,omitempty" yaml:"named,omitempty"`
}

// IsZero reports whether no default values are present.
func (d Defaults) IsZero() bool {
	return len(d.Step) == 0 && len(d.Guard) == 0 && len(d.Named) == 0
}

// StepDefinition declares a named unit of work. Type is a free-form component
// identifier resolved by the runtime, never validated for existence here.
// Guards are AND-combined: all must hold for the step to run.
type StepDefinition struct {
	Name   string         `json:"name" yaml:"name"`
	Type   string         `json:"type" yaml:"type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	Guards []string       `json:"guards,omitempty" yaml:"guards,omitempty"`
	Retry  *RetryPolicy   `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// RetryPolicy controls step re-execution. MaxAttempts must be >= 1 and
// DelayMillis >= 0; Guard, when set, is consulted before each retry.
type RetryPolicy struct {
	MaxAttempts int    `json:"maxAttempts" yaml:"maxAttempts"`
	DelayMillis int64  `json:"delay" yaml:"delay"`
	Guard       string `json:"guard,omitempty" yaml:"guard,omitempty"`
}

// WorkflowDefinition wires steps into a directed graph. Edge order is
// significant for duplicate detection and first-match semantics, not for
// reachability.
type WorkflowDefinition struct {
	Name  string           `json:"name" yaml:"name"`
	Root  string           `json:"root" yaml:"root"`
	Edges []EdgeDefinition `json:"edges" yaml:"edges"`
}

// EdgeDefinition is a directed transition between two steps or terminals.
// Condition is free documentation text and is never evaluated.
type EdgeDefinition struct {
	From      string         `json:"from" yaml:"from"`
	To        string         `json:"to" yaml:"to"`
	Guard     string         `json:"guard,omitempty" yaml:"guard,omitempty"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Kind      string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	OnFailure *FailurePolicy `json:"onFailure,omitempty" yaml:"onFailure,omitempty"`
}

// FailurePolicy selects the strategy applied when the edge's guard fails.
// AlternativeTarget is mandatory for ALTERNATIVE; RetryAttempts/RetryDelayMillis
// only apply to RETRY (attempts default 1, delay default 0).
type FailurePolicy struct {
	Strategy          string `json:"strategy" yaml:"strategy"`
	AlternativeTarget string `json:"alternativeTarget,omitempty" yaml:"alternativeTarget,omitempty"`
	RetryAttempts     int    `json:"retryAttempts,omitempty" yaml:"retryAttempts,omitempty"`
	RetryDelayMillis  int64  `json:"retryDelay,omitempty" yaml:"retryDelay,omitempty"`
}

// Step returns the step declared under name.
func (c *Configuration) Step(name string) (*StepDefinition, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Steps {
		if c.Steps[i].Name == name {
			return &c.Steps[i], true
		}
	}
	return nil, false
}

// EnsureStep returns the step declared under name, appending an empty entry
// when absent. Declaration order is preserved.
func (c *Configuration) EnsureStep(name string) *StepDefinition {
	if st, ok := c.Step(name); ok {
		return st
	}
	c.Steps = append(c.Steps, StepDefinition{Name: name})
	return &c.Steps[len(c.Steps)-1]
}

// Workflow returns the workflow declared under name.
func (c *Configuration) Workflow(name string) (*WorkflowDefinition, bool) {
	if c == nil {
		return nil, false
	}
	for i := range c.Workflows {
		if c.Workflows[i].Name == name {
			return &c.Workflows[i], true
		}
	}
	return nil, false
}

// EnsureWorkflow returns the workflow declared under name, appending an empty
// entry when absent.
func (c *Configuration) EnsureWorkflow(name string) *WorkflowDefinition {
	if wf, ok := c.Workflow(name); ok {
		return wf
	}
	c.Workflows = append(c.Workflows, WorkflowDefinition{Name: name})
	return &c.Workflows[len(c.Workflows)-1]
}

func validStrategy(strategy string) bool {
	switch strategy {
	case StrategyStop, StrategySkip, StrategyAlternative, StrategyRetry, StrategyContinue:
		return true
	}
	return false
}

func normalizeName(name string) string {
	return strings.TrimSpace(name)
}
