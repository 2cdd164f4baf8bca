package flowdsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wf(name, root string, edges ...EdgeDefinition) WorkflowDefinition {
	return WorkflowDefinition{Name: name, Root: root, Edges: edges}
}

func edge(from, to string) EdgeDefinition {
	e := EdgeDefinition{From: from, To: to}
	if IsTerminal(to) {
		e.Kind = EdgeKindTerminal
	}
	return e
}

func issuesWith(issues []ValidationIssue, severity, fragment string) []ValidationIssue {
	var out []ValidationIssue
	for _, issue := range issues {
		if issue.Severity == severity && strings.Contains(issue.Message, fragment) {
			out = append(out, issue)
		}
	}
	return out
}

func TestValidateCycleReportsFullPath(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Steps = []StepDefinition{
		{Name: "A", Type: "A"}, {Name: "B", Type: "B"}, {Name: "C", Type: "C"},
	}
	cfg.Workflows = []WorkflowDefinition{
		wf("loop", "A", edge("A", "B"), edge("B", "C"), edge("C", "A")),
	}

	issues := ValidateConfiguration(cfg)
	cycles := issuesWith(issues, SeverityError, "Cycle detected")
	require.Len(t, cycles, 1)
	assert.Equal(t, "Cycle detected: A -> B -> C -> A", cycles[0].Message)
	assert.Equal(t, "workflows.loop", cycles[0].Location)
}

func TestValidateSelfLoop(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Steps = []StepDefinition{{Name: "A", Type: "A"}}
	cfg.Workflows = []WorkflowDefinition{wf("w", "A", edge("A", "A"))}

	issues := ValidateConfiguration(cfg)
	cycles := issuesWith(issues, SeverityError, "Cycle detected")
	require.Len(t, cycles, 1)
	assert.Equal(t, "Cycle detected: A -> A", cycles[0].Message)
}

func TestValidateAcyclicGraphHasNoCycleErrors(t *testing.T) {
	// Diamond: two paths converge on D. Convergence is not a cycle.
	cfg := NewConfiguration()
	for _, name := range []string{"A", "B", "C", "D"} {
		cfg.Steps = append(cfg.Steps, StepDefinition{Name: name, Type: name})
	}
	cfg.Workflows = []WorkflowDefinition{
		wf("diamond", "A",
			edge("A", "B"), edge("A", "C"),
			edge("B", "D"), edge("C", "D"),
			edge("D", TerminalSuccess)),
	}

	issues := ValidateConfiguration(cfg)
	assert.Empty(t, issuesWith(issues, SeverityError, "Cycle"))
}

func TestValidateUnreachableAndDeadEnd(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Steps = []StepDefinition{
		{Name: "A", Type: "A"},
		{Name: "B", Type: "B"},
		{Name: "orphan", Type: "orphan"},
	}
	cfg.Workflows = []WorkflowDefinition{
		wf("w", "A", edge("A", "B"), edge("B", TerminalSuccess)),
	}

	issues := ValidateConfiguration(cfg)

	unreachable := issuesWith(issues, SeverityWarning, "not reachable")
	require.Len(t, unreachable, 1)
	assert.Equal(t, "steps.orphan", unreachable[0].Location)

	// orphan also has no outgoing edge, so it is the single dead end too.
	deadEnds := issuesWith(issues, SeverityWarning, "dead end")
	require.Len(t, deadEnds, 1)
	assert.Equal(t, "steps.orphan", deadEnds[0].Location)
}

func TestValidateMissingRoot(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Workflows = []WorkflowDefinition{wf("w", "", edge("A", "B"))}

	issues := ValidateConfiguration(cfg)
	missing := issuesWith(issues, SeverityError, "has no root step")
	require.Len(t, missing, 1)
	assert.Equal(t, "workflows.w.root", missing[0].Location)
	assert.NotEmpty(t, missing[0].Suggestion)
}

func TestValidateDuplicateEdges(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Steps = []StepDefinition{{Name: "A", Type: "A"}, {Name: "B", Type: "B"}}
	cfg.Workflows = []WorkflowDefinition{
		wf("w", "A",
			EdgeDefinition{From: "A", To: "B", Guard: "g"},
			EdgeDefinition{From: "A", To: "B", Guard: "g"},
			EdgeDefinition{From: "A", To: "B", Guard: "other"},
			edge("B", TerminalSuccess)),
	}

	issues := ValidateConfiguration(cfg)
	dups := issuesWith(issues, SeverityWarning, "Duplicate edge")
	require.Len(t, dups, 1, "same endpoints with a different guard is not a duplicate")
	assert.Equal(t, "workflows.w.edges[1]", dups[0].Location)
	assert.Contains(t, dups[0].Message, "edges[0]")
}

func TestValidateStepConfigurationChecks(t *testing.T) {
	cfg := NewConfiguration()
	cfg.Steps = []StepDefinition{
		{Name: "untyped"},
		{Name: "badcfg", Type: "T", Config: map[string]any{"ch": make(chan int)}},
		{Name: "badretry", Type: "T", Retry: &RetryPolicy{MaxAttempts: 0, DelayMillis: -5}},
		{Name: "eager", Type: "T", Retry: &RetryPolicy{MaxAttempts: 11, Guard: "transient"}},
		{Name: "unguarded", Type: "T", Retry: &RetryPolicy{MaxAttempts: 3}},
	}

	issues := checkStepConfiguration(cfg)

	missingType := issuesWith(issues, SeverityError, "missing a type")
	require.Len(t, missingType, 1)
	assert.Equal(t, "steps.untyped.type", missingType[0].Location)

	require.Len(t, issuesWith(issues, SeverityError, "non-serializable"), 1)
	require.Len(t, issuesWith(issues, SeverityError, "retry attempts must be at least 1"), 1)
	require.Len(t, issuesWith(issues, SeverityError, "retry delay must not be negative"), 1)

	eager := issuesWith(issues, SeverityWarning, "hurts throughput")
	require.Len(t, eager, 1)
	assert.Contains(t, eager[0].Message, `"eager"`)

	unguarded := issuesWith(issues, SeverityInfo, "retries unconditionally")
	require.Len(t, unguarded, 2, "badretry and unguarded both lack a guard")
}

func TestValidateBranchingWarning(t *testing.T) {
	cfg := NewConfiguration()
	edges := []EdgeDefinition{}
	cfg.Steps = []StepDefinition{{Name: "hub", Type: "Hub"}}
	for _, target := range []string{"a", "b", "c", "d", "e", "f"} {
		cfg.Steps = append(cfg.Steps, StepDefinition{Name: target, Type: "T"})
		edges = append(edges, edge("hub", target))
		edges = append(edges, edge(target, TerminalSuccess))
	}
	cfg.Workflows = []WorkflowDefinition{wf("fan", "hub", edges...)}

	issues := ValidateConfiguration(cfg)
	branching := issuesWith(issues, SeverityWarning, "branches into 6 targets")
	require.Len(t, branching, 1)
	assert.Contains(t, branching[0].Message, `"hub"`)
}

func TestValidateDepthWarning(t *testing.T) {
	cfg := NewConfiguration()
	var edges []EdgeDefinition
	prev := "s0"
	cfg.Steps = []StepDefinition{{Name: prev, Type: "T"}}
	for i := 1; i <= 21; i++ {
		name := nodeLabel(i)
		cfg.Steps = append(cfg.Steps, StepDefinition{Name: name, Type: "T"})
		edges = append(edges, edge(prev, name))
		prev = name
	}
	edges = append(edges, edge(prev, TerminalSuccess))
	cfg.Workflows = []WorkflowDefinition{wf("chain", "s0", edges...)}

	issues := ValidateConfiguration(cfg)
	deep := issuesWith(issues, SeverityWarning, "steps deep")
	require.Len(t, deep, 1)
	assert.Contains(t, deep[0].Message, "chains 22 steps deep")
}

func nodeLabel(i int) string {
	return "s" + strings.Repeat("x", i)
}

func TestValidationScore(t *testing.T) {
	cases := []struct {
		errors, warnings, infos int
		want                    int
	}{
		{0, 0, 0, 100},
		{1, 0, 0, 85},
		{0, 1, 0, 95},
		{2, 3, 5, 55},
		{7, 0, 0, 0},
		{6, 3, 0, 0},
	}
	for _, tc := range cases {
		var issues []ValidationIssue
		for i := 0; i < tc.errors; i++ {
			issues = append(issues, ValidationIssue{Severity: SeverityError})
		}
		for i := 0; i < tc.warnings; i++ {
			issues = append(issues, ValidationIssue{Severity: SeverityWarning})
		}
		for i := 0; i < tc.infos; i++ {
			issues = append(issues, ValidationIssue{Severity: SeverityInfo})
		}
		if got := ValidationScore(issues); got != tc.want {
			t.Fatalf("%d errors %d warnings %d infos: score %d want %d", tc.errors, tc.warnings, tc.infos, got, tc.want)
		}
	}
}

func TestValidateNilConfiguration(t *testing.T) {
	issues := ValidateConfiguration(nil)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

func TestValidateCleanWorkflowScoresFull(t *testing.T) {
	doc := strings.Join([]string{
		"step fetch: HTTPFetcher",
		"  retry: 3x / 1s ? transient",
		"workflow sync:",
		"  root: fetch",
		"  fetch -> SUCCESS",
		"  fetch -> FAILURE ? fetch_failed",
	}, "\n")
	result := Parse(doc)
	require.False(t, result.HasErrors())

	issues := ValidateConfiguration(result.Config)
	assert.Empty(t, issues)
	assert.Equal(t, 100, ValidationScore(issues))
}
