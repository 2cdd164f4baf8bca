package flowdsl

import (
	"fmt"
	"math"
	"strings"
)

// Issue severities. Errors block downstream execution-config generation,
// warnings are executable but suspect, info is stylistic.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// ValidationIssue is one finding of a validation pass. Issues are ephemeral:
// recomputed in full on every pass, never diffed or persisted. Location uses
// the dotted form steps.<name>.<field> / workflows.<name>.edges[i].<field>.
type ValidationIssue struct {
	Severity   string `json:"type" yaml:"type"`
	Message    string `json:"message" yaml:"message"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	Suggestion string `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Advisory thresholds for the performance heuristics.
const (
	maxRecommendedRetries   = 10
	maxRecommendedDepth     = 20
	maxRecommendedBranching = 5
)

// Score weights: max(0, 100 - 15*errors - 5*warnings). Purely advisory.
const (
	scoreBase          = 100
	scoreErrorWeight   = 15
	scoreWarningWeight = 5
)

// ValidationScore computes the advisory score for an issue list.
func ValidationScore(issues []ValidationIssue) int {
	score := scoreBase
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			score -= scoreErrorWeight
		case SeverityWarning:
			score -= scoreWarningWeight
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// ValidateConfiguration runs every independent check over a compiled
// configuration and returns the cumulative ordered issue list.
func ValidateConfiguration(cfg *Configuration) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	if cfg == nil {
		return append(issues, ValidationIssue{
			Severity: SeverityError,
			Message:  "configuration is required",
		})
	}
	issues = append(issues, checkStepConfiguration(cfg)...)
	for i := range cfg.Workflows {
		issues = append(issues, checkWorkflowStructure(&cfg.Workflows[i])...)
	}
	issues = append(issues, checkReachability(cfg)...)
	return issues
}

// checkStepConfiguration covers the per-step configuration checks: missing
// type, invalid config values, retry policy invariants and advisories.
func checkStepConfiguration(cfg *Configuration) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	for _, step := range cfg.Steps {
		loc := "steps." + step.Name
		if normalizeName(step.Type) == "" {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityError,
				Message:    fmt.Sprintf("Step %q is missing a type", step.Name),
				Location:   loc + ".type",
				Suggestion: "assign a component type to the step",
			})
		}
		if !serializableValue(step.Config) {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Step %q has a non-serializable config value", step.Name),
				Location: loc + ".config",
			})
		}
		if step.Retry == nil {
			continue
		}
		if step.Retry.MaxAttempts < 1 {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Step %q retry attempts must be at least 1", step.Name),
				Location: loc + ".retry.maxAttempts",
			})
		}
		if step.Retry.DelayMillis < 0 {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  fmt.Sprintf("Step %q retry delay must not be negative", step.Name),
				Location: loc + ".retry.delay",
			})
		}
		if step.Retry.MaxAttempts > maxRecommendedRetries {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Step %q retries %d times; more than %d attempts hurts throughput", step.Name, step.Retry.MaxAttempts, maxRecommendedRetries),
				Location:   loc + ".retry.maxAttempts",
				Suggestion: "lower the retry count or add a backoff delay",
			})
		}
		if step.Retry.Guard == "" {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityInfo,
				Message:    fmt.Sprintf("Step %q retry policy has no guard; the step retries unconditionally", step.Name),
				Location:   loc + ".retry.guard",
				Suggestion: "add a retry guard to stop retrying on permanent failures",
			})
		}
	}
	return issues
}

// checkWorkflowStructure covers root presence, duplicate edges, cycles and
// the depth/branching heuristics for one workflow.
func checkWorkflowStructure(wf *WorkflowDefinition) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	loc := "workflows." + wf.Name

	if normalizeName(wf.Root) == "" {
		issues = append(issues, ValidationIssue{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Workflow %q has no root step", wf.Name),
			Location:   loc + ".root",
			Suggestion: "set root: to the entry step",
		})
	}

	// Duplicate detection keys on (from, to, guard); adjacency ignores guard.
	seen := make(map[string]int, len(wf.Edges))
	for i, edge := range wf.Edges {
		key := edge.From + "\x00" + edge.To + "\x00" + edge.Guard
		if first, dup := seen[key]; dup {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Duplicate edge %s -> %s (same guard) already declared at edges[%d]", edge.From, edge.To, first),
				Location: fmt.Sprintf("%s.edges[%d]", loc, i),
			})
			continue
		}
		seen[key] = i
	}

	adj := adjacency(wf.Edges)
	if normalizeName(wf.Root) != "" && !IsTerminal(wf.Root) {
		for _, cycle := range findCycles(wf.Root, adj) {
			issues = append(issues, ValidationIssue{
				Severity: SeverityError,
				Message:  "Cycle detected: " + strings.Join(cycle, " -> "),
				Location: loc,
			})
		}
		if depth := graphDepth(wf.Root, adj); depth > maxRecommendedDepth {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Workflow %q chains %d steps deep; long chains slow execution and debugging", wf.Name, depth),
				Location:   loc,
				Suggestion: "split the workflow into smaller workflows",
			})
		}
	}
	for _, node := range orderedSources(wf.Edges) {
		if targets := adj[node]; len(targets) > maxRecommendedBranching {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Step %q branches into %d targets in workflow %q", node, len(targets), wf.Name),
				Location: loc,
			})
		}
	}
	return issues
}

// checkReachability flags declared steps that no workflow root reaches and
// non-terminal steps with no outgoing edge anywhere (dead ends).
func checkReachability(cfg *Configuration) []ValidationIssue {
	issues := make([]ValidationIssue, 0)

	reachable := map[string]struct{}{}
	outgoing := map[string]int{}
	for _, wf := range cfg.Workflows {
		adj := adjacency(wf.Edges)
		for from, targets := range adj {
			outgoing[from] += len(targets)
		}
		if normalizeName(wf.Root) == "" {
			continue
		}
		for node := range breadthFirst(wf.Root, adj) {
			reachable[node] = struct{}{}
		}
	}

	for _, step := range cfg.Steps {
		if _, ok := reachable[step.Name]; !ok {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Step %q is not reachable from any workflow root", step.Name),
				Location:   "steps." + step.Name,
				Suggestion: "connect the step to the workflow or remove it",
			})
		}
		if outgoing[step.Name] == 0 {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Step %q is a dead end: no outgoing edge and not a terminal", step.Name),
				Location:   "steps." + step.Name,
				Suggestion: "route the step to SUCCESS, FAILURE or a next step",
			})
		}
	}
	return issues
}

// adjacency builds the traversal relation for a workflow's edges. Guards are
// ignored: two edges with the same endpoints and different guards collapse to
// one adjacency.
func adjacency(edges []EdgeDefinition) map[string][]string {
	adj := map[string][]string{}
	for _, edge := range edges {
		targets := adj[edge.From]
		exists := false
		for _, t := range targets {
			if t == edge.To {
				exists = true
				break
			}
		}
		if !exists {
			adj[edge.From] = append(targets, edge.To)
		}
	}
	return adj
}

// orderedSources lists unique edge sources in first-seen order so warning
// output stays deterministic.
func orderedSources(edges []EdgeDefinition) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(edges))
	for _, edge := range edges {
		if _, ok := seen[edge.From]; ok {
			continue
		}
		seen[edge.From] = struct{}{}
		out = append(out, edge.From)
	}
	return out
}

// breadthFirst returns every node reachable from root, root included.
func breadthFirst(root string, adj map[string][]string) map[string]struct{} {
	visited := map[string]struct{}{root: {}}
	queue := []string{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return visited
}

// graphDepth returns the longest breadth-first distance (in edges) from root.
func graphDepth(root string, adj map[string][]string) int {
	depth := 0
	visited := map[string]struct{}{root: {}}
	level := []string{root}
	for len(level) > 0 {
		var next []string
		for _, node := range level {
			for _, target := range adj[node] {
				if _, ok := visited[target]; ok {
					continue
				}
				visited[target] = struct{}{}
				next = append(next, target)
			}
		}
		if len(next) > 0 {
			depth++
		}
		level = next
	}
	return depth
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

// findCycles runs an iterative depth-first traversal from root with
// white/gray/black coloring. A back-edge into the gray stack reports one
// cycle carrying its full path; black nodes are never revisited, keeping the
// scan linear in edge count. The traversal is iterative so pathological
// thousands-deep chains cannot exhaust the goroutine stack.
func findCycles(root string, adj map[string][]string) [][]string {
	type frame struct {
		node string
		next int
	}

	var cycles [][]string
	colors := map[string]int{root: colorGray}
	stack := []frame{{node: root}}
	path := []string{root}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		targets := adj[top.node]
		if top.next >= len(targets) {
			colors[top.node] = colorBlack
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			continue
		}
		target := targets[top.next]
		top.next++
		switch colors[target] {
		case colorGray:
			start := 0
			for i, node := range path {
				if node == target {
					start = i
					break
				}
			}
			cycle := make([]string, 0, len(path)-start+1)
			cycle = append(cycle, path[start:]...)
			cycle = append(cycle, target)
			cycles = append(cycles, cycle)
		case colorWhite:
			colors[target] = colorGray
			stack = append(stack, frame{node: target})
			path = append(path, target)
		}
	}
	return cycles
}

// serializableValue reports whether a config value survives serialization:
// finite scalars, string-keyed maps and slices of such, recursively.
func serializableValue(value any) bool {
	switch v := value.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
	case float64:
		return !math.IsNaN(v) && !math.IsInf(v, 0)
	case map[string]any:
		for _, item := range v {
			if !serializableValue(item) {
				return false
			}
		}
		return true
	case map[string]string:
		return true
	case []string:
		return true
	case []any:
		for _, item := range v {
			if !serializableValue(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
