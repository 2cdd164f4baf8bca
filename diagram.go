package flowdsl

import (
	"fmt"
	"strings"
)

// Node types used by the live-diagram projection.
const (
	NodeTypeStep     = "step"
	NodeTypeGuard    = "guard"
	NodeTypeTerminal = "terminal"
)

// Edge labels used by guard branch wiring.
const (
	EdgeLabelSuccess = "success"
	EdgeLabelFailure = "failure"
)

// Graph is the node/edge surface a live diagram projects into the validator.
// It carries the same semantics as a compiled workflow with two differences:
// "root" is a per-node flag rather than a single field, and half-wired edges
// are expected while the user is still drawing.
type Graph struct {
	Nodes []GraphNode `json:"nodes" yaml:"nodes"`
	Edges []GraphEdge `json:"edges" yaml:"edges"`
}

// GraphNode is one diagram element.
type GraphNode struct {
	ID     string         `json:"id" yaml:"id"`
	Type   string         `json:"type" yaml:"type"`
	Label  string         `json:"label,omitempty" yaml:"label,omitempty"`
	Root   bool           `json:"root,omitempty" yaml:"root,omitempty"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// GraphEdge is one diagram connection. Label distinguishes the success and
// failure handles of guard nodes.
type GraphEdge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Guard  string `json:"guard,omitempty" yaml:"guard,omitempty"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ValidateGraph runs the diagram-mode checks. Cycles downgrade to warnings
// here: a diagram under construction may not be wired to a terminal yet.
func ValidateGraph(g *Graph) []ValidationIssue {
	issues := make([]ValidationIssue, 0)
	if g == nil {
		return append(issues, ValidationIssue{
			Severity: SeverityError,
			Message:  "graph is required",
		})
	}

	roots := make([]string, 0, 1)
	for _, node := range g.Nodes {
		if node.Root {
			roots = append(roots, node.ID)
		}
	}
	switch {
	case len(roots) == 0:
		issues = append(issues, ValidationIssue{
			Severity:   SeverityError,
			Message:    "Workflow has no root node",
			Suggestion: "mark the entry node as root",
		})
	case len(roots) > 1:
		issues = append(issues, ValidationIssue{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Workflow has %d root nodes; exactly one is allowed", len(roots)),
			Location:   roots[1],
			Suggestion: "unmark the extra root nodes",
		})
	}

	adj := map[string][]string{}
	outgoing := map[string]int{}
	seen := map[string]string{}
	for _, edge := range g.Edges {
		outgoing[edge.Source]++
		exists := false
		for _, t := range adj[edge.Source] {
			if t == edge.Target {
				exists = true
				break
			}
		}
		if !exists {
			adj[edge.Source] = append(adj[edge.Source], edge.Target)
		}
		key := edge.Source + "\x00" + edge.Target + "\x00" + edge.Guard
		if firstID, dup := seen[key]; dup {
			issues = append(issues, ValidationIssue{
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("Duplicate connection %s -> %s already drawn as %s", edge.Source, edge.Target, firstID),
				Location: edge.ID,
			})
		} else {
			seen[key] = edge.ID
		}
	}

	if len(roots) == 1 {
		reachable := breadthFirst(roots[0], adj)
		for _, node := range g.Nodes {
			if _, ok := reachable[node.ID]; !ok {
				issues = append(issues, ValidationIssue{
					Severity:   SeverityWarning,
					Message:    fmt.Sprintf("Node %q is not connected to the root", nodeName(node)),
					Location:   node.ID,
					Suggestion: "connect the node or delete it",
				})
			}
		}
		for _, cycle := range findCycles(roots[0], adj) {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    "Cycle detected: " + strings.Join(cycle, " -> "),
				Location:   roots[0],
				Suggestion: "break the loop or route it through a terminal",
			})
		}
	}

	for _, node := range g.Nodes {
		if node.Type != NodeTypeTerminal && outgoing[node.ID] == 0 {
			issues = append(issues, ValidationIssue{
				Severity:   SeverityWarning,
				Message:    fmt.Sprintf("Node %q is a dead end", nodeName(node)),
				Location:   node.ID,
				Suggestion: "route the node to SUCCESS, FAILURE or a next node",
			})
		}
		if node.Type == NodeTypeGuard {
			issues = append(issues, checkGuardBranches(node, g.Edges)...)
		}
	}
	return issues
}

// checkGuardBranches enforces branch completeness for a guard node: exactly
// one success edge and exactly one failure edge.
func checkGuardBranches(node GraphNode, edges []GraphEdge) []ValidationIssue {
	success, failure := 0, 0
	for _, edge := range edges {
		if edge.Source != node.ID {
			continue
		}
		switch edge.Label {
		case EdgeLabelSuccess:
			success++
		case EdgeLabelFailure:
			failure++
		}
	}

	issues := make([]ValidationIssue, 0, 2)
	if success == 0 {
		issues = append(issues, ValidationIssue{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Guard %q has no success branch", nodeName(node)),
			Location:   node.ID,
			Suggestion: "connect the success handle",
		})
	}
	if failure == 0 {
		issues = append(issues, ValidationIssue{
			Severity:   SeverityError,
			Message:    fmt.Sprintf("Guard %q has no failure branch", nodeName(node)),
			Location:   node.ID,
			Suggestion: "connect the failure handle",
		})
	}
	if success > 1 {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("Guard %q has %d success branches; only the first match runs", nodeName(node), success),
			Location: node.ID,
		})
	}
	return issues
}

// GraphFromWorkflow projects a compiled workflow into the diagram surface,
// mainly for tooling that wants diagram-mode checks over declarative input.
func GraphFromWorkflow(cfg *Configuration, wf *WorkflowDefinition) *Graph {
	g := &Graph{}
	terminals := map[string]struct{}{}
	for _, step := range cfg.Steps {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     step.Name,
			Type:   NodeTypeStep,
			Label:  step.Name,
			Root:   step.Name == wf.Root,
			Config: step.Config,
		})
	}
	for i, edge := range wf.Edges {
		for _, endpoint := range []string{edge.From, edge.To} {
			if IsTerminal(endpoint) {
				if _, ok := terminals[endpoint]; !ok {
					terminals[endpoint] = struct{}{}
					g.Nodes = append(g.Nodes, GraphNode{ID: endpoint, Type: NodeTypeTerminal, Label: endpoint})
				}
			}
		}
		g.Edges = append(g.Edges, GraphEdge{
			ID:     fmt.Sprintf("%s.edges[%d]", wf.Name, i),
			Source: edge.From,
			Target: edge.To,
			Guard:  edge.Guard,
		})
	}
	return g
}

func nodeName(node GraphNode) string {
	if node.Label != "" {
		return node.Label
	}
	return node.ID
}
