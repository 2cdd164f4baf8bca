package flowdsl

import (
	"regexp"
	"strconv"
	"strings"
)

// Section grammars. Each matcher consumes one trimmed line (or one clause of
// it) and reports success instead of erroring; the driver turns failures into
// recoverable diagnostics.

var (
	assignmentPattern = regexp.MustCompile(`^([^\s=]+)\s*=\s*(.+)$`)
	requiresPattern   = regexp.MustCompile(`^requires:\s*(.*)$`)
	retryLinePattern  = regexp.MustCompile(`^retry:\s*(.+)$`)
	retryValuePattern = regexp.MustCompile(`^(\d+)x(?:\s*/\s*(\d+(?:ms|s|m)))?(?:\s*\?\s*(\S+))?$`)
	rootLinePattern   = regexp.MustCompile(`^root:\s*(\S+)$`)

	failureKeywordPattern = regexp.MustCompile(`^(?:fail|on failure)\b\s*(.*)$`)
	failureAltPattern     = regexp.MustCompile(`^->\s*(\S+)$`)
	failureRetryPattern   = regexp.MustCompile(`^retry(?:\s+(\d+)x)?(?:\s*/\s*(\d+(?:ms|s|m)))?$`)
)

// parseAssignment matches `key(.key)* = value` and returns the dotted key and
// the typed value.
func parseAssignment(line string) (string, any, bool) {
	m := assignmentPattern.FindStringSubmatch(line)
	if m == nil {
		return "", nil, false
	}
	return m[1], ParseScalar(m[2]), true
}

// parseStepHeader matches `step NAME: TYPE`.
func parseStepHeader(line string) (name, stepType string, ok bool) {
	m := stepHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// parseWorkflowHeader matches `workflow NAME:`.
func parseWorkflowHeader(line string) (string, bool) {
	m := workflowHeaderPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parseRequires matches `requires: a, b, c`. The guard list is comma-split
// and trimmed; an all-empty list collapses to nil.
func parseRequires(line string) ([]string, bool) {
	m := requiresPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	var guards []string
	for _, part := range strings.Split(m[1], ",") {
		if part = strings.TrimSpace(part); part != "" {
			guards = append(guards, part)
		}
	}
	return guards, true
}

// parseRetryLine matches `retry: Nx / DURATION ? guard` with optional
// duration and guard suffix.
func parseRetryLine(line string) (*RetryPolicy, bool) {
	m := retryLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	v := retryValuePattern.FindStringSubmatch(strings.TrimSpace(m[1]))
	if v == nil {
		return nil, false
	}
	attempts, err := strconv.Atoi(v[1])
	if err != nil || attempts < 1 {
		return nil, false
	}
	policy := &RetryPolicy{MaxAttempts: attempts, Guard: v[3]}
	if v[2] != "" {
		delay, err := ParseDurationMillis(v[2])
		if err != nil {
			return nil, false
		}
		policy.DelayMillis = delay
	}
	return policy, true
}

// parseRootLine matches `root: NAME`.
func parseRootLine(line string) (string, bool) {
	m := rootLinePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// parseEdgeLine matches
//
//	FROM -> TO ( ? GUARD )? ( (fail|on failure) <failure clause> )?
//
// composed left to right from the base matcher, the optional guard suffix and
// the optional failure clause.
func parseEdgeLine(line string) (EdgeDefinition, bool) {
	from, to, rest, ok := matchEdgeBase(line)
	if !ok {
		return EdgeDefinition{}, false
	}
	edge := EdgeDefinition{From: from, To: to}
	if IsTerminal(to) {
		edge.Kind = EdgeKindTerminal
	}

	if guard, remainder, ok := matchEdgeGuard(rest); ok {
		edge.Guard = guard
		rest = remainder
	}
	if rest != "" {
		policy, ok := matchFailureClause(rest)
		if !ok {
			return EdgeDefinition{}, false
		}
		edge.OnFailure = policy
	}
	return edge, true
}

// matchEdgeBase consumes `FROM -> TO` and returns the unparsed remainder.
func matchEdgeBase(line string) (from, to, rest string, ok bool) {
	idx := strings.Index(line, "->")
	if idx < 0 {
		return "", "", "", false
	}
	from = strings.TrimSpace(line[:idx])
	if from == "" || len(strings.Fields(from)) != 1 {
		return "", "", "", false
	}
	remainder := strings.TrimSpace(line[idx+2:])
	if remainder == "" {
		return "", "", "", false
	}
	fields := strings.SplitN(remainder, " ", 2)
	to = fields[0]
	if strings.ContainsAny(to, "?>") {
		return "", "", "", false
	}
	if len(fields) == 2 {
		rest = strings.TrimSpace(fields[1])
	}
	return from, to, rest, true
}

// matchEdgeGuard consumes a leading `? GUARD` suffix.
func matchEdgeGuard(rest string) (guard, remainder string, ok bool) {
	if !strings.HasPrefix(rest, "?") {
		return "", rest, false
	}
	trimmed := strings.TrimSpace(rest[1:])
	if trimmed == "" {
		return "", rest, false
	}
	fields := strings.SplitN(trimmed, " ", 2)
	guard = fields[0]
	if len(fields) == 2 {
		remainder = strings.TrimSpace(fields[1])
	}
	return guard, remainder, true
}

// matchFailureClause consumes the whole failure clause. Alternatives are
// order-sensitive: an explicit `fail -> TARGET` wins over the retry keyword
// scan, which wins over the bare strategy keywords.
func matchFailureClause(rest string) (*FailurePolicy, bool) {
	m := failureKeywordPattern.FindStringSubmatch(rest)
	if m == nil {
		return nil, false
	}
	clause := strings.TrimSpace(m[1])

	if alt := failureAltPattern.FindStringSubmatch(clause); alt != nil {
		return &FailurePolicy{Strategy: StrategyAlternative, AlternativeTarget: alt[1]}, true
	}
	if retry := failureRetryPattern.FindStringSubmatch(clause); retry != nil {
		policy := &FailurePolicy{Strategy: StrategyRetry, RetryAttempts: 1}
		if retry[1] != "" {
			attempts, err := strconv.Atoi(retry[1])
			if err != nil || attempts < 1 {
				return nil, false
			}
			policy.RetryAttempts = attempts
		}
		if retry[2] != "" {
			delay, err := ParseDurationMillis(retry[2])
			if err != nil {
				return nil, false
			}
			policy.RetryDelayMillis = delay
		}
		return policy, true
	}
	switch clause {
	case "skip":
		return &FailurePolicy{Strategy: StrategySkip}, true
	case "stop":
		return &FailurePolicy{Strategy: StrategyStop}, true
	case "continue":
		return &FailurePolicy{Strategy: StrategyContinue}, true
	}
	return nil, false
}
