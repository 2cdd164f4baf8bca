package flowdsl

import "regexp"

// Parse contexts form a closed set; each variant carries only the fields its
// section grammar needs. The sealed marker keeps context handling exhaustive
// inside this package.
type parseContext interface {
	parseContext()
}

type topLevelContext struct{}
type settingsContext struct{}
type defaultsContext struct{}

type workflowContext struct {
	workflow string
}

type stepContext struct {
	step string
}

type stepConfigContext struct {
	step string
}

func (topLevelContext) parseContext()   {}
func (settingsContext) parseContext()   {}
func (defaultsContext) parseContext()   {}
func (workflowContext) parseContext()   {}
func (stepContext) parseContext()       {}
func (stepConfigContext) parseContext() {}

// Section headers are recognized by anchored patterns regardless of the
// current context.
var (
	settingsHeaderPattern = regexp.MustCompile(`^settings:$`)
	defaultsHeaderPattern = regexp.MustCompile(`^defaults:$`)
	workflowHeaderPattern = regexp.MustCompile(`^workflow\s+([^\s:]+)\s*:$`)
	stepHeaderPattern     = regexp.MustCompile(`^step\s+([^\s:]+)\s*:\s*(\S+)$`)
	configHeaderPattern   = regexp.MustCompile(`^config:$`)
)

// classifyLine decides which section grammar applies to a trimmed, non-blank,
// non-comment line. Section headers switch context; anything else keeps the
// current one. The config: sub-header only opens step-config while inside a
// step body.
func classifyLine(line string, current parseContext) (parseContext, bool) {
	switch {
	case settingsHeaderPattern.MatchString(line):
		return settingsContext{}, true
	case defaultsHeaderPattern.MatchString(line):
		return defaultsContext{}, true
	case workflowHeaderPattern.MatchString(line):
		m := workflowHeaderPattern.FindStringSubmatch(line)
		return workflowContext{workflow: m[1]}, true
	case stepHeaderPattern.MatchString(line):
		m := stepHeaderPattern.FindStringSubmatch(line)
		return stepContext{step: m[1]}, true
	}
	if sc, ok := current.(stepContext); ok && configHeaderPattern.MatchString(line) {
		return stepConfigContext{step: sc.step}, true
	}
	return current, false
}

// skippableLine reports whether the raw line is blank or a whole-line comment.
// Comments are whole-line only; a trailing # inside a section body is data.
func skippableLine(trimmed string) bool {
	return trimmed == "" || trimmed[0] == '#'
}
