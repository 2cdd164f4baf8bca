package flowdsl

import (
	"fmt"
	"strings"
)

// Diagnostic is a recoverable, line-numbered parse failure. Lines are 1-based.
type Diagnostic struct {
	Line    int    `json:"line" yaml:"line"`
	Message string `json:"message" yaml:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
}

// ParseResult is the best-effort configuration plus every diagnostic
// collected while parsing. The parser never aborts: malformed lines append a
// diagnostic and parsing continues on the next line.
type ParseResult struct {
	Config      *Configuration
	Diagnostics []Diagnostic
}

// HasErrors reports whether any diagnostic was collected.
func (r *ParseResult) HasErrors() bool {
	return r != nil && len(r.Diagnostics) > 0
}

// Parser drives the line pass. The zero value is usable; NewParser attaches
// options such as a logger for trace output on recovered lines.
type Parser struct {
	logger Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithParserLogger attaches a logger used for trace notes on recovered
// diagnostics. Parsing behavior is unchanged.
func WithParserLogger(logger Logger) ParserOption {
	return func(p *Parser) {
		p.logger = logger
	}
}

// NewParser builds a parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse compiles DSL text with a default parser.
func Parse(input string) *ParseResult {
	return NewParser().Parse(input)
}

// Parse runs the tolerant line pass and the referenced-step synthesis pass
// over input and returns the accumulated configuration and diagnostics.
func (p *Parser) Parse(input string) *ParseResult {
	cfg := NewConfiguration()
	result := &ParseResult{Config: cfg}

	var ctx parseContext = topLevelContext{}
	input = strings.ReplaceAll(input, "\r\n", "\n")
	for i, raw := range strings.Split(input, "\n") {
		line := strings.TrimSpace(raw)
		if skippableLine(line) {
			continue
		}
		lineNo := i + 1

		next, isHeader := classifyLine(line, ctx)
		ctx = next
		if isHeader {
			p.applyHeader(cfg, ctx, line)
			continue
		}
		p.parseBody(cfg, ctx, line, lineNo, result)
	}

	synthesizeReferencedSteps(cfg)
	return result
}

// applyHeader materializes the entry a section header declares.
func (p *Parser) applyHeader(cfg *Configuration, ctx parseContext, line string) {
	switch c := ctx.(type) {
	case stepContext:
		_, stepType, _ := parseStepHeader(line)
		step := cfg.EnsureStep(c.step)
		step.Type = stepType
	case workflowContext:
		cfg.EnsureWorkflow(c.workflow)
	}
}

func (p *Parser) parseBody(cfg *Configuration, ctx parseContext, line string, lineNo int, result *ParseResult) {
	switch c := ctx.(type) {
	case settingsContext:
		key, value, ok := parseAssignment(line)
		if !ok {
			p.report(result, lineNo, "Expected key = value in settings section")
			return
		}
		SetPath(cfg.Settings, key, value)

	case defaultsContext:
		key, value, ok := parseAssignment(line)
		if !ok {
			p.report(result, lineNo, "Expected key = value in defaults section")
			return
		}
		if !setDefault(&cfg.Defaults, key, value) {
			p.report(result, lineNo, fmt.Sprintf("Defaults key %q needs a category or component prefix", key))
		}

	case stepContext:
		step := cfg.EnsureStep(c.step)
		if guards, ok := parseRequires(line); ok {
			step.Guards = guards
			return
		}
		if retry, ok := parseRetryLine(line); ok {
			step.Retry = retry
			return
		}
		if retryLinePattern.MatchString(line) {
			p.report(result, lineNo, "Invalid retry syntax: expected retry: Nx / duration ? guard")
			return
		}
		p.report(result, lineNo, fmt.Sprintf("Unknown step directive %q", line))

	case stepConfigContext:
		if strings.HasSuffix(line, ":") {
			p.report(result, lineNo, "Nested config blocks are not supported")
			return
		}
		key, value, ok := parseAssignment(line)
		if !ok {
			p.report(result, lineNo, "Expected key = value in config section")
			return
		}
		step := cfg.EnsureStep(c.step)
		if step.Config == nil {
			step.Config = map[string]any{}
		}
		SetPath(step.Config, key, value)

	case workflowContext:
		wf := cfg.EnsureWorkflow(c.workflow)
		if root, ok := parseRootLine(line); ok {
			wf.Root = root
			return
		}
		edge, ok := parseEdgeLine(line)
		if !ok {
			p.report(result, lineNo, "Invalid edge syntax")
			return
		}
		wf.Edges = append(wf.Edges, edge)

	default:
		p.report(result, lineNo, fmt.Sprintf("Unexpected content outside of any section: %q", line))
	}
}

func (p *Parser) report(result *ParseResult, line int, message string) {
	result.Diagnostics = append(result.Diagnostics, Diagnostic{Line: line, Message: message})
	if p.logger != nil {
		p.logger.Debug("recovered parse diagnostic line=%d message=%s", line, message)
	}
}

// setDefault routes a defaults assignment: the first path segment selects the
// step/guard category or a named-component bucket, the remaining segments are
// set through the dotted-path setter.
func setDefault(defaults *Defaults, key string, value any) bool {
	segments := splitPath(key)
	if len(segments) < 2 {
		return false
	}
	rest := strings.Join(segments[1:], ".")
	switch segments[0] {
	case "step":
		if defaults.Step == nil {
			defaults.Step = map[string]any{}
		}
		SetPath(defaults.Step, rest, value)
	case "guard":
		if defaults.Guard == nil {
			defaults.Guard = map[string]any{}
		}
		SetPath(defaults.Guard, rest, value)
	default:
		if defaults.Named == nil {
			defaults.Named = map[string]map[string]any{}
		}
		bucket := defaults.Named[segments[0]]
		if bucket == nil {
			bucket = map[string]any{}
			defaults.Named[segments[0]] = bucket
		}
		SetPath(bucket, rest, value)
	}
	return true
}

// synthesizeReferencedSteps appends a placeholder step (typed as its own
// name) for every step name referenced by a workflow but never declared, so
// downstream validation never sees an undeclared reference. Terminals are
// excluded.
func synthesizeReferencedSteps(cfg *Configuration) {
	referenced := make([]string, 0)
	seen := map[string]struct{}{}
	note := func(name string) {
		name = normalizeName(name)
		if name == "" || IsTerminal(name) {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		referenced = append(referenced, name)
	}

	for _, wf := range cfg.Workflows {
		note(wf.Root)
		for _, edge := range wf.Edges {
			note(edge.From)
			note(edge.To)
			if edge.OnFailure != nil {
				note(edge.OnFailure.AlternativeTarget)
			}
		}
	}

	for _, name := range referenced {
		if _, ok := cfg.Step(name); ok {
			continue
		}
		cfg.Steps = append(cfg.Steps, StepDefinition{Name: name, Type: name})
	}
}
