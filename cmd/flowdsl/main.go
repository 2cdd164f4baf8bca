package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	flowdsl "github.com/goliatone/go-flowdsl"
	"github.com/goliatone/go-logger/glog"
)

type cli struct {
	Debug bool `help:"Enable debug logging."`

	Fmt      fmtCmd      `cmd:"" help:"Reprint a workflow document in canonical form."`
	Validate validateCmd `cmd:"" help:"Parse and validate a workflow document."`
	Export   exportCmd   `cmd:"" help:"Export the parsed configuration as JSON or YAML."`
}

type fmtCmd struct {
	File  string `arg:"" type:"existingfile" help:"Path to a .flow document."`
	Write bool   `short:"w" help:"Rewrite the file in place instead of printing."`
}

type validateCmd struct {
	File string `arg:"" type:"existingfile" help:"Path to a .flow document."`
	JSON bool   `help:"Emit the report as JSON."`
}

type exportCmd struct {
	File   string `arg:"" type:"existingfile" help:"Path to a .flow document."`
	Format string `default:"json" enum:"json,yaml" help:"Output format."`
}

func main() {
	app := &cli{}
	ctx := kong.Parse(app,
		kong.Name("flowdsl"),
		kong.Description("Compiler and validator for workflow DSL documents."),
		kong.UsageOnError(),
	)

	level := "info"
	if app.Debug {
		level = "debug"
	}
	logger := glog.NewLogger(glog.WithLevel(level))
	ctx.BindTo(logger, (*glog.Logger)(nil))

	ctx.FatalIfErrorf(ctx.Run())
}

func parseFile(path string, logger glog.Logger) (*flowdsl.ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	parser := flowdsl.NewParser(flowdsl.WithParserLogger(logger))
	return parser.Parse(string(data)), nil
}

func (c *fmtCmd) Run(logger glog.Logger) error {
	result, err := parseFile(c.File, logger)
	if err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		logger.Warn("%s: %s", c.File, diag)
	}
	out, err := flowdsl.Serialize(result.Config)
	if err != nil {
		return err
	}
	if c.Write {
		return os.WriteFile(c.File, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}

type validationReport struct {
	Diagnostics []flowdsl.Diagnostic      `json:"diagnostics"`
	Issues      []flowdsl.ValidationIssue `json:"issues"`
	Score       int                       `json:"score"`
}

func (c *validateCmd) Run(logger glog.Logger) error {
	result, err := parseFile(c.File, logger)
	if err != nil {
		return err
	}
	issues := flowdsl.ValidateConfiguration(result.Config)
	report := validationReport{
		Diagnostics: result.Diagnostics,
		Issues:      issues,
		Score:       flowdsl.ValidationScore(issues),
	}

	if c.JSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		for _, diag := range report.Diagnostics {
			fmt.Println(diag)
		}
		for _, issue := range report.Issues {
			line := fmt.Sprintf("%s: %s", issue.Severity, issue.Message)
			if issue.Location != "" {
				line += " (" + issue.Location + ")"
			}
			fmt.Println(line)
			if issue.Suggestion != "" {
				fmt.Println("  hint: " + issue.Suggestion)
			}
		}
		fmt.Printf("score: %d\n", report.Score)
	}

	if len(report.Diagnostics) > 0 {
		return fmt.Errorf("%d parse diagnostic(s) in %s", len(report.Diagnostics), c.File)
	}
	for _, issue := range report.Issues {
		if issue.Severity == flowdsl.SeverityError {
			return fmt.Errorf("validation errors in %s", c.File)
		}
	}
	return nil
}

func (c *exportCmd) Run(logger glog.Logger) error {
	result, err := parseFile(c.File, logger)
	if err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		logger.Warn("%s: %s", c.File, diag)
	}

	var out []byte
	switch c.Format {
	case "yaml":
		out, err = flowdsl.MarshalConfigYAML(result.Config)
	default:
		out, err = flowdsl.MarshalConfigJSON(result.Config)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
