package flowdsl

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const yamlFixture = `
steps:
  - name: fetch
    type: HTTPFetcher
    config:
      url: https://example.com
    retry:
      maxAttempts: 3
      delay: 500
      guard: transient
workflows:
  - name: sync
    root: fetch
    edges:
      - from: fetch
        to: SUCCESS
        kind: terminal
        condition: response status is 2xx
`

func TestParseConfigDocumentYAML(t *testing.T) {
	cfg, err := ParseConfigDocument([]byte(yamlFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	step, ok := cfg.Step("fetch")
	if !ok {
		t.Fatal("step fetch missing")
	}
	if step.Type != "HTTPFetcher" || step.Config["url"] != "https://example.com" {
		t.Fatalf("step: %#v", step)
	}
	if !reflect.DeepEqual(step.Retry, &RetryPolicy{MaxAttempts: 3, DelayMillis: 500, Guard: "transient"}) {
		t.Fatalf("retry: %#v", step.Retry)
	}

	wf, _ := cfg.Workflow("sync")
	if len(wf.Edges) != 1 {
		t.Fatalf("edges: %#v", wf.Edges)
	}
	// Condition has no DSL syntax but must survive the structured form.
	if wf.Edges[0].Condition != "response status is 2xx" {
		t.Fatalf("condition: %q", wf.Edges[0].Condition)
	}
}

func TestParseConfigDocumentJSON(t *testing.T) {
	doc := `{"steps":[{"name":"a","type":"A"}],"workflows":[{"name":"w","root":"a","edges":[{"from":"a","to":"SUCCESS"}]}]}`
	cfg, err := ParseConfigDocument([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := cfg.Step("a"); !ok {
		t.Fatalf("step missing: %#v", cfg)
	}
}

func TestParseConfigDocumentRejectsMalformed(t *testing.T) {
	if _, err := ParseConfigDocument([]byte("steps: [")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseConfigDocumentEnforcesInvariants(t *testing.T) {
	doc := `{"steps":[{"name":"a","type":"A"},{"name":"a","type":"B"}]}`
	_, err := ParseConfigDocument([]byte(doc))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("got %v, want ErrInvalidConfiguration", err)
	}
}

func TestMarshalConfigRoundTrip(t *testing.T) {
	original, err := ParseConfigDocument([]byte(yamlFixture))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	for name, marshal := range map[string]func(*Configuration) ([]byte, error){
		"json": MarshalConfigJSON,
		"yaml": MarshalConfigYAML,
	} {
		data, err := marshal(original)
		if err != nil {
			t.Fatalf("%s marshal: %v", name, err)
		}
		back, err := ParseConfigDocument(data)
		if err != nil {
			t.Fatalf("%s reparse: %v", name, err)
		}
		if !reflect.DeepEqual(original, back) {
			t.Fatalf("%s round trip changed the configuration:\n%#v\nvs\n%#v", name, original, back)
		}
	}
}

func TestMarshalConfigJSONRejectsInvalid(t *testing.T) {
	cfg := &Configuration{Workflows: []WorkflowDefinition{{Name: "w", Edges: []EdgeDefinition{{From: "a"}}}}}
	if _, err := MarshalConfigJSON(cfg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("got %v", err)
	}
	if _, err := MarshalConfigYAML(cfg); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("got %v", err)
	}
}

func TestBridgeDSLToDocument(t *testing.T) {
	dsl := strings.Join([]string{
		"step fetch: HTTPFetcher",
		"workflow sync:",
		"  root: fetch",
		"  fetch -> SUCCESS",
	}, "\n")
	parsed := Parse(dsl)
	if parsed.HasErrors() {
		t.Fatalf("diagnostics: %v", parsed.Diagnostics)
	}

	data, err := MarshalConfigYAML(parsed.Config)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := ParseConfigDocument(data)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	out, err := Serialize(back)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want, err := Serialize(parsed.Config)
	if err != nil {
		t.Fatalf("serialize original: %v", err)
	}
	if out != want {
		t.Fatalf("document bridge changed the canonical form:\n%s\nvs\n%s", out, want)
	}
}
