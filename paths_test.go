package flowdsl

import (
	"reflect"
	"testing"
)

func TestSetPathCreatesNesting(t *testing.T) {
	root := map[string]any{}
	SetPath(root, "retry.max.count", int64(3))
	SetPath(root, "retry.delay", "500ms")
	SetPath(root, "name", "checkout")

	want := map[string]any{
		"retry": map[string]any{
			"max":   map[string]any{"count": int64(3)},
			"delay": "500ms",
		},
		"name": "checkout",
	}
	if !reflect.DeepEqual(root, want) {
		t.Fatalf("got %#v want %#v", root, want)
	}
}

func TestSetPathReplacesNonMapIntermediate(t *testing.T) {
	root := map[string]any{"a": "scalar"}
	SetPath(root, "a.b", int64(1))
	if _, ok := root["a"].(map[string]any); !ok {
		t.Fatalf("intermediate not replaced: %#v", root)
	}
}

func TestGetPath(t *testing.T) {
	root := map[string]any{}
	SetPath(root, "a.b.c", "deep")

	if value, ok := GetPath(root, "a.b.c"); !ok || value != "deep" {
		t.Fatalf("get a.b.c: %v %v", value, ok)
	}
	if _, ok := GetPath(root, "a.b.missing"); ok {
		t.Fatal("expected miss for absent leaf")
	}
	if _, ok := GetPath(root, "a.b.c.d"); ok {
		t.Fatal("expected miss when traversing through a scalar")
	}
}

func TestFlattenUnflattenInverse(t *testing.T) {
	nested := map[string]any{
		"server": map[string]any{
			"host": "localhost",
			"port": int64(8080),
		},
		"debug": true,
	}
	flat := FlattenMap(nested)
	want := map[string]any{
		"server.host": "localhost",
		"server.port": int64(8080),
		"debug":       true,
	}
	if !reflect.DeepEqual(flat, want) {
		t.Fatalf("flatten: got %#v want %#v", flat, want)
	}
	if back := UnflattenMap(flat); !reflect.DeepEqual(back, nested) {
		t.Fatalf("unflatten: got %#v want %#v", back, nested)
	}
}
