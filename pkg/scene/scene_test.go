package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/arbor/pkg/errors"
)

const robot = `
name = "robot"

[[entity]]
name = "body"
markers = ["transform"]

[[entity]]
name = "arm"
parent = "body"
markers = ["transform", "renderable"]

[[entity]]
name = "hand"
parent = "arm"
disabled = ["transform"]

[[op]]
kind = "disable"
entity = "arm"
marker = "transform"

[[op]]
kind = "destroy"
entity = "body"
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(robot))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Name != "robot" {
		t.Errorf("Name = %q, want robot", s.Name)
	}
	if len(s.Entities) != 3 || len(s.Ops) != 2 {
		t.Fatalf("got %d entities, %d ops; want 3, 2", len(s.Entities), len(s.Ops))
	}
	if got := s.Entities[2].Disabled; len(got) != 1 || got[0] != "transform" {
		t.Errorf("hand disabled = %v", got)
	}
	if got := s.Ops[0].String(); got != "disable arm [transform]" {
		t.Errorf("op string = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"bad toml", `name = `, errors.ErrCodeInvalidScene},
		{"unknown key", "name = \"s\"\ncolour = \"red\"", errors.ErrCodeInvalidScene},
		{"missing name", `[[entity]]
name = "a"`, errors.ErrCodeInvalidName},
		{"bad entity name", `name = "s"
[[entity]]
name = "2nd"`, errors.ErrCodeInvalidName},
		{"duplicate entity", `name = "s"
[[entity]]
name = "a"
[[entity]]
name = "a"`, errors.ErrCodeInvalidScene},
		{"unknown parent", `name = "s"
[[entity]]
name = "a"
parent = "ghost"`, errors.ErrCodeUnknownEntity},
		{"unknown marker", `name = "s"
[[entity]]
name = "a"
markers = ["sprite"]`, errors.ErrCodeUnknownMarker},
		{"parent cycle", `name = "s"
[[entity]]
name = "a"
parent = "b"
[[entity]]
name = "b"
parent = "a"`, errors.ErrCodeInvalidScene},
		{"self parent", `name = "s"
[[entity]]
name = "a"
parent = "a"`, errors.ErrCodeInvalidScene},
		{"unknown op", `name = "s"
[[entity]]
name = "a"
[[op]]
kind = "teleport"
entity = "a"`, errors.ErrCodeInvalidOp},
		{"op entity", `name = "s"
[[entity]]
name = "a"
[[op]]
kind = "destroy"
entity = "b"`, errors.ErrCodeUnknownEntity},
		{"op without parent", `name = "s"
[[entity]]
name = "a"
[[op]]
kind = "parent"
entity = "a"`, errors.ErrCodeUnknownEntity},
		{"op without marker", `name = "s"
[[entity]]
name = "a"
[[op]]
kind = "enable"
entity = "a"`, errors.ErrCodeUnknownMarker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "robot.toml")
	if err := os.WriteFile(path, []byte(robot), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Name != "robot" {
		t.Errorf("Name = %q", s.Name)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %v, want %v", errors.GetCode(err), errors.ErrCodeFileNotFound)
	}
}

func TestLoadExampleScenes(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "scenes", "*.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Skip("no example scenes")
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			if _, err := Load(path); err != nil {
				t.Errorf("Load: %v", err)
			}
		})
	}
}
