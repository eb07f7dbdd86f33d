package scene

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/arbor/pkg/errors"
)

// Op kinds.
const (
	OpParent   = "parent"
	OpUnparent = "unparent"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpEnable   = "enable"
	OpDisable  = "disable"
	OpDestroy  = "destroy"
)

// opKinds lists which fields each op kind requires.
var opKinds = map[string]struct{ parent, marker bool }{
	OpParent:   {parent: true},
	OpUnparent: {},
	OpAdd:      {marker: true},
	OpRemove:   {marker: true},
	OpEnable:   {marker: true},
	OpDisable:  {marker: true},
	OpDestroy:  {},
}

// Scene is a declarative hierarchy plus a script of operations.
type Scene struct {
	Name     string   `toml:"name"`
	Entities []Entity `toml:"entity"`
	Ops      []Op     `toml:"op"`
}

// Entity declares one named entity.
type Entity struct {
	Name     string   `toml:"name"`
	Parent   string   `toml:"parent"`
	Markers  []string `toml:"markers"`
	Disabled []string `toml:"disabled"` // markers added in the disabled state
}

// Op is one scripted mutation.
type Op struct {
	Kind   string `toml:"kind"`
	Entity string `toml:"entity"`
	Parent string `toml:"parent"`
	Marker string `toml:"marker"`
}

func (op Op) String() string {
	var b strings.Builder
	b.WriteString(op.Kind)
	b.WriteString(" ")
	b.WriteString(op.Entity)
	if op.Parent != "" {
		b.WriteString(" -> ")
		b.WriteString(op.Parent)
	}
	if op.Marker != "" {
		b.WriteString(" [")
		b.WriteString(op.Marker)
		b.WriteString("]")
	}
	return b.String()
}

// Load reads and validates a scene file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "scene file not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read scene %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates a scene. Unknown keys are rejected.
func Parse(data []byte) (*Scene, error) {
	var s Scene
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "decode scene")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown scene keys: %v", undecoded)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks names, references, markers, and op kinds.
func (s *Scene) Validate() error {
	if err := errors.ValidateName(s.Name); err != nil {
		return err
	}

	declared := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if err := errors.ValidateEntityName(e.Name); err != nil {
			return err
		}
		if declared[e.Name] {
			return errors.New(errors.ErrCodeInvalidScene, "duplicate entity %q", e.Name)
		}
		declared[e.Name] = true
	}

	for _, e := range s.Entities {
		if e.Parent != "" && !declared[e.Parent] {
			return errors.New(errors.ErrCodeUnknownEntity, "entity %q: unknown parent %q", e.Name, e.Parent)
		}
		for _, m := range append(append([]string(nil), e.Markers...), e.Disabled...) {
			if _, err := lookupMarker(m); err != nil {
				return errors.Wrap(errors.ErrCodeUnknownMarker, err, "entity %q", e.Name)
			}
		}
	}

	if err := s.checkCycles(); err != nil {
		return err
	}

	for i, op := range s.Ops {
		if err := validateOp(op, declared); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "op %d (%s)", i+1, op.Kind)
		}
	}
	return nil
}

func validateOp(op Op, declared map[string]bool) error {
	kind, ok := opKinds[op.Kind]
	if !ok {
		return errors.New(errors.ErrCodeInvalidOp, "unknown op kind %q", op.Kind)
	}
	if !declared[op.Entity] {
		return errors.New(errors.ErrCodeUnknownEntity, "unknown entity %q", op.Entity)
	}
	if kind.parent && !declared[op.Parent] {
		return errors.New(errors.ErrCodeUnknownEntity, "unknown parent %q", op.Parent)
	}
	if kind.marker {
		if _, err := lookupMarker(op.Marker); err != nil {
			return err
		}
	}
	return nil
}

// checkCycles rejects declared parent chains that loop back on themselves.
func (s *Scene) checkCycles() error {
	parents := make(map[string]string, len(s.Entities))
	for _, e := range s.Entities {
		parents[e.Name] = e.Parent
	}
	for _, e := range s.Entities {
		seen := map[string]bool{e.Name: true}
		for p := e.Parent; p != ""; p = parents[p] {
			if seen[p] {
				return errors.New(errors.ErrCodeInvalidScene, "entity %q: parent cycle through %q", e.Name, p)
			}
			seen[p] = true
		}
	}
	return nil
}
