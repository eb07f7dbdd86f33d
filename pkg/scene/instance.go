package scene

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/hierarchy"
	"github.com/matzehuels/arbor/pkg/observability"
)

// Options configures Build.
type Options struct {
	// Logger receives one debug line per applied op. Defaults to log.Default().
	Logger *log.Logger
}

// Instance is a scene built into a world, with its op script pending.
type Instance struct {
	scene    *Scene
	world    *ecs.World
	logger   *log.Logger
	entities map[string]ecs.Entity
	next     int
}

// Build creates the scene's entities in w, links their base parents, and
// adds their markers. Entities carry their scene name as a Label.
func Build(ctx context.Context, w *ecs.World, s *Scene, opts Options) (*Instance, error) {
	if w.Disposed() {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, hierarchy.ErrWorldDisposed, "build scene %q", s.Name)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	start := time.Now()

	inst := &Instance{
		scene:    s,
		world:    w,
		logger:   opts.Logger,
		entities: make(map[string]ecs.Entity, len(s.Entities)),
	}

	for _, decl := range s.Entities {
		e := w.Create()
		ecs.Set(w, e, Label(decl.Name))
		inst.entities[decl.Name] = e
	}

	for _, decl := range s.Entities {
		var parent ecs.Entity
		if decl.Parent != "" {
			parent = inst.entities[decl.Parent]
		}
		if !hierarchy.SetParent(w, inst.entities[decl.Name], parent) {
			return nil, errors.New(errors.ErrCodeInvalidScene, "entity %q: cannot attach to %q", decl.Name, decl.Parent)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, decl := range s.Entities {
		e := inst.entities[decl.Name]
		for _, name := range decl.Markers {
			markers[name].add(w, e)
		}
		for _, name := range decl.Disabled {
			m := markers[name]
			m.add(w, e)
			m.disable(w, e)
		}
	}

	observability.Scene().OnSceneLoaded(ctx, s.Name, len(s.Entities), time.Since(start))
	inst.logger.Debug("scene built", "scene", s.Name, "entities", len(s.Entities), "ops", len(s.Ops))
	return inst, nil
}

// Scene returns the scene the instance was built from.
func (in *Instance) Scene() *Scene { return in.scene }

// World returns the world the scene was built into.
func (in *Instance) World() *ecs.World { return in.world }

// Entity returns the live entity declared under name.
func (in *Instance) Entity(name string) (ecs.Entity, bool) {
	e, ok := in.entities[name]
	if !ok || !in.world.Alive(e) {
		return 0, false
	}
	return e, true
}

// Name returns the scene name of e, or its entity string when it has none.
func Name(w *ecs.World, e ecs.Entity) string {
	if l, ok := ecs.Get[Label](w, e); ok {
		return string(l)
	}
	return e.String()
}

// Name returns the scene name of e.
func (in *Instance) Name(e ecs.Entity) string { return Name(in.world, e) }

// Names returns the names of live entities in declaration order.
func (in *Instance) Names() []string {
	names := make([]string, 0, len(in.entities))
	for _, decl := range in.scene.Entities {
		if _, ok := in.Entity(decl.Name); ok {
			names = append(names, decl.Name)
		}
	}
	return names
}

// Remaining returns the number of ops not yet applied.
func (in *Instance) Remaining() int { return len(in.scene.Ops) - in.next }

// Next returns the op Step would apply.
func (in *Instance) Next() (Op, bool) {
	if in.Remaining() == 0 {
		return Op{}, false
	}
	return in.scene.Ops[in.next], true
}

// Step applies the next op. It reports false once the script is exhausted.
// A failed op is still consumed.
func (in *Instance) Step(ctx context.Context) (Op, bool, error) {
	op, ok := in.Next()
	if !ok {
		return Op{}, false, nil
	}
	in.next++
	return op, true, in.Apply(ctx, op)
}

// Run applies every remaining op, stopping at the first failure or when
// ctx is done.
func (in *Instance) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, ok, err := in.Step(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// Apply performs op against the world.
func (in *Instance) Apply(ctx context.Context, op Op) error {
	err := in.apply(op)
	observability.Scene().OnOpApplied(ctx, in.scene.Name, op.Kind, err)
	if err != nil {
		in.logger.Debug("op failed", "scene", in.scene.Name, "op", op.String(), "error", err)
		return err
	}
	in.logger.Debug("op applied", "scene", in.scene.Name, "op", op.String())
	return nil
}

func (in *Instance) apply(op Op) error {
	if err := validateOp(op, in.declared()); err != nil {
		return err
	}
	e, ok := in.Entity(op.Entity)
	if !ok {
		return errors.New(errors.ErrCodeUnknownEntity, "entity %q was destroyed", op.Entity)
	}

	switch op.Kind {
	case OpParent:
		parent, ok := in.Entity(op.Parent)
		if !ok {
			return errors.New(errors.ErrCodeUnknownEntity, "entity %q was destroyed", op.Parent)
		}
		if !hierarchy.SetParent(in.world, e, parent) {
			return errors.New(errors.ErrCodeInvalidOp, "cannot attach %q to %q", op.Entity, op.Parent)
		}
	case OpUnparent:
		if !hierarchy.SetParent(in.world, e, 0) {
			return errors.New(errors.ErrCodeInvalidOp, "%q is already a root", op.Entity)
		}
	case OpAdd:
		markers[op.Marker].add(in.world, e)
	case OpRemove:
		markers[op.Marker].remove(in.world, e)
	case OpEnable:
		markers[op.Marker].enable(in.world, e)
	case OpDisable:
		markers[op.Marker].disable(in.world, e)
	case OpDestroy:
		in.world.Destroy(e)
	}
	return nil
}

func (in *Instance) declared() map[string]bool {
	declared := make(map[string]bool, len(in.entities))
	for name := range in.entities {
		declared[name] = true
	}
	return declared
}
