package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/buildinfo"
	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/ecs"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/hierarchy"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "arbor"

	// defaultTree is the tree shown when --tree is not given.
	defaultTree = "transform"

	// svgCacheTTL bounds how long rendered SVGs are kept.
	svgCacheTTL = 7 * 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer
}

// New creates a new CLI instance. Logs go to logw at level; command output
// goes to out.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		Out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Arbor plays hierarchy scenes against reactive tree indexes",
		Long:         `Arbor loads TOML scenes of entities and marker components, builds the base, keyed, and scoped trees over them, and shows how the trees react as scripted operations run.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.stepCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Cache
// =============================================================================

// newCache opens the on-disk render cache, falling back to no caching when
// it is disabled or the directory is unavailable.
func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return c
}

// cacheDir returns the cache directory using XDG standard (~/.cache/arbor/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Scene Sessions
// =============================================================================

// session is a scene built into a fresh world with a set of open trees.
type session struct {
	inst  *scene.Instance
	world *ecs.World
	trees map[string]*hierarchy.Handle
}

// openSession loads path, builds it into a new world, and opens the named
// trees. Trees are opened after the build and before any op runs, so
// destruction cascades apply to the script.
func (c *CLI) openSession(ctx context.Context, path string, trees ...string) (*session, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	s, err := scene.Load(path)
	if err != nil {
		return nil, err
	}

	w := ecs.NewWorld()
	if err := hierarchy.Use(w, hierarchy.Options{Logger: logger}); err != nil {
		w.Dispose()
		return nil, err
	}
	inst, err := scene.Build(ctx, w, s, scene.Options{Logger: logger})
	if err != nil {
		w.Dispose()
		return nil, err
	}

	sess := &session{inst: inst, world: w, trees: make(map[string]*hierarchy.Handle, len(trees))}
	for _, name := range trees {
		if _, ok := sess.trees[name]; ok {
			continue
		}
		h, err := scene.OpenTree(w, name)
		if err != nil {
			sess.close()
			return nil, err
		}
		sess.trees[name] = h
	}

	prog.done("Loaded scene", "scene", s.Name, "entities", w.Len(), "trees", len(sess.trees))
	logger.Debug("session open", "world", w.ID())
	return sess, nil
}

// close releases the trees and disposes the world.
func (s *session) close() {
	for _, h := range s.trees {
		h.Close()
	}
	s.world.Dispose()
}

// options returns the render options for the named tree.
func (s *session) options(tree string) render.Options {
	return render.Options{
		Title: s.trees[tree].Name(),
		Label: s.inst.Name,
		Order: func(e ecs.Entity) (int, bool) { return scene.Order(s.world, tree, e) },
	}
}

// normalizeTrees checks tree names against scene.TreeNames and lowercases
// them. An empty list selects every tree.
func normalizeTrees(names []string) ([]string, error) {
	if len(names) == 0 {
		return scene.TreeNames(), nil
	}
	out := make([]string, len(names))
	for i, name := range names {
		if err := errors.ValidateFormat(name, scene.TreeNames()...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "tree %q", name)
		}
		out[i] = strings.ToLower(name)
	}
	return out, nil
}
