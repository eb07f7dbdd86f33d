package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/cache"
	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/render/nodelink"
	"github.com/matzehuels/arbor/pkg/scene"
)

// Output formats supported by the render command.
const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

var renderFormats = []string{formatText, formatDOT, formatSVG}

// renderOpts holds the flags of the render command.
type renderOpts struct {
	tree    string
	format  string
	output  string
	run     bool
	noCache bool
}

// renderCommand creates the render command for drawing one tree of a scene.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{tree: defaultTree, format: formatText}

	cmd := &cobra.Command{
		Use:   "render <scene.toml>",
		Short: "Draw one tree of a scene as text, DOT, or SVG",
		Long: `Render builds a scene, opens the selected tree, and draws it.

Text output is an indented tree with key orders. DOT and SVG output are
Graphviz node-link diagrams; SVG is rendered in-process.`,
		Example: `  arbor render examples/scenes/robot.toml
  arbor render -t renderable -f svg -o robot.svg examples/scenes/robot.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.tree, "tree", "t", opts.tree, "tree to draw: "+strings.Join(scene.TreeNames(), ", "))
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(renderFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&opts.run, "run", false, "apply the scripted operations before drawing")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render SVG without the on-disk cache")
	cmd.ValidArgsFunction = completeScenes
	_ = cmd.RegisterFlagCompletionFunc("tree", completeTrees)
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(renderFormats, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts renderOpts) error {
	if err := errors.ValidateFormat(opts.format, renderFormats...); err != nil {
		return err
	}
	format := strings.ToLower(opts.format)
	trees, err := normalizeTrees([]string{opts.tree})
	if err != nil {
		return err
	}
	tree := trees[0]

	sess, err := c.openSession(ctx, path, tree)
	if err != nil {
		return err
	}
	defer sess.close()

	if opts.run {
		if err := sess.inst.Run(ctx); err != nil {
			return err
		}
	}

	store := newCache(opts.noCache)
	defer store.Close()

	data, err := drawTree(ctx, store, sess, tree, format)
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Debugf("Generated %s: %d bytes", format, len(data))

	out, err := c.openOutput(opts.output)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if opts.output != "" {
		printFile(c.Out, opts.output)
	}
	return nil
}

// drawTree renders the named tree of sess in format. SVG output is cached by
// the hash of its DOT source.
func drawTree(ctx context.Context, store cache.Cache, sess *session, tree, format string) ([]byte, error) {
	opts := sess.options(tree)
	src := sess.trees[tree]

	switch format {
	case formatText:
		return []byte(render.Text(src, opts) + "\n"), nil
	case formatDOT:
		return []byte(nodelink.ToDOT(src, opts)), nil
	case formatSVG:
		return renderSVG(ctx, store, nodelink.ToDOT(src, opts))
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
}

// renderSVG renders dot through Graphviz unless the cache holds the result.
// Cache failures only cost a re-render.
func renderSVG(ctx context.Context, store cache.Cache, dot string) ([]byte, error) {
	logger := loggerFromContext(ctx)
	key := cache.Key(formatSVG, dot)

	if data, hit, err := store.Get(ctx, key); err != nil {
		logger.Debug("cache read failed", "error", err)
	} else if hit {
		logger.Debug("svg cache hit", "key", key)
		return data, nil
	}

	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	if err := store.Set(ctx, key, svg, svgCacheTTL); err != nil {
		logger.Debug("cache write failed", "error", err)
	}
	return svg, nil
}

// nopCloser wraps a writer the command does not own.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the command output for an empty path, otherwise a
// newly created file.
func (c *CLI) openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{c.Out}, nil
	}
	return os.Create(path)
}
