package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/hierarchy"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
)

// validateCommand creates the validate command for checking scene files.
func (c *CLI) validateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene.toml>...",
		Short: "Check scene files for errors",
		Long:  `Validate decodes each scene file and checks entity names, parent references, markers, and scripted operations without running anything.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				s, err := scene.Load(path)
				if err != nil {
					failed++
					printError(c.Out, "%s: %s", path, errors.UserMessage(err))
					loggerFromContext(cmd.Context()).Debug("validate failed", "path", path, "code", errors.GetCode(err), "error", err)
					continue
				}
				printSuccess(c.Out, "%s: scene %q, %d entities, %d ops", path, s.Name, len(s.Entities), len(s.Ops))
			}
			if failed > 0 {
				return errors.New(errors.ErrCodeInvalidScene, "%d of %d scenes invalid", failed, len(args))
			}
			return nil
		},
	}
	cmd.ValidArgsFunction = completeScenes
	return cmd
}

// inspectOpts holds the flags of the inspect command.
type inspectOpts struct {
	trees []string
	run   bool
}

// inspectCommand creates the inspect command for printing scene trees.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{}

	cmd := &cobra.Command{
		Use:   "inspect <scene.toml>",
		Short: "Print the trees and marker states of a scene",
		Long: `Inspect builds a scene, opens the selected trees, and prints each tree
followed by the live shared trees and the marker state of every entity.

With --run the scripted operations are applied first.`,
		Example: `  arbor inspect examples/scenes/robot.toml
  arbor inspect --tree transform --tree renderable --run examples/scenes/robot.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.trees, "tree", "t", nil, "trees to print: "+strings.Join(scene.TreeNames(), ", ")+" (default all)")
	cmd.Flags().BoolVar(&opts.run, "run", false, "apply the scripted operations before printing")
	cmd.ValidArgsFunction = completeScenes
	_ = cmd.RegisterFlagCompletionFunc("tree", completeTrees)
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, path string, opts inspectOpts) error {
	trees, err := normalizeTrees(opts.trees)
	if err != nil {
		return err
	}
	sess, err := c.openSession(ctx, path, trees...)
	if err != nil {
		return err
	}
	defer sess.close()

	if opts.run {
		if err := sess.inst.Run(ctx); err != nil {
			return err
		}
	}

	s := sess.inst.Scene()
	fmt.Fprintln(c.Out, StyleTitle.Render(s.Name))
	printKeyValue(c.Out, "Entities", strconv.Itoa(len(sess.inst.Names())))
	printKeyValue(c.Out, "Ops left", strconv.Itoa(sess.inst.Remaining()))
	fmt.Fprintln(c.Out)

	for _, name := range trees {
		fmt.Fprintln(c.Out, render.Text(sess.trees[name], sess.options(name)))
		fmt.Fprintln(c.Out)
	}

	writeSharedTrees(c.Out, sess)
	writeMarkers(c.Out, sess)
	return nil
}

// writeSharedTrees prints the registry entries of the session's world.
func writeSharedTrees(w io.Writer, sess *session) {
	var rows [][]string
	for _, info := range hierarchy.Trees() {
		if info.World != sess.world.ID() {
			continue
		}
		rows = append(rows, []string{info.Name, strconv.Itoa(info.Refs)})
	}
	fmt.Fprintln(w, renderTable([]string{"Shared tree", "Refs"}, rows))
}

// writeMarkers prints the marker state of every live entity.
func writeMarkers(w io.Writer, sess *session) {
	markers := scene.Markers()
	headers := append([]string{"Entity", "Parent"}, markers...)

	var rows [][]string
	for _, name := range sess.inst.Names() {
		e, _ := sess.inst.Entity(name)
		parent := "-"
		if p, ok := hierarchy.ParentOf(sess.world, e); ok {
			parent = sess.inst.Name(p)
		}
		row := []string{name, parent}
		for _, m := range markers {
			row = append(row, markerCell(scene.MarkerState(sess.world, e, m)))
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(w, renderTable(headers, rows))
}

func markerCell(has, enabled bool) string {
	switch {
	case !has:
		return "-"
	case enabled:
		return "on"
	default:
		return "off"
	}
}
