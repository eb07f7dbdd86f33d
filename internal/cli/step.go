package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/scene"
)

// stepOpts holds the flags of the step command.
type stepOpts struct {
	trees []string
	plain bool
}

// stepCommand creates the step command for walking through a scene's script.
func (c *CLI) stepCommand() *cobra.Command {
	opts := stepOpts{}

	cmd := &cobra.Command{
		Use:   "step <scene.toml>",
		Short: "Apply a scene's operations one at a time",
		Long: `Step builds a scene and applies its scripted operations one key press at
a time, redrawing the selected trees after each.

With --plain the trees are printed after every operation without an
interactive terminal.`,
		Example: `  arbor step examples/scenes/robot.toml
  arbor step -t transform -t widget --plain examples/scenes/robot.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStep(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.trees, "tree", "t", []string{defaultTree}, "trees to show: "+strings.Join(scene.TreeNames(), ", "))
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print every step instead of running the interactive view")
	cmd.ValidArgsFunction = completeScenes
	_ = cmd.RegisterFlagCompletionFunc("tree", completeTrees)
	return cmd
}

func (c *CLI) runStep(ctx context.Context, path string, opts stepOpts) error {
	trees, err := normalizeTrees(opts.trees)
	if err != nil {
		return err
	}
	sess, err := c.openSession(ctx, path, trees...)
	if err != nil {
		return err
	}
	defer sess.close()

	if opts.plain {
		return c.stepPlain(ctx, sess, trees)
	}

	p := tea.NewProgram(newStepModel(ctx, sess, trees), tea.WithContext(ctx), tea.WithOutput(c.Out))
	_, err = p.Run()
	return err
}

// stepPlain prints the trees before the script and after every op. Failed
// ops are reported and the script continues.
func (c *CLI) stepPlain(ctx context.Context, sess *session, trees []string) error {
	show := func() {
		for _, name := range trees {
			fmt.Fprintln(c.Out, render.Text(sess.trees[name], sess.options(name)))
		}
		fmt.Fprintln(c.Out)
	}

	printInfo(c.Out, "initial")
	show()

	var failed int
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		op, ok, err := sess.inst.Step(ctx)
		if !ok {
			break
		}
		if err != nil {
			failed++
			printError(c.Out, "%s: %s", op, errors.UserMessage(err))
			continue
		}
		printSuccess(c.Out, "%s", op)
		show()
	}

	if failed > 0 {
		return errors.New(errors.ErrCodeInvalidOp, "%d ops failed", failed)
	}
	return nil
}
