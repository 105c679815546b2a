package propagate

import (
	"context"
	"fmt"

	"github.com/randalmurphal/appforge/git"
)

// Renderer generates an application's scaffolding inside a working tree.
type Renderer interface {
	Render(ctx context.Context, dir, app string, envs []string) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, dir, app string, envs []string) error

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, dir, app string, envs []string) error {
	return f(ctx, dir, app, envs)
}

// CommandRenderer runs an external render command in the working tree as
// `command... -a APP [-e ENV ENV...]`. Arguments are passed as a list,
// never through a shell.
type CommandRenderer struct {
	Runner  git.CommandRunner
	Command []string
}

// NewCommandRenderer creates a CommandRenderer.
func NewCommandRenderer(runner git.CommandRunner, command ...string) *CommandRenderer {
	if runner == nil {
		runner = git.NewExecRunner()
	}
	return &CommandRenderer{Runner: runner, Command: command}
}

// Args returns the argument list passed to the command for app.
func (r *CommandRenderer) Args(app string, envs []string) []string {
	args := append([]string{}, r.Command[1:]...)
	args = append(args, "-a", app)
	if len(envs) > 0 {
		args = append(args, "-e")
		args = append(args, envs...)
	}
	return args
}

// Render implements Renderer.
func (r *CommandRenderer) Render(_ context.Context, dir, app string, envs []string) error {
	if len(r.Command) == 0 {
		return fmt.Errorf("render command not configured")
	}
	if _, err := r.Runner.Run(dir, r.Command[0], r.Args(app, envs)...); err != nil {
		return fmt.Errorf("render %s in %s: %w", app, dir, err)
	}
	return nil
}
