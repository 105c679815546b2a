package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/randalmurphal/appforge/errors"
	"github.com/randalmurphal/appforge/render"
)

func (c *cli) renderCmd() *cobra.Command {
	var (
		app  string
		envs []string
	)

	cmd := &cobra.Command{
		Use:   "render -a NAME [-e ENV...]",
		Short: "Generate an application directory from the template application",
		Long: `Copies the template application's entry file, base values file and one
values overlay per requested environment into applications/NAME, rewriting
every variant of the template name to NAME. Environments without an overlay
in the template are skipped with a warning.

Arguments after the flags are treated as additional environments, so
"-e dev staging" and "-e dev -e staging" are equivalent.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app == "" {
				return fmt.Errorf("%w: --app is required", apperrors.ErrUsage)
			}
			envs = append(envs, args...)

			r := render.New(c.cfg.ApplicationsDir,
				render.WithTemplate(c.cfg.TemplateApp),
				render.WithLogger(c.logger),
			)
			result, err := r.Render(app, envs)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.stdout, result.Dir)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&app, "app", "a", "", "application name")
	flags.StringSliceVarP(&envs, "envs", "e", nil, "environments to generate overlays for")
	flags.String("applications-dir", "", "directory holding the template and generated applications")
	flags.String("template", "", "template application name")
	c.bind(flags, map[string]string{
		"applications-dir": "applications_dir",
		"template":         "template_app",
	})
	return cmd
}
