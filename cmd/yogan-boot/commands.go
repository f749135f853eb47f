package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/KOMKZ/go-yogan-boot/application"
	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/config"
	"github.com/KOMKZ/go-yogan-boot/flagx"
	"github.com/KOMKZ/go-yogan-boot/registry"
	"github.com/KOMKZ/go-yogan-boot/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// rootFlags shared by every subcommand
type rootFlags struct {
	ConfigDir string   `flag:"config,c" usage:"directory holding config.yaml and <env>.yaml" default:"configs"`
	EnvPrefix string   `flag:"env-prefix" usage:"environment variable prefix" default:"APP"`
	Set       []string `flag:"set" usage:"override a config key, e.g. --set server.port=9090 (repeatable)"`
}

func newRootCmd() *cobra.Command {
	var opts rootFlags
	root := &cobra.Command{
		Use:           "yogan-boot",
		Short:         "Dependency-ordered component bootstrap",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if _, err := flagx.BindFlags(root.PersistentFlags(), &opts); err != nil {
		panic(err)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Initialize every configured module and serve until interrupted",
			RunE: func(cmd *cobra.Command, _ []string) error {
				app, err := newApp(cmd, &opts)
				if err != nil {
					return err
				}
				return run(cmd.Context(), app)
			},
		},
		&cobra.Command{
			Use:   "plan",
			Short: "Print the initialization order grouped by priority tier without building anything",
			RunE: func(cmd *cobra.Command, _ []string) error {
				app, err := newApp(cmd, &opts)
				if err != nil {
					return err
				}
				plan, err := app.Plan(cmd.Context())
				if err != nil {
					return err
				}
				return printPlan(cmd.OutOrStdout(), plan)
			},
		},
	)
	return root
}

func newApp(cmd *cobra.Command, opts *rootFlags) (*application.App, error) {
	if err := flagx.ParseFlags(cmd.Flags(), opts); err != nil {
		return nil, err
	}
	overrides, err := flagx.ParseOverrides(opts.Set)
	if err != nil {
		return nil, err
	}

	loader, err := config.NewLoaderBuilder().
		WithConfigPath(opts.ConfigDir).
		WithEnvPrefix(opts.EnvPrefix).
		WithDefaults(map[string]any{"app.version": version}).
		WithOverrides(overrides).
		Build()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return application.New(loader)
}

// run serves until a signal arrives or the http server stops on its own
func run(ctx context.Context, app *application.App) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.Run(ctx)
	})

	g.Go(func() error {
		select {
		case <-app.Ready():
		case <-ctx.Done():
			return nil
		}
		srv, err := component.Lookup[*server.Server](app.Initializer(), component.NameServer)
		if err != nil {
			return nil
		}
		select {
		case err := <-srv.Errors():
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
			return nil
		case <-app.Done():
			return nil
		}
	})

	return g.Wait()
}

// printPlan lists the order grouped by tier; positions refer to the global order
func printPlan(w io.Writer, plan []registry.PlanEntry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, tier := range component.Priorities() {
		printTier(tw, tier.String(), plan, func(e registry.PlanEntry) bool {
			return e.Registered && e.Priority == tier
		})
	}
	printTier(tw, "UNREGISTERED", plan, func(e registry.PlanEntry) bool {
		return !e.Registered
	})
	return tw.Flush()
}

func printTier(w io.Writer, title string, plan []registry.PlanEntry, match func(registry.PlanEntry) bool) {
	printed := false
	for i, entry := range plan {
		if !match(entry) {
			continue
		}
		if !printed {
			fmt.Fprintf(w, "[%s]\n", title)
			printed = true
		}
		deps := "-"
		if len(entry.Dependencies) > 0 {
			deps = strings.Join(entry.Dependencies, ", ")
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\n", i+1, entry.Name, deps)
	}
}
