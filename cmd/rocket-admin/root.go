package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"rocket-admin/internal/admin"
	"rocket-admin/internal/config"
	"rocket-admin/internal/logger"
	"rocket-admin/internal/metadata"
	"rocket-admin/internal/store"
)

var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "rocket-admin",
		Short:         "Generated admin panel for an existing database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./admin.yaml)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newCheckCommand())
	root.AddCommand(newCreateUserCommand())
	root.AddCommand(newHashPasswordCommand())
	return root
}

// env holds what every database-backed command needs.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store *store.Store
}

func openRuntime(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, &metadata.Error{Kind: metadata.KindConfig, Message: err.Error(), Err: err}
	}
	log := logger.Init(cfg.Logger)

	s, err := store.New(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, store: s}, nil
}

func (rt *env) Close() { rt.store.Close() }

func (rt *env) bootstrap(ctx context.Context) error {
	return rt.store.Bootstrap(ctx, store.Seed{
		Email:    rt.cfg.Auth.SeedEmail,
		Password: rt.cfg.Auth.SeedPassword,
	}, rt.log)
}

func (rt *env) loadResources(ctx context.Context) (*metadata.Registry, []string) {
	actions := metadata.NewActionRegistry()
	admin.RegisterBuiltinActions(actions)
	return admin.LoadResources(ctx, rt.cfg.Admin.ResourcesDir, rt.store.Dialect.Name(), rt.store, actions, rt.log)
}
