package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"rocket-admin/internal/admin"
	"rocket-admin/internal/auth"
	"rocket-admin/internal/metadata"
	"rocket-admin/internal/views"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the admin panel HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	log := rt.log
	cfg := rt.cfg

	if err := rt.bootstrap(ctx); err != nil {
		return err
	}

	reg, problems := rt.loadResources(ctx)
	if len(problems) > 0 {
		for _, p := range problems {
			log.Error("resource configuration", "problem", p)
		}
		return metadata.ConfigError("%d resource configuration problem(s); not serving", len(problems))
	}

	renderer, err := views.New(views.DefaultTheme(cfg.Admin.Title), cfg.Admin.NormalizedBasePath())
	if err != nil {
		return err
	}
	manager := auth.NewManager(cfg.Auth)

	app := fiber.New(fiber.Config{
		ErrorHandler:          admin.ErrorHandler(renderer, log),
		DisableStartupMessage: true,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	h := admin.NewHandler(admin.Deps{
		Registry: reg,
		DB:       rt.store,
		Auth:     manager,
		Views:    renderer,
		Logger:   log,
		PerPage:  cfg.Admin.PerPage,
		FlashTTL: cfg.Admin.FlashTTL,
	})
	admin.Mount(app, h, auth.NewHandler(manager, rt.store, renderer, log))

	errCh := make(chan error, 1)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		log.Info("starting server", "addr", addr, "base_path", renderer.URL(), "resources", len(reg.All()))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
