package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cvsync/core/loader"
	"cvsync/core/logger"
	"cvsync/core/middleware/auth"
	"cvsync/core/middleware/rayid"
	cvsync "cvsync/feature/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "cvsync/docs/swagger"
)

// @title cvsync API
// @version 1.0
// @description Trigger and inspect syncs between Nautobot and Arista CloudVision.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sync API server",
	Long:  `Starts the HTTP server exposing sync runs, archived reports and object lookup.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.logger.Sync()
		logg := rt.logger
		cfg := rt.cfg

		sinks, archive, release := rt.sinks()
		defer release()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(cvsync.NewFeature(rt.service(sinks), archive))

		// RayID first so every later log line carries it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{
			ApiKey:       cfg.Server.ApiKey,
			SkipPrefixes: []string{"/swagger"},
		}))
		app.Get("/swagger/*", swagger.HandlerDefault)

		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
			errCh <- app.Listen(cfg.Server.Addr())
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logg.Info("Shutting down server...")
		timeout := time.Duration(cfg.Server.ShutdownSeconds) * time.Second
		if timeout <= 0 {
			return app.Shutdown()
		}
		return app.ShutdownWithTimeout(timeout)
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
