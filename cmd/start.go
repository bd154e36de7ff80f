package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"site-janitor/core/loader"
	"site-janitor/core/logger"
	"site-janitor/core/metrics"
	"site-janitor/core/middleware/auth"
	"site-janitor/core/middleware/rayid"
	"site-janitor/feature/maintenance"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the admin HTTP server",
	Long:  `Starts the HTTP server exposing scans, deletions and backups to administrators.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		logg := env.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if err := env.cfg.Server.Validate(); err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.Init(registry)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             env.cfg.Server.BodyLimit(),
			JSONEncoder:           json.Marshal,
			JSONDecoder:           json.Unmarshal,
		})

		mgr := loader.NewManager()
		mgr.Register(maintenance.NewFeature(env.store, env.catalog, env.cfg.Storage, env.cfg.Scan, logg, m))

		// RayID must run first so every later log line carries it.
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

		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

		admin := app.Group("/admin", auth.New(auth.Config{
			Secret:    env.cfg.Server.JWTSecret,
			AdminRole: env.cfg.Server.AdminRole,
			Roles:     env.catalog,
			Logger:    logg,
		}))

		if err := mgr.LoadAll(admin); err != nil {
			return err
		}

		go func() {
			logg.Info("Starting server", zap.String("port", env.cfg.Server.Port))
			if err := app.Listen(":" + env.cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
