package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"record-sync/core/config"
	"record-sync/core/database"
	"record-sync/core/journal"
	"record-sync/core/loader"
	"record-sync/core/logger"
	"record-sync/core/middleware/auth"
	"record-sync/core/middleware/rayid"
	"record-sync/core/storage"
	"record-sync/feature/records"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the record-sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Open the run journal (Optional)
		j := openJournal(cmd.Context(), cfg, logg)

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		if err := storage.EnsureBucket(context.Background(), store, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			logg.Fatal("Failed to prepare bucket", zap.Error(err), zap.String("bucket", cfg.Storage.Bucket))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// RayID first so every log line below carries it
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
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		timeout := time.Duration(cfg.Server.TimeoutSeconds) * time.Second
		mgr := loader.NewManager()
		mgr.Register(records.NewFeature(store, cfg.Storage.Bucket, cfg.Sync, j, logg, timeout))

		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if timeout > 0 {
			_ = app.ShutdownWithTimeout(timeout)
		} else {
			_ = app.Shutdown()
		}
	},
}

// openJournal connects the journal database. It returns nil when journaling is disabled
// or the database is unreachable; runs still work without it.
func openJournal(ctx context.Context, cfg *config.Config, logg *zap.Logger) *journal.Journal {
	if !cfg.Sync.Journal {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Optional database connection failed, journal disabled", zap.Error(err))
		return nil
	}

	j := journal.New(db)
	if err := j.Migrate(ctx); err != nil {
		logg.Warn("Journal migration failed, journal disabled", zap.Error(err))
		return nil
	}
	logg.Info("Connected to journal database", zap.String("driver", cfg.Database.Driver))
	return j
}

func init() {
	RootCmd.AddCommand(startCmd)
}
