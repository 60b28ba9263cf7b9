package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/septivank/attendance-ingestion-worker/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	workDir, _ := os.Getwd()
	envPaths := envCandidates(workDir)

	envLoaded := false
	for _, envPath := range envPaths {
		// Check if file exists first to avoid unnecessary errors
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err == nil {
				absPath, _ := filepath.Abs(envPath)
				fmt.Printf("Loaded environment from: %s\n", absPath)
				envLoaded = true
				break
			}
		}
	}

	if !envLoaded {
		fmt.Println("No .env file found, using system environment variables (OK for pods/containers)")
	}

	app := fx.New(appOptions())

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create a temporary logger for startup error messages
	tempLogger, _ := newLogger(&config.Config{ServiceName: "attendance-ingestion-worker", LogLevel: "info"})
	tempLogger.Info("starting application...", zap.String("timeout", "30s"))

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	if err := app.Start(startCtx); err != nil {
		// Check if it's a timeout error
		if startCtx.Err() == context.DeadlineExceeded {
			tempLogger.Error("APPLICATION START TIMEOUT: Failed to start within 30 seconds. This usually means a dependency (store, Redis or RabbitMQ) is not accessible. Check the error messages above for specific connection failures.")
		}
		panic(err)
	}

	// Wait for interrupt signal or a shutdown requested by a component
	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	// Stop application gracefully
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		fmt.Println("error stopping app:", err)
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// envCandidates lists where an optional .env file is looked up: the working
// directory, then up to two parents.
func envCandidates(workDir string) []string {
	paths := []string{".env"}
	if workDir == "" {
		return paths
	}
	parentDir := filepath.Dir(workDir)
	return append(paths,
		filepath.Join(parentDir, ".env"),
		filepath.Join(filepath.Dir(parentDir), ".env"),
	)
}

func appOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			config.Load,
			newLogger,
			ProvideRegistry,
			ProvideMetrics,
			ProvideStore,
			ProvideRedis,
			ProvideValidator,
			ProvideVerifier,
			ProvideLocator,
			ProvideRecorder,
			ProvideMQConnection,
			ProvideProcessorService,
		),
		fx.Invoke(startWorker, startHTTPServer),
	)
}
