package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/Rugwed9599/onecard-genai-assistant/common/environment"
	"github.com/Rugwed9599/onecard-genai-assistant/common/version"
	"github.com/Rugwed9599/onecard-genai-assistant/internal/assistant/app"
)

func main() {
	fmt.Printf("OneCard Assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	// Load .env if present; environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	setupLogging()

	config := loadConfig()

	assistant, err := app.New(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize assistant: %v\n", err)
		os.Exit(1)
	}
	defer assistant.Stop()

	if err := assistant.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running assistant: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration from environment variables
func loadConfig() *app.Config {
	return &app.Config{
		HTTPAddr:     environment.StringOr("ASSISTANT_HTTP_ADDR", ":8080"),
		KBPath:       environment.StringOr("ASSISTANT_KB_PATH", ""),
		AuditDBPath:  environment.StringOr("ASSISTANT_AUDIT_DB", ""),
		LatencyUnit:  environment.DurationOr("ASSISTANT_LATENCY_UNIT", 0),
		KafkaBrokers: environment.StringsOr("ASSISTANT_KAFKA_BROKERS", nil),
		KafkaTopic:   environment.StringOr("ASSISTANT_KAFKA_TOPIC", ""),
	}
}

// setupLogging configures the default slog logger from ASSISTANT_LOG_LEVEL.
func setupLogging() {
	level := slog.LevelInfo
	switch environment.StringOr("ASSISTANT_LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
