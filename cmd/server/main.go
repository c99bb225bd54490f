// Package main is the entry point for the memeforge server.
//
// main stays minimal: read configuration from the environment, build the
// logger, hand everything to internal/server. All actual logic lives in
// the imported packages.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sakif/memeforge/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// All persistent state lives under DATA_DIR: the two meme databases,
	// the blob directory, and the app state file.
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logger.Error("failed to create data directory",
			slog.String("dir", dataDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "memeforge.db")
	}

	// Sessions need a signing secret even when Google OAuth is off — demo
	// mode uses the same cookie. Without JWT_SECRET we generate an
	// ephemeral one; sessions then die with the process.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Error("failed to generate session secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
		jwtSecret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set — using an ephemeral secret, sessions will not survive restarts")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		logger.Warn("GEMINI_API_KEY not set — captions will use the rule-based fallback")
	}

	googleCallbackURL := os.Getenv("GOOGLE_CALLBACK_URL")
	if googleCallbackURL == "" {
		googleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", port)
	}

	allowedOrigins := []string{fmt.Sprintf("http://localhost:%d", port)}
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		allowedOrigins = strings.Split(origins, ",")
	}

	cfg := server.Config{
		Port:         port,
		DBPath:       dbPath,
		DemoDBPath:   filepath.Join(dataDir, "memeforge-demo.db"),
		BlobDir:      filepath.Join(dataDir, "images"),
		AppStatePath: filepath.Join(dataDir, "appstate.json"),

		JWTSecret: jwtSecret,

		GeminiAPIKey: geminiKey,
		GeminiModel:  os.Getenv("GEMINI_MODEL"),

		TemplateAPIURL: os.Getenv("TEMPLATE_API_URL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  googleCallbackURL,

		AllowedOrigins: allowedOrigins,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
