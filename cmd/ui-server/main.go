package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Its-donkey/signup-board/internal/config"
	"github.com/Its-donkey/signup-board/internal/ui/server"
	"github.com/Its-donkey/signup-board/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	listen := flag.String("listen", "", "address to serve the activity board UI")
	apiBase := flag.String("api", "", "base URL for the activities API")
	assetsDir := flag.String("assets", "", "directory holding wasm_exec.js and main.wasm")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	// Flags win over the file and the environment.
	cfg.Apply(config.Overrides{Listen: *listen, APIBase: *apiBase, AssetsDir: *assetsDir})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	writers := []io.Writer{os.Stdout}
	logFile, err := cfg.OpenLogFile()
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
		writers = append(writers, logFile)
	}
	logger := logging.New("board-server", cfg.LogLevel(), writers...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("Serving activity board on http://%s (API: %s)", cfg.Server.Listen, cfg.API.BaseURL)
	if err := server.Run(ctx, server.Options{
		Listen:    cfg.Server.Listen,
		APIBase:   cfg.API.BaseURL,
		AssetsDir: cfg.Server.AssetsDir,
		Logger:    logger,
	}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
