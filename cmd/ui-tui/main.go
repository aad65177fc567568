package main

import (
	"flag"
	"io"
	"log"

	"github.com/Its-donkey/signup-board/internal/config"
	"github.com/Its-donkey/signup-board/internal/ui/activities"
	"github.com/Its-donkey/signup-board/internal/ui/tui"
	"github.com/Its-donkey/signup-board/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	apiBase := flag.String("api", "", "base URL for the activities API")
	logFileName := flag.String("log-file", "", "log file name inside the configured log dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Apply(config.Overrides{APIBase: *apiBase, LogFile: *logFileName})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// The alternate screen owns stdout, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	logFile, err := cfg.OpenLogFile()
	if err != nil {
		log.Fatalf("open log file: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
		logOut = logFile
	}
	logger := logging.New("board-tui", cfg.LogLevel(), logOut)

	if err := tui.Run(tui.Options{
		API:    activities.NewClient(cfg.API.BaseURL, nil),
		Logger: logger,
	}); err != nil {
		logger.Error("tui", "terminal board exited", err, nil)
		log.Fatalf("tui: %v", err)
	}
}
