// Command signup-board builds the browser bundle and runs the board UI server
// for local development.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Its-donkey/signup-board/logging"
)

type procConfig struct {
	Name string
	Args []string
	Env  []string
}

func main() {
	assets := flag.String("assets", "ui", "directory to write main.wasm and wasm_exec.js into")
	listen := flag.String("listen", "127.0.0.1:4173", "address for the board UI server")
	apiBase := flag.String("api", "http://127.0.0.1:8000", "base URL for the activities API")
	flag.Parse()

	logger := logging.New("board-dev", logging.INFO, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := prepareAssets(ctx, *assets); err != nil {
		logger.Error("dev", "prepare browser assets", err, nil)
		os.Exit(1)
	}
	logger.Info("dev", "browser assets ready", map[string]any{"dir": *assets})

	procs := []procConfig{
		{
			Name: "ui-server",
			Args: []string{
				"go", "run", "./cmd/ui-server",
				"-listen", *listen,
				"-api", *apiBase,
				"-assets", *assets,
			},
		},
	}
	if err := runAll(ctx, procs); err != nil {
		logger.Error("dev", "process exited", err, nil)
		os.Exit(1)
	}
}

// prepareAssets compiles the wasm front-end and copies the Go runtime shim
// next to it. It runs before the server starts so the first page load works.
func prepareAssets(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create assets dir: %w", err)
	}
	build := procConfig{
		Name: "build-ui-wasm",
		Args: []string{"go", "build", "-o", filepath.Join(dir, "main.wasm"), "./cmd/ui-wasm"},
		Env:  []string{"GOOS=js", "GOARCH=wasm"},
	}
	if err := command(ctx, build).Run(); err != nil {
		return fmt.Errorf("%s: %w", build.Name, err)
	}
	return copyWasmExec(filepath.Join(dir, "wasm_exec.js"))
}

func copyWasmExec(dst string) error {
	root := runtime.GOROOT()
	if out, err := exec.Command("go", "env", "GOROOT").Output(); err == nil {
		root = strings.TrimSpace(string(out))
	}
	var src *os.File
	var err error
	// The shim moved from misc/wasm to lib/wasm in Go 1.24.
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		src, err = os.Open(filepath.Join(root, rel))
		if err == nil {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("locate wasm_exec.js: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("copy wasm_exec.js: %w", err)
	}
	return out.Close()
}

func command(ctx context.Context, cfg procConfig) *exec.Cmd {
	cmd := exec.CommandContext(ctx, cfg.Args[0], cfg.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(cfg.Env) > 0 {
		cmd.Env = append(append([]string{}, os.Environ()...), cfg.Env...)
	}
	return cmd
}

func runAll(ctx context.Context, procs []procConfig) error {
	if len(procs) == 0 {
		return fmt.Errorf("no processes configured")
	}
	var wg sync.WaitGroup
	errCh := make(chan error, len(procs))

	for _, cfg := range procs {
		wg.Add(1)
		go func(cfg procConfig) {
			defer wg.Done()
			if err := command(ctx, cfg).Run(); err != nil {
				// Cancellation kills the child; that exit is expected.
				if ctx.Err() != nil {
					return
				}
				errCh <- fmt.Errorf("%s exited: %w", cfg.Name, err)
			}
		}(cfg)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	case err := <-errCh:
		return err
	case <-done:
	}
	return nil
}
