// Package server serves the activity board page and proxies the activities API.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Its-donkey/signup-board/internal/ui/roster"
	"github.com/Its-donkey/signup-board/logging"
)

const (
	defaultSchoolName = "Mergington High School"
	shutdownTimeout   = 5 * time.Second
	// unavailableDetail is the error detail returned when the API cannot be reached.
	unavailableDetail = "Activities service unavailable"
)

// Options configures the UI HTTP server.
type Options struct {
	Listen     string
	APIBase    string
	AssetsDir  string
	SchoolName string
	Logger     *logging.Logger
	// Templates overrides the embedded templates; tests pass an fstest.MapFS.
	Templates fs.FS
}

type server struct {
	apiURL      *url.URL
	assetsDir   string
	stylesPath  string
	schoolName  string
	templates   map[string]*template.Template
	currentYear int
	logger      *logging.Logger
}

type indexPageData struct {
	PageTitle      string
	StylesheetPath string
	SchoolName     string
	LoadingMessage string
	CurrentYear    int
}

// NewHandler builds the UI handler wrapped in request logging.
func NewHandler(opts Options) (http.Handler, error) {
	srv, err := newServer(opts)
	if err != nil {
		return nil, err
	}
	return logging.NewHTTPLogger(srv.logger).Middleware(srv.routes()), nil
}

// Run serves the UI until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	handler, err := NewHandler(opts)
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newServer(opts Options) (*server, error) {
	apiURL, err := url.Parse(strings.TrimSpace(opts.APIBase))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", opts.APIBase, err)
	}
	if apiURL.Scheme == "" || apiURL.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: must be absolute", opts.APIBase)
	}
	apiURL.Path = strings.TrimSuffix(apiURL.Path, "/")

	tmpl, err := loadTemplates(opts.Templates)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	assetsPath, err := filepath.Abs(opts.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve assets dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.New("board-server", logging.INFO)
	}
	schoolName := strings.TrimSpace(opts.SchoolName)
	if schoolName == "" {
		schoolName = defaultSchoolName
	}

	return &server{
		apiURL:      apiURL,
		assetsDir:   assetsPath,
		stylesPath:  "/styles.css",
		schoolName:  schoolName,
		templates:   tmpl,
		currentYear: time.Now().Year(),
		logger:      logger,
	}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/static/index.html", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("/styles.css", s.handleStyles)
	mux.Handle("/wasm_exec.js", s.assetHandler("wasm_exec.js", "application/javascript"))
	mux.Handle("/main.wasm", s.assetHandler("main.wasm", "application/wasm"))
	proxy := apiProxyHandler(s.apiURL, s.logger)
	mux.Handle("/activities", proxy)
	mux.Handle("/activities/", proxy)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := indexPageData{
		PageTitle:      s.schoolName + " Activities",
		StylesheetPath: s.stylesPath,
		SchoolName:     s.schoolName,
		LoadingMessage: roster.LoadingMessage,
		CurrentYear:    s.currentYear,
	}
	var buf bytes.Buffer
	if err := s.templates["index"].ExecuteTemplate(&buf, "index", data); err != nil {
		s.logger.Error("render", "render index", err, nil)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *server) handleStyles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(stylesheet)
}

func (s *server) assetHandler(name, contentType string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(s.assetsDir, name)
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		http.ServeFile(w, r, path)
	})
}

func apiProxyHandler(target *url.URL, logger *logging.Logger) http.Handler {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.WithRequestID(w.Header().Get(logging.RequestIDHeader)).
			WithCategory("proxy").
			WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Error("activities api unreachable", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"detail":"` + unavailableDetail + `"}`))
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Host = target.Host
		proxy.ServeHTTP(w, r)
	})
}
