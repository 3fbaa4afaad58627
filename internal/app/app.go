package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"nabii/internal/config"
	"nabii/internal/infrastructure"
	customMiddleware "nabii/internal/middleware"
	"nabii/internal/services"
	handlers "nabii/internal/transport/http"
	"nabii/internal/validation"
	"nabii/pkg/contracts/domain"
)

// Application is the dashboard server: the output directory as static
// files, the document API and the metrics endpoint
type Application struct {
	Config          *config.Config
	Router          *chi.Mux
	Server          *http.Server
	Logger          *slog.Logger
	DocumentService *services.DocumentService
	HealthService   *services.HealthService
	OTelProviders   *infrastructure.OTelProviders

	listener net.Listener
}

// NewApplication wires the dashboard server from cfg
func NewApplication(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	documents := services.NewDocumentService(cfg.Output.Dir, logger)
	a := &Application{
		Config:          cfg,
		Logger:          logger,
		DocumentService: documents,
		HealthService:   services.NewHealthService(config.AppVersion, documents, logger),
		OTelProviders:   otelProviders,
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → RateLimit
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
	} else {
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.RateLimit.RPS,
			a.Config.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", handlers.NewHealthHandler(a.HealthService).HealthCheck)
		r.Mount("/documents", handlers.NewDocumentHandler(a.DocumentService, a.Logger).Routes())
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	// The generated documents, also reachable next to the pages that load them
	r.Handle("/data/*", http.StripPrefix("/data/", http.FileServer(http.Dir(a.Config.Output.Dir))))
	for _, doc := range documentFiles() {
		r.Get("/"+doc, a.serveDocumentFile(doc))
	}

	if dir := a.Config.Server.StaticDir; dir != "" {
		validator := validation.NewFileValidator(a.Logger)
		if err := validator.ValidateDirectory(dir); err != nil {
			a.Logger.Warn("Dashboard pages are not served", slog.String("error", err.Error()))
		} else {
			if err := validator.ValidateFile(filepath.Join(dir, "index.html")); err != nil {
				a.Logger.Warn("Static directory has no index page", slog.String("static_dir", dir))
			}
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		}
	}

	a.Router = r
}

// serveDocumentFile serves one output file at the site root, where the
// dashboard pages fetch it by bare name
func (a *Application) serveDocumentFile(name string) http.HandlerFunc {
	dir := http.Dir(a.Config.Output.Dir)
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := dir.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer f.Close()

		fi, err := f.Stat()
		if err != nil || fi.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, name, fi.ModTime(), f)
	}
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started
func (a *Application) Addr() string {
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return a.Server.Addr
}

// URL returns the dashboard URL for a browser
func (a *Application) URL() string {
	_, port, err := net.SplitHostPort(a.Addr())
	if err != nil {
		port = fmt.Sprint(a.Config.Server.Port)
	}
	return "http://localhost:" + port
}

// Start starts serving in the background. A server failure calls cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	listener, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = listener

	a.Logger.InfoContext(ctx, "Starting dashboard server",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", a.URL()),
		slog.String("output_dir", a.Config.Output.Dir),
		slog.String("static_dir", a.Config.Server.StaticDir))

	go func() {
		if err := a.Server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	if n, err := a.DocumentService.Available(ctx); err == nil && n == 0 {
		a.Logger.WarnContext(ctx, "No dashboard documents found, run the processor first",
			slog.String("output_dir", a.Config.Output.Dir))
	}

	if a.Config.Server.OpenBrowser {
		go a.openWhenReady(ctx)
	}
	return nil
}

// openWhenReady waits for the health endpoint before opening the browser
func (a *Application) openWhenReady(ctx context.Context) {
	url := a.URL()
	healthURL := url + config.HealthEndpoint
	client := &http.Client{Timeout: time.Second}

	const maxRetries = 10
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		resp, err := client.Get(healthURL)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				if err := openBrowser(ctx, url); err != nil {
					a.Logger.WarnContext(ctx, "Failed to open browser",
						slog.String("url", url),
						slog.String("error", err.Error()))
					fmt.Fprintf(os.Stderr, "\nDashboard is running at %s\n\n", url)
				}
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}

	a.Logger.ErrorContext(ctx, "Server did not become ready for browser opening",
		slog.String("url", url),
		slog.Int("max_retries", maxRetries))
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down dashboard server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Dashboard server stopped")
	return errors.Join(errs...)
}

// Run serves until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

func documentFiles() []string {
	files := []string{config.EnrichedCSVFile, config.EnrichedParquetFile}
	for _, doc := range domain.Documents() {
		files = append(files, doc.FileName())
	}
	return files
}

// openBrowser opens the default browser on url
func openBrowser(ctx context.Context, url string) error {
	var lastErr error
	for _, method := range browserOpenMethods(url) {
		cmd := exec.CommandContext(ctx, method.cmd, method.args...)
		if err := cmd.Start(); err != nil {
			lastErr = err
			continue
		}
		go func() { _ = cmd.Wait() }()
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

// browserMethod represents a method to open the browser
type browserMethod struct {
	cmd  string
	args []string
}

// browserOpenMethods returns platform-specific browser opening methods
func browserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
			{cmd: "cmd", args: []string{"/c", "start", "", url}},
		}
	case "darwin":
		return []browserMethod{
			{cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{cmd: "xdg-open", args: []string{url}},
			{cmd: "sensible-browser", args: []string{url}},
		}
	}
}
