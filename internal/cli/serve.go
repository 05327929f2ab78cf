package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/graphson"
)

// serveCommand creates the serve command for local preview.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the built site and graph viewer locally",
		Long: `Serve the built documentation site over HTTP for local preview of the
graph viewer. The exported graph document is also available at /api/graph.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseDir, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}

			siteRoot := cfg.SiteRoot
			if !filepath.IsAbs(siteRoot) && baseDir != "" {
				siteRoot = filepath.Join(baseDir, siteRoot)
			}
			if _, err := os.Stat(siteRoot); err != nil {
				return fmt.Errorf("site root %s: %w (run docviz build first?)", siteRoot, err)
			}

			outDir := cfg.OutputDir
			if outDir == "" {
				outDir = filepath.Join(siteRoot, "_static", "docviz")
			} else if !filepath.IsAbs(outDir) && baseDir != "" {
				outDir = filepath.Join(baseDir, outDir)
			}

			return c.serve(cmd.Context(), addr, siteRoot, outDir)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default docviz.toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) serve(ctx context.Context, addr, siteRoot, outDir string) error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(c.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "ok")
	})

	r.Get("/api/graph", func(w http.ResponseWriter, req *http.Request) {
		doc, err := graphson.ReadFile(filepath.Join(outDir, "graphson.json"))
		if err != nil {
			http.Error(w, "no graph export found; run docviz build", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := graphson.WriteDocument(doc, w); err != nil {
			c.Logger.Error("write graph response", "err", err)
		}
	})

	r.Handle("/*", http.FileServer(http.Dir(siteRoot)))

	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	printSuccess("Serving %s on http://localhost%s", siteRoot, addr)
	printDetail("viewer: http://localhost%s/_static/docviz/html/linkgraph.html", addr)
	printDetail("graph API: http://localhost%s/api/graph", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger logs each request at debug level.
func (c *CLI) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, req)
		c.Logger.Debug("request", "method", req.Method, "path", req.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond))
	})
}
