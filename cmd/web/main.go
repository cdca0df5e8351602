package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/egypt-online-web/internal/config"
	handlersPkg "finitefield.org/egypt-online-web/internal/handlers"
	"finitefield.org/egypt-online-web/internal/i18n"
	"finitefield.org/egypt-online-web/internal/logging"
	mw "finitefield.org/egypt-online-web/internal/middleware"
	"finitefield.org/egypt-online-web/internal/nav"
	"finitefield.org/egypt-online-web/internal/page"
	"finitefield.org/egypt-online-web/internal/render"
	"finitefield.org/egypt-online-web/internal/resource"
	"finitefield.org/egypt-online-web/internal/site"
	"finitefield.org/egypt-online-web/internal/validate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds everything a request needs. It is built once at startup.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	bundle    *i18n.Bundle
	renderer  *render.Renderer
	site      *site.Site
	orch      *page.Orchestrator
	validator *validate.Validator
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	bundle, err := i18n.Load(os.DirFS(cfg.LocalesDir), ".", cfg.DefaultLang, cfg.Languages)
	if err != nil {
		return nil, fmt.Errorf("load i18n: %w", err)
	}
	opts := render.Options{Logger: logger.Named("render")}
	if cfg.TemplatesURL != "" {
		opts.Fallback = render.LoaderSource{Loader: resource.NewHTTPLoader(cfg.TemplatesURL)}
	}
	renderer, err := render.Configure(os.DirFS(cfg.TemplatesDir), opts)
	if err != nil {
		return nil, fmt.Errorf("parse templates under %s: %w", cfg.TemplatesDir, err)
	}
	loader := dataLoader(cfg)
	s := site.New(loader, renderer, site.Options{Bundle: bundle, Logger: logger.Named("site")})
	return &app{
		cfg:       cfg,
		logger:    logger,
		bundle:    bundle,
		renderer:  renderer,
		site:      s,
		orch:      page.NewOrchestrator(logger.Named("page"), s.Card),
		validator: validate.New(loader, logger.Named("validate")),
	}, nil
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(a.logger.Named("http")))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(a.cfg.RequestTimeout))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	r.Handle("/assets/*", mw.AssetsWithCache(filepath.Join(a.cfg.PublicDir, "assets")))
	// Data files stay fetchable by browsers when they are served locally.
	if a.cfg.DataURL == "" {
		r.Handle("/data/*", mw.StaticWithCache(os.DirFS(filepath.Join(a.cfg.PublicDir, "data")), "/data", mw.CacheNone))
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.Locale(a.bundle))
		for _, name := range site.Names() {
			r.Get(nav.PathFor(name), a.pageHandler(name))
		}
	})
	return r
}

func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      a.cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(a.logger.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if a.cfg.Dev {
		if reg := a.renderer.Registry(); reg != nil {
			g.Go(func() error {
				if err := reg.Watch(gctx, a.cfg.TemplatesDir, a.logger.Named("templates")); err != nil {
					a.logger.Warn("template watcher stopped", zap.Error(err))
				}
				return nil
			})
		}
	}
	return g.Wait()
}

// pageHandler runs every section of the named page, then executes the
// layout around the filled document. With ?validate the offline checks run
// alongside and prepend a card per failing resource.
func (a *app) pageHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		lang := mw.Lang(r)
		p, ok := a.site.Page(name, lang)
		if !ok {
			http.NotFound(w, r)
			return
		}
		load := a.orch.Begin(p)

		var report validate.Report
		var g errgroup.Group
		diagnose := validate.Requested(r.URL.Query())
		if diagnose {
			g.Go(func() error {
				report = a.validator.Run(ctx)
				return nil
			})
		}
		res := a.orch.RenderLoad(ctx, p, load)
		_ = g.Wait()
		if diagnose {
			validate.Annotate(ctx, res.Doc, site.MainContainer, a.site.Card, report)
		}

		vm := handlersPkg.BuildPageData(handlersPkg.PageInput{
			Page:        name,
			Title:       a.site.Title(name, lang),
			Description: a.bundle.T(lang, "meta.description"),
			Path:        r.URL.Path,
			Lang:        lang,
			BaseURL:     a.cfg.BaseURL,
			Doc:         res.Doc,
			Bundle:      a.bundle,
			Analytics: handlersPkg.Analytics{
				GA4MeasurementID: a.cfg.Analytics.GA4MeasurementID,
				Debug:            a.cfg.Analytics.Debug,
			},
		})
		a.render(w, r, vm)
	}
}

// render executes the base layout into a buffer so a template failure can
// still produce a clean 500.
func (a *app) render(w http.ResponseWriter, r *http.Request, data any) {
	reg := a.renderer.Registry()
	if reg == nil || reg.Template() == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := reg.Template().ExecuteTemplate(&buf, "base", data); err != nil {
		logging.FromContext(r.Context()).Error("layout execution failed", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if rid, ok := mw.RequestID(r.Context()); ok {
		w.Header().Set("X-Request-Id", rid)
	}
	_, _ = buf.WriteTo(w)
}
