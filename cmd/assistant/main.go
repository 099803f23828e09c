package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"docqa/internal/app"
	"docqa/internal/httputil"
)

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("assistant listening", "addr", srv.Addr, "provider", deps.Config.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server failed", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("assistant stopped")
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, deps.Config.RequestTimeout)

	r.Get("/healthz", httputil.HealthHandler(deps))
	r.Group(func(r chi.Router) {
		r.Use(sessionMiddleware(deps))

		r.Get("/", pageHandler(deps))
		r.Get("/api/session", sessionHandler(deps))
		r.Post("/api/session/credential", credentialHandler(deps))
		r.Post("/api/documents", uploadHandler(deps))
		r.Post("/api/summary", summaryHandler(deps))
		r.Put("/api/mode", modeHandler(deps))
		r.Post("/api/ask", askHandler(deps))
		r.Post("/api/challenge/answers", answerHandler(deps))
	})
	return r
}
