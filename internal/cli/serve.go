package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fastats/internal/api"
	"fastats/internal/cache"
	"fastats/internal/scraper"
)

func (a *app) serveCommand() *cobra.Command {
	var cookiePath string

	cmd := &cobra.Command{
		Use:   "serve [--cookies <path>]",
		Short: "Serves profile statistics over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd.Context(), cookiePath)
		},
	}
	cmd.Flags().StringVar(&cookiePath, "cookies", "", "Netscape cookie file exported from a logged in browser")

	return cmd
}

func (a *app) runServe(ctx context.Context, cookiePath string) error {
	jar, err := a.loadJar(cookiePath)
	if err != nil {
		return err
	}

	if a.verbose == 0 {
		gin.SetMode(gin.ReleaseMode)
	}

	memCache := cache.NewMemoryCache[*scraper.ProfileResponse](a.cfg.CacheTTL)
	defer memCache.Close()

	handler := api.NewHandler(a.newScraper(jar), memCache, a.log())
	server := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           handler.SetupRoutes(a.cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server starting", "addr", server.Addr, "cache_ttl", a.cfg.CacheTTL, "scrape_timeout", a.cfg.ScrapeTimeout)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
