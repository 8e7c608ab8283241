package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"cake-tracker/internal/config"
	httpapi "cake-tracker/internal/http"
	"cake-tracker/internal/screening"
	"cake-tracker/internal/service"
	"cake-tracker/internal/suggest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo := openRepository(ctx, cfg, log)
	defer closeRepo()

	publisher, closePublisher := openPublisher(cfg, log)
	defer closePublisher()

	lifecycle := service.NewIncidentLifecycle(repo, log)
	incidents := service.NewIncidentService(lifecycle, screening.New(cfg.Screening, log), publisher, log)
	dashboard := service.NewDashboardService(lifecycle, service.DashboardSizes{
		Leaderboard: cfg.Dashboard.LeaderboardSize,
		Recent:      cfg.Dashboard.RecentSize,
		Ranking:     cfg.Dashboard.RankingSize,
	}, cfg.Timezone)

	// 启动时加载一次；失败时以空列表启动，可通过 refresh 重试
	_ = incidents.Refresh(ctx)

	router := httpapi.NewRouter(log)
	router.RegisterIncidentRoutes(httpapi.NewIncidentsHandler(incidents, log))
	router.RegisterDashboardRoutes(httpapi.NewDashboardHandler(dashboard, log))
	router.RegisterSuggestionRoutes(httpapi.NewSuggestionsHandler(suggest.NewLookup(repo, cfg.Suggest.Limit, log), log))
	router.RegisterHealthRoutes()

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("Failed to shutdown server", zap.Error(err))
			return err
		}
		return nil
	})

	return g.Wait()
}
