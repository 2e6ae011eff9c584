package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

var errMissingDatabaseURL = errors.New("missing required env DATABASE_URL")

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the order notification hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			if port != 0 {
				cfg.ServerPort = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port, overrides SERVER_PORT")
	return cmd
}

func serve(parent context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	ctx = logging.IntoContext(ctx, l)

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		return err
	}
	store := &repo.GormRepo{DB: db}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	prod := mykafka.NewProducer(cfg.KafkaBrokers)
	if prod.Enabled() {
		l.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	esClient, err := es.NewClient(cfg, l)
	if err != nil {
		l.Warn("elasticsearch_unavailable", "error", err)
	}

	hub := notify.NewHub()
	relay := notify.NewRelay(hub, prod, m)

	var bridge *notify.Bridge
	if prod.Enabled() {
		// Every instance consumes the whole topic so each local hub sees every event.
		groupID := mykafka.InstanceGroupID(cfg.ServiceName, "notify", cfg.InstanceID)
		l.Info("notify_bridge_starting", "group_id", groupID)
		bridge = &notify.Bridge{
			Hub:    hub,
			Reader: mykafka.NewReader(cfg.KafkaBrokers, mykafka.TopicOrders, groupID),
			Log:    l,
		}
		go func() {
			if err := bridge.Run(ctx); err != nil {
				l.Error("notify_bridge_stopped", "error", err)
			}
		}()
	}

	e := httpserver.NewEcho(l, m, cfg.CORSOrigins)
	httpserver.Register(e, &httpserver.Deps{
		Auth: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:          store,
			JWTSecret:     cfg.JWTAccessSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
		}},
		Catalog: &httpserver.CatalogHTTP{Svc: &service.CatalogService{Repo: store, Index: esClient, Events: prod}},
		Cart:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: store, Events: prod}},
		Order: &httpserver.OrderHTTP{Svc: &service.OrderService{
			Repo:              store,
			Notifier:          relay,
			Metrics:           m,
			StrictTransitions: cfg.StrictOrderTransitions,
		}},
		Account: &httpserver.AccountHTTP{
			Svc:      &service.AccountService{Repo: store},
			Wishlist: &service.WishlistService{Repo: store},
		},
		Hub:       hub,
		Metrics:   m,
		DB:        store,
		JWTSecret: cfg.JWTAccessSecret,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			l.Error("http_server_error", "error", err)
		}
	}

	l.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if bridge != nil {
		if err := bridge.Close(); err != nil {
			l.Warn("notify_bridge_close_error", "error", err)
		}
	}
	relay.Wait()
	if err := prod.Close(); err != nil {
		l.Warn("kafka_close_error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			l.Error("db_close_error", "error", err)
		}
	}

	l.Info("shutdown_complete")
	return nil
}
