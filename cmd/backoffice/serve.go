package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintree/backoffice/internal/api"
	"github.com/fintree/backoffice/internal/api/handler"
	"github.com/fintree/backoffice/internal/api/metrics"
	"github.com/fintree/backoffice/internal/api/middleware"
	"github.com/fintree/backoffice/internal/core/department"
	"github.com/fintree/backoffice/internal/core/domain"
	"github.com/fintree/backoffice/internal/core/service"
	"github.com/fintree/backoffice/internal/core/table"
	"github.com/fintree/backoffice/internal/core/tenant"
	"github.com/fintree/backoffice/internal/infrastructure/config"
	mongodb "github.com/fintree/backoffice/internal/infrastructure/db/mongo"
	redisdb "github.com/fintree/backoffice/internal/infrastructure/db/redis"
	"github.com/fintree/backoffice/internal/infrastructure/restapi"
	"github.com/fintree/backoffice/internal/infrastructure/tenants"
	"github.com/fintree/backoffice/pkg/logger"
	"github.com/fintree/backoffice/pkg/trace"
)

const (
	janitorInterval = time.Minute
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		File:    cfg.LogFile,
		Service: "backoffice",
	})

	shutdownTracing, err := trace.InitTracing(ctx, trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "backoffice",
		Endpoint:    cfg.Tracing.Endpoint,
		Environment: cfg.Env,
		Insecure:    !cfg.IsProduction(),
	}, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	list, err := tenants.Load(cfg.Dashboard.TenantsFile)
	if err != nil {
		return err
	}
	resolver, err := tenant.NewResolver(list)
	if err != nil {
		return err
	}

	client, err := restapi.NewClient(restapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, log, metrics.ObserveUpstream)
	if err != nil {
		return err
	}

	wcfg, err := workspaceConfig(cfg.Dashboard)
	if err != nil {
		return err
	}

	sessions := service.NewSessionService(
		restapi.NewAuthenticator(client),
		redisdb.NewSessionStore(rdb, cfg.Session.TTL),
		log,
	)
	spaces := service.NewWorkspaceService(service.Collections{
		Companies:   restapi.Companies(client),
		Departments: restapi.Departments(client),
		Roles:       restapi.Roles(client),
		Users:       restapi.Users(client),
		Pages:       restapi.Pages(client),
	}, wcfg, redisdb.NewSubmissionGuard(rdb, 0), mongodb.NewAuditRepository(db), log)
	sessions.OnEnd(spaces.Drop)
	metrics.RegisterWorkspaceGauge(spaces.Len)
	go spaces.Run(ctx, janitorInterval)

	e := api.NewRouter(api.Deps{
		Sessions:   sessions,
		Workspaces: spaces,
		Tenants:    resolver,
		Cookies:    middleware.NewCookies(cfg.Session.Secret, cfg.IsProduction(), cfg.Session.TTL),
		Probes: map[string]handler.Probe{
			"mongodb": handler.MongoProbe(db),
			"redis":   handler.RedisProbe(rdb),
		},
		Log:              log,
		EnforceAllowlist: cfg.Dashboard.AllowlistEnforce,
		Tracing:          cfg.Tracing.Enabled,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("api", cfg.API.BaseURL).Msg("backoffice listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func workspaceConfig(d config.DashboardConfig) (service.WorkspaceConfig, error) {
	policy, err := department.ParseDeletePolicy(d.DepartmentDelete)
	if err != nil {
		return service.WorkspaceConfig{}, err
	}
	update, err := table.ParseMode(d.DepartmentUpdate)
	if err != nil {
		return service.WorkspaceConfig{}, fmt.Errorf("department update: %w", err)
	}

	tabs := make([]domain.ReviewTab, 0, len(d.ReviewTabs))
	for _, raw := range d.ReviewTabs {
		tab, err := domain.ParseReviewTab(strings.TrimSpace(raw))
		if err != nil {
			return service.WorkspaceConfig{}, err
		}
		tabs = append(tabs, tab)
	}

	return service.WorkspaceConfig{
		PageSize:         d.PageSize,
		DepartmentDelete: policy,
		DepartmentUpdate: update,
		ReviewTabs:       tabs,
		IdleTTL:          d.WorkspaceIdleTTL,
	}, nil
}
