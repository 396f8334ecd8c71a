// Package main provides the entrypoint for the RenderGuard status service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/renderguard/renderguard/internal/api"
	"github.com/renderguard/renderguard/internal/api/middleware"
	"github.com/renderguard/renderguard/internal/catalog"
	"github.com/renderguard/renderguard/internal/commitgate"
	"github.com/renderguard/renderguard/internal/glass"
	"github.com/renderguard/renderguard/internal/health"
	"github.com/renderguard/renderguard/internal/ledger"
	"github.com/renderguard/renderguard/internal/notify"
	"github.com/renderguard/renderguard/internal/platform"
	"github.com/renderguard/renderguard/internal/recovery"
	"github.com/renderguard/renderguard/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// appDescriptors is the generic application catalog guarded by the engine,
// alongside the glass subsystem's own fixed set.
func appDescriptors() []catalog.Descriptor {
	return []catalog.Descriptor{
		{Name: "app.layout.home", Kind: catalog.KindLayout},
		{Name: "app.layout.detail", Kind: catalog.KindLayout},
		{Name: "app.visual.hero_gradient", Kind: catalog.KindVisual},
		{Name: "app.visual.icon_set", Kind: catalog.KindVisual},
		{Name: "app.color.accent", Kind: catalog.KindColor},
		{Name: "app.color.surface", Kind: catalog.KindColor},
		{Name: "app.dimension.grid_gutter", Kind: catalog.KindDimension},
	}
}

func main() {
	const serviceName = "renderguard-statusd"

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().Str("build_time", BuildTime).Msg("starting RenderGuard status service")

	port := envOrDefault("APP_PORT", "8080")
	env := envOrDefault("APP_ENV", "development")
	otlpEndpoint := envOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        os.Getenv("OTEL_ENABLED") == "true",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize HTTP metrics")
	}
	engineMetrics, err := recovery.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize engine metrics")
	}

	// The resolver stands in for the rendering layer's resource lookup.
	// RESOURCES_MISSING removes names for degradation drills.
	resolver := platform.NewStaticResolver()
	for _, d := range appDescriptors() {
		resolver.Register(d.Name)
	}
	for _, d := range glass.Catalog() {
		resolver.Register(d.Name)
	}
	if missing := os.Getenv("RESOURCES_MISSING"); missing != "" {
		for _, name := range strings.Split(missing, ",") {
			resolver.Remove(strings.TrimSpace(name))
		}
	}

	advancedRendering := os.Getenv("ADVANCED_RENDERING") != "false"

	glassValidator := glass.NewValidator(glass.ValidatorConfig{
		Resolver: resolver,
		Probe:    func() bool { return advancedRendering },
		Logger:   log,
	})
	catalogValidator := catalog.NewValidator(catalog.ValidatorConfig{
		Resolver: resolver,
		Logger:   log,
	})

	ledgerCfg := ledger.Config{
		Logger:   log,
		Validate: func() *catalog.Report { return catalogValidator.Validate(appDescriptors()) },
	}

	if os.Getenv("ARCHIVE_DB_ENABLED") == "true" {
		archive, archiveErr := ledger.NewPostgresArchive(ctx, ledger.ArchiveConfigFromEnv())
		if archiveErr != nil {
			log.Fatal().Err(archiveErr).Msg("failed to connect crash archive")
		}
		defer archive.Close()
		ledgerCfg.Archive = archive
		log.Info().Msg("crash archive connected")
	}

	if projectID := os.Getenv("PUBSUB_PROJECT_ID"); projectID != "" {
		publisher, pubErr := notify.NewPublisher(ctx, notify.PublisherConfig{
			ProjectID: projectID,
			TopicID:   envOrDefault("PUBSUB_CRASH_TOPIC", "renderguard-crashes"),
			Logger:    log,
		})
		if pubErr != nil {
			log.Fatal().Err(pubErr).Msg("failed to create crash event publisher")
		}
		defer func() { _ = publisher.Close() }()
		ledgerCfg.Publisher = publisher
		log.Info().Str("project", projectID).Msg("crash event publisher initialized")
	}

	diagnosticLedger := ledger.New(ledgerCfg)
	defer diagnosticLedger.Close()

	gate := commitgate.New()
	envState := func() platform.EnvironmentState {
		// The standalone service has no host scope tearing down under it.
		return platform.EnvironmentState{}
	}

	uiCoordinator := recovery.NewCoordinator(recovery.Config{
		Domain:  "ui",
		Ladder:  recovery.GenericLadder(),
		Ledger:  diagnosticLedger,
		Gate:    gate,
		Env:     envState,
		Metrics: engineMetrics,
		Logger:  log,
		Revalidate: func(string) error {
			report := catalogValidator.Validate(appDescriptors())
			if !report.AllAvailable {
				return fmt.Errorf("catalog incomplete: %d missing", report.MissingCount())
			}
			return nil
		},
	})
	defer uiCoordinator.Close()

	glassCoordinator := recovery.NewCoordinator(recovery.Config{
		Domain:  "glass",
		Ladder:  recovery.GlassLadder(),
		Ledger:  diagnosticLedger,
		Gate:    gate,
		Env:     envState,
		Metrics: engineMetrics,
		Logger:  log,
		Revalidate: func(string) error {
			report := glassValidator.ValidateAll()
			if report.RecommendedTier != glass.TierFull {
				return fmt.Errorf("glass subsystem at %s", report.RecommendedTier)
			}
			return nil
		},
	})
	defer glassCoordinator.Close()

	log.Info().Msg("resilience engine initialized")

	signingKey := os.Getenv("OPS_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default operator signing key, not secure for production")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		Metrics:            httpMetrics,
		Coordinators:       []*recovery.Coordinator{uiCoordinator, glassCoordinator},
		Ledger:             diagnosticLedger,
		CatalogValidator:   catalogValidator,
		Descriptors:        appDescriptors(),
		GlassValidator:     glassValidator,
		Thresholds:         health.DefaultThresholds(),
		OperatorSigningKey: signingKey,
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
