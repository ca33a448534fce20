// Package main is the entry point for the background worker.
//
// The worker owns the scheduled side of the system: the nightly push of
// pending records to the SMK registry, the first-of-month duty-hour check,
// and the periodic progress cache refresh. Interactive traffic never passes
// through here; commands and queries run in the API process against the same
// database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sledzspecke/smk-progress-hub/config"
	"github.com/sledzspecke/smk-progress-hub/internal/application/eventhandler"
	"github.com/sledzspecke/smk-progress-hub/internal/application/query"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/shared"
	"github.com/sledzspecke/smk-progress-hub/internal/domain/specialization"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/external/smk"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/messaging"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/postgres"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/projections"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/persistence/redis"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/scheduler"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/scheduler/jobs"
	"github.com/sledzspecke/smk-progress-hub/internal/infrastructure/service"
	"github.com/sledzspecke/smk-progress-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})
	log.Info("starting worker",
		"env", cfg.App.Environment,
		"version", cfg.App.Version,
		"timezone", cfg.App.Timezone,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. DATABASE
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	specRepo := postgres.NewSpecializationRepository(dbConn)
	internshipRepo := postgres.NewInternshipRepository(dbConn)
	shiftRepo := postgres.NewShiftRepository(dbConn)
	requirementRepo := postgres.NewRequirementRepository(dbConn)
	realizationRepo := postgres.NewRealizationRepository(dbConn)
	courseRepo := postgres.NewCourseRepository(dbConn)
	selfEduRepo := postgres.NewSelfEducationRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional, the worker degrades to log-only delivery without it)
	// ─────────────────────────────────────────────────────────────────────────
	var cache *redis.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		cache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, caching and notification trail disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			log.Info("redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS AND HANDLERS
	// With Redis the bus rides pub/sub, so events published by the API process
	// reach this worker's handlers too. Without it the bus is process-local.
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log

	var eventBus shared.EventBus
	if cache != nil {
		redisBus, berr := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubAdapter(cache),
			LocalBusConfig: busConfig,
			Logger:         log,
		})
		if berr != nil {
			return fmt.Errorf("failed to start redis event bus: %w", berr)
		}
		defer redisBus.Close()
		eventBus = redisBus
		log.Info("event bus attached to redis pub/sub")
	} else {
		memBus := messaging.NewInMemoryEventBus(busConfig)
		defer memBus.Close()
		eventBus = memBus
	}

	dispatcherConfig := messaging.DefaultDispatcherConfig(eventBus)
	dispatcherConfig.Logger = log
	dispatcher := messaging.NewDispatcher(dispatcherConfig)

	notifier := service.NewNotificationService(cache, log)
	cardView := projections.NewTrainingCardView()

	onShiftApproved := eventhandler.NewOnShiftApprovedHandler(shiftRepo, specRepo, notifier, log, cfg.Engine.Rules)
	onProcedureRecorded := eventhandler.NewOnProcedureRecordedHandler(notifier, log)
	onModuleCompleted := eventhandler.NewOnModuleCompletedHandler(specRepo, notifier, log)
	onSyncResult := eventhandler.NewOnSyncResultHandler(notifier, log)
	onUnderTarget := eventhandler.NewOnMonthlyUnderTargetHandler(notifier, log)

	registrations := []struct {
		eventType shared.EventType
		name      string
		handler   shared.EventHandler
	}{
		{shared.EventShiftApproved, "on_shift_approved", onShiftApproved.Handle},
		{shared.EventProcedureRecorded, "on_procedure_recorded", onProcedureRecorded.Handle},
		{shared.EventProcedureDuplicate, "on_procedure_duplicate", onProcedureRecorded.Handle},
		{shared.EventProcedureFirstOfType, "on_procedure_first", onProcedureRecorded.Handle},
		{shared.EventProcedureRequirementDone, "on_requirement_done", onProcedureRecorded.Handle},
		{shared.EventModuleCompleted, "on_module_completed", onModuleCompleted.Handle},
		{shared.EventSyncCompleted, "on_sync_completed", onSyncResult.Handle},
		{shared.EventSyncFailed, "on_sync_failed", onSyncResult.Handle},
		{shared.EventShiftMonthlyUnderTarget, "on_monthly_under_target", onUnderTarget.Handle},
		{shared.EventShiftApproved, "training_card_shift", cardView.Handle},
		{shared.EventProcedureRecorded, "training_card_procedure", cardView.Handle},
		{shared.EventModuleStarted, "training_card_module_started", cardView.Handle},
		{shared.EventModuleCompleted, "training_card_module_completed", cardView.Handle},
		{shared.EventModuleSwitched, "training_card_module_switched", cardView.Handle},
		{shared.EventSyncCompleted, "training_card_sync_completed", cardView.Handle},
		{shared.EventSyncFailed, "training_card_sync_failed", cardView.Handle},
	}
	for _, reg := range registrations {
		if err := dispatcher.Register(reg.eventType, reg.name, reg.handler); err != nil {
			return fmt.Errorf("failed to register handler %s: %w", reg.name, err)
		}
	}
	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer dispatcher.Stop()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. SMK REGISTRY CLIENT
	// ─────────────────────────────────────────────────────────────────────────
	clientConfig := smk.DefaultClientConfig(cfg.Registry.BaseURL)
	clientConfig.Timeout = cfg.Registry.RequestTimeout
	clientConfig.RateLimiterConfig.RequestsPerSecond = cfg.Registry.RequestsPerSecond
	clientConfig.RateLimiterConfig.BurstSize = cfg.Registry.BurstSize
	clientConfig.Logger = log
	clientConfig.Debug = cfg.App.Debug
	smkClient := smk.NewClient(clientConfig)

	if cfg.Registry.Username != "" {
		if _, err := smkClient.Authenticate(ctx, cfg.Registry.Username, cfg.Registry.Password); err != nil {
			// The sync job re-submits tomorrow; a dead registry at boot is
			// not fatal for the worker.
			log.Warn("registry authentication failed", "error", err)
		} else {
			log.Info("registry session established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. QUERY HANDLERS FOR CACHE WARMING
	// ─────────────────────────────────────────────────────────────────────────
	calculator, err := specialization.NewCalculator(cfg.Engine.Weights)
	if err != nil {
		return fmt.Errorf("failed to build progress calculator: %w", err)
	}
	moduleProgress := query.NewGetModuleProgressHandler(
		specRepo, internshipRepo, courseRepo, selfEduRepo,
		requirementRepo, realizationRepo, shiftRepo, calculator,
	)
	overallProgress := query.NewGetOverallProgressHandler(specRepo, moduleProgress)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER AND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	if !cfg.Scheduler.Enabled {
		log.Warn("scheduler disabled, worker will only dispatch events")
		return waitForShutdown(ctx, log)
	}

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:        log,
		Timezone:      cfg.App.Location,
		EnableMetrics: true,
	})

	syncJob := jobs.NewRegistrySyncJob(
		specRepo, shiftRepo, realizationRepo, smkClient, smkClient.Mapper(),
		eventBus, log, jobs.DefaultRegistrySyncConfig(),
	)
	syncSchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.RegistrySyncCron)
	if err != nil {
		return fmt.Errorf("invalid sync cron expression: %w", err)
	}
	if err := sched.Register(syncJob, syncSchedule); err != nil {
		return fmt.Errorf("failed to register sync job: %w", err)
	}

	monthlyJob := jobs.NewMonthlyHoursCheckJob(specRepo, shiftRepo, eventBus, log, cfg.App.Location)
	monthlySchedule, err := scheduler.ParseCronExpression(cfg.Scheduler.MonthlyCheckCron)
	if err != nil {
		return fmt.Errorf("invalid monthly cron expression: %w", err)
	}
	if err := sched.Register(monthlyJob, monthlySchedule); err != nil {
		return fmt.Errorf("failed to register monthly job: %w", err)
	}

	if cache != nil {
		refreshJob := jobs.NewProgressRefreshJob(specRepo, overallProgress, cache, cardView, log)
		refreshSchedule := scheduler.NewIntervalSchedule(cfg.Scheduler.ProgressRefreshInterval)
		if err := sched.Register(refreshJob, refreshSchedule); err != nil {
			return fmt.Errorf("failed to register refresh job: %w", err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("worker is running", "jobs", len(sched.ListJobs()))
	return waitForShutdown(ctx, log)
}

func waitForShutdown(ctx context.Context, log *slog.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
	}
	return nil
}
