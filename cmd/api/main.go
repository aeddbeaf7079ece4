package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/leadflow/internal/config"
	"github.com/xavierca1/leadflow/internal/infra/http/handlers"
	"github.com/xavierca1/leadflow/internal/infra/http/middleware"
	"github.com/xavierca1/leadflow/internal/infra/integration/whatsapp"
	"github.com/xavierca1/leadflow/internal/infra/lock"
	"github.com/xavierca1/leadflow/internal/infra/logger"
	"github.com/xavierca1/leadflow/internal/infra/mail"
	"github.com/xavierca1/leadflow/internal/infra/queue"
	"github.com/xavierca1/leadflow/internal/infra/sheets"
	"github.com/xavierca1/leadflow/internal/infra/worker"
	"github.com/xavierca1/leadflow/internal/ingestion"
	"github.com/xavierca1/leadflow/internal/usecase"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("leadflow stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	st, err := openStores(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer st.Close()

	health := map[string]handlers.Pinger{"database": nil, "rabbitmq": nil, "redis": nil}
	if st.db != nil {
		health["database"] = handlers.PingFunc(st.db.PingContext)
	}

	// 2. Optional infrastructure
	var publisher ingestion.LeadPublisher
	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, lead alerts disabled")
		} else {
			defer rabbit.Close()
			publisher = queue.NewProducer(rabbit.Ch)
			health["rabbitmq"] = handlers.PingFunc(func(context.Context) error {
				if !rabbit.Healthy() {
					return errors.New("connection closed")
				}
				return nil
			})
		}
	}

	var locker worker.Locker
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		redisLocker := lock.NewRedisLocker(rdb, "")
		if err := redisLocker.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, import runs guarded in-process only")
		} else {
			locker = redisLocker
		}
		health["redis"] = redisLocker
	}

	rows := ingestion.SourceRouter{ingestion.SourceKindFile: sheets.NewFileSource()}
	var sheetValidator usecase.SheetAccessValidator
	creds, err := cfg.GoogleCredentialsJSON()
	switch {
	case err != nil:
		log.WithError(err).Warn("google credentials unreadable, sheet imports disabled")
	case creds == nil:
		log.Info("no google credentials configured, sheet imports disabled")
	default:
		remote, err := sheets.NewRemoteSource(ctx, creds)
		if err != nil {
			log.WithError(err).Warn("google sheets client not created, sheet imports disabled")
			break
		}
		rows[ingestion.SourceKindSheet] = remote
		sheetValidator = remote
	}

	// 3. Ingestion
	metrics := middleware.ImportMetrics{}
	cursors := ingestion.NewCursorStore(st.cursors)
	engine := ingestion.NewEngine(ingestion.Dependencies{
		Leads:        st.leads,
		Users:        st.users,
		Cursors:      cursors,
		Logs:         st.logs,
		Rows:         rows,
		Resolver:     ingestion.NewConfiguredSources(st.configs, cfg.ExcelFilePath, cfg.ImportInterval),
		Notifier:     ingestion.NewFanOut(st.users, st.notifications, publisher, log),
		Metrics:      metrics,
		Logger:       log,
		FetchTimeout: cfg.ImportFetchTimeout,
	})

	scheduler := worker.NewImportScheduler(engine, locker, metrics, worker.ImportSchedulerConfig{
		Interval:   cfg.ImportInterval,
		LockTTL:    cfg.ImportLockTTL,
		RunOnStart: cfg.ImportRunOnStart,
	}, log)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	// 4. Alert worker
	if rabbit != nil {
		senders := []queue.AlertSender{}
		if cfg.MailHost != "" {
			senders = append(senders, mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom))
		}
		if cfg.WhatsAppAccessToken != "" {
			client := whatsapp.NewClient(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneID, cfg.WhatsAppLanguage)
			senders = append(senders, mail.NewWhatsAppSender(client, cfg.WhatsAppTemplate))
		}
		alerts := queue.NewWorker(rabbit.Ch, st.users, log, senders...)
		alerts.Metrics = metrics
		go func() {
			if err := alerts.Start(ctx, queue.QueueName); err != nil {
				log.WithError(err).Error("lead alert worker stopped")
			}
		}()
	}

	// 5. Use cases
	imports := &usecase.ImportUseCase{
		Configs:   st.configs,
		Cursors:   cursors,
		Logs:      st.logs,
		Scheduler: scheduler,
		Uploads:   engine,
		Sheets:    sheetValidator,
		Logger:    log,
	}

	// 6. Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", middleware.UserHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.NewHealthHandler(health).Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(st.users, log))
		handlers.NewLeadHandler(usecase.NewLeadUseCase(st.leads, st.users, log), log).Routes(r)
		handlers.NewInteractionHandler(usecase.NewInteractionUseCase(st.leads, st.interactions, log), log).Routes(r)
		handlers.NewNotificationHandler(usecase.NewNotificationUseCase(st.notifications), log).Routes(r)
		handlers.NewDashboardHandler(
			usecase.NewDashboardUseCase(st.leads, st.interactions),
			usecase.NewReportUseCase(st.leads, st.users),
			log,
		).Routes(r)
		handlers.NewUserHandler(usecase.NewUserUseCase(st.users), log).Routes(r)
		handlers.NewImportHandler(imports, handlers.NewRateLimiter(10, time.Minute), log).Routes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.HTTPPort).Info("leadflow api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
