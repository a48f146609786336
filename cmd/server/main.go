package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ssemi/internal/api"
	"ssemi/internal/app/mailer"
	"ssemi/internal/app/service"
	"ssemi/internal/app/worker"
	"ssemi/internal/common/security"
	"ssemi/internal/domain/repository"
	"ssemi/internal/platform/cache"
	"ssemi/internal/platform/config"
	"ssemi/internal/platform/database"
	"ssemi/internal/platform/storage"
	"ssemi/pkg/logger"
)

func main() {
	config.Load()

	log := logger.New(config.AppConfig.Env)
	log.Info().Msg("configuration loaded")

	security.InitJWT()

	database.Connect()
	defer database.Close()
	log.Info().Msg("database connected")

	cache.Connect()
	defer cache.Close()
	log.Info().Msg("redis connected")

	mail := mailer.New(config.AppConfig, log)

	fileStore, err := storage.NewFileStore(config.AppConfig.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory unavailable")
	}

	userRepo := repository.NewPgUserRepository(database.DB)
	requestRepo := repository.NewPgRequestRepository(database.DB)
	messageRepo := repository.NewPgMessageRepository(database.DB)
	reportRepo := repository.NewPgReportRepository(database.DB)
	auditRepo := repository.NewPgAuditRepository(database.DB)
	evidenceRepo := repository.NewPgEvidenceRepository(database.DB)
	gradeRepo := repository.NewPgGradeRepository(database.DB)
	notificationRepo := repository.NewPgNotificationRepository(database.DB)

	challenges := service.NewChallengeStore(cache.RDB)
	auditService := service.NewAuditService(auditRepo, log)
	authService := service.NewAuthService(userRepo, challenges, auditService, mail, log)
	userService := service.NewUserService(userRepo, auditService)
	requestService := service.NewRequestService(requestRepo, userRepo, auditService)
	messageService := service.NewMessageService(messageRepo, userRepo)
	committeeService := service.NewCommitteeService(userRepo, mail, log)
	reportService := service.NewReportService(reportRepo, userRepo, requestRepo, auditService)
	evidenceService := service.NewEvidenceService(evidenceRepo, fileStore, auditService)
	gradeService := service.NewGradeService(gradeRepo, evidenceRepo, userRepo, auditService)
	notificationService := service.NewNotificationService(notificationRepo, config.AppConfig.ReminderAfter)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	reminderWorker := worker.NewReminderWorker(notificationService, config.AppConfig.ReminderInterval, log)
	go reminderWorker.Start(workerCtx)

	router := api.NewRouter(
		log,
		authService,
		userService,
		requestService,
		messageService,
		committeeService,
		reportService,
		auditService,
		evidenceService,
		gradeService,
		notificationService,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", config.AppConfig.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-stop

	log.Info().Msg("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped gracefully")
}
