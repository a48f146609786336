package api

import (
	"net/http"
	"time"

	"ssemi/internal/api/handler"
	apimw "ssemi/internal/api/middleware"
	"ssemi/internal/app/service"
	"ssemi/internal/common/security"
	"ssemi/internal/domain/model"
	"ssemi/internal/platform/config"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog"
)

func NewRouter(
	log zerolog.Logger,
	authService *service.AuthService,
	userService *service.UserService,
	requestService *service.RequestService,
	messageService *service.MessageService,
	committeeService *service.CommitteeService,
	reportService *service.ReportService,
	auditService *service.AuditService,
	evidenceService *service.EvidenceService,
	gradeService *service.GradeService,
	notificationService *service.NotificationService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(apimw.RequestLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{config.AppConfig.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(authService)

	// Public auth endpoints; credential and challenge submissions are
	// rate-limited per IP in lieu of an account lockout.
	r.Group(func(public chi.Router) {
		public.Use(httprate.LimitByIP(20, time.Minute))
		authHandler.RegisterPublicRoutes(public)
	})

	// Everything below requires a valid bearer token.
	r.Group(func(protected chi.Router) {
		protected.Use(jwtauth.Verifier(security.TokenAuth))
		protected.Use(apimw.Authenticator)

		authHandler.RegisterProtectedRoutes(protected)

		userHandler := handler.NewUserHandler(userService)
		protected.Route("/usuarios", func(r chi.Router) {
			r.Use(apimw.AdminOnly)
			userHandler.RegisterRoutes(r)
		})

		requestHandler := handler.NewRequestHandler(requestService)
		protected.Route("/solicitudes-correccion", func(r chi.Router) {
			requestHandler.RegisterRoutes(r)
		})

		messageHandler := handler.NewMessageHandler(messageService, authService)
		protected.Route("/mensajes", func(r chi.Router) {
			messageHandler.RegisterRoutes(r)
		})

		committeeHandler := handler.NewCommitteeHandler(committeeService)
		protected.Route("/comite-nacional", func(r chi.Router) {
			r.Use(apimw.AdminOnly)
			committeeHandler.RegisterRoutes(r)
		})

		// Reports are readable by any authenticated role.
		reportHandler := handler.NewReportHandler(reportService)
		protected.Route("/reportes", func(r chi.Router) {
			reportHandler.RegisterRoutes(r)
		})

		evidenceHandler := handler.NewEvidenceHandler(evidenceService)
		protected.Route("/evidencias", func(r chi.Router) {
			evidenceHandler.RegisterRoutes(r)
		})

		evaluatorHandler := handler.NewEvaluatorHandler(gradeService)
		protected.Route("/evaluador", func(r chi.Router) {
			r.Use(apimw.RolesOnly(model.RolEvaluador))
			evaluatorHandler.RegisterRoutes(r)
		})

		notificationHandler := handler.NewNotificationHandler(notificationService)
		protected.Route("/recordatorios", func(r chi.Router) {
			notificationHandler.RegisterRoutes(r)
		})

		auditHandler := handler.NewAuditHandler(auditService)
		protected.Route("/bitacora", func(r chi.Router) {
			r.Use(apimw.AdminOnly)
			auditHandler.RegisterRoutes(r)
		})
	})

	return r
}
