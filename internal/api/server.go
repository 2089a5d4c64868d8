package api

import (
	"fmt"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/ingetuto/ingetuto-api/docs"
	v1 "github.com/ingetuto/ingetuto-api/internal/api/handler/v1"
	"github.com/ingetuto/ingetuto-api/internal/api/middleware"
	"github.com/ingetuto/ingetuto-api/internal/config"
	"github.com/ingetuto/ingetuto-api/internal/domain"
	"github.com/ingetuto/ingetuto-api/internal/pkg/session"
	"github.com/ingetuto/ingetuto-api/internal/repository"
	"github.com/ingetuto/ingetuto-api/internal/repository/dao"
	"github.com/ingetuto/ingetuto-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// Background workers the caller has to run next to the router.
	Tracker *session.Tracker
	Events  *v1.EventHub
	Sweeper *service.SessionSweeper

	loc   *time.Location
	repos *repositories
}

type repositories struct {
	users         *repository.UserRepository
	subjects      *repository.SubjectRepository
	tutorRequests *repository.TutorRequestRepository
	availability  *repository.AvailabilityRepository
	tutoring      *repository.TutoringRepository
}

type handlers struct {
	auth          *v1.AuthHandler
	user          *v1.UserHandler
	subject       *v1.SubjectHandler
	tutorRequest  *v1.TutorRequestHandler
	tutorSubject  *v1.TutorSubjectHandler
	availability  *v1.AvailabilityHandler
	tutoring      *v1.TutoringHandler
	authenticator *middleware.Authenticator
}

func NewServer(conf *config.AppConfig, db *gorm.DB) (*Server, error) {
	loc, err := time.LoadLocation(conf.Scheduler.Location)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) -> %w", conf.Scheduler.Location, err)
	}

	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:  conf,
		Router:  engine,
		Tracker: session.NewTracker(conf.Auth.InactivityTimeout),
		loc:     loc,
		repos: &repositories{
			users:         repository.NewUserRepository(dao.NewUserDAO(db)),
			subjects:      repository.NewSubjectRepository(dao.NewSubjectDAO(db)),
			tutorRequests: repository.NewTutorRequestRepository(dao.NewTutorRequestDAO(db)),
			availability:  repository.NewAvailabilityRepository(dao.NewAvailabilityDAO(db)),
			tutoring:      repository.NewTutoringRepository(dao.NewTutoringDAO(db)),
		},
	}

	s.MountMiddlewares()

	h := handlers{authenticator: middleware.NewAuthenticator(conf.API.JWTSigningKey, s.Tracker)}
	uSvc := s.initUserService()
	h.auth = s.initAuthHandler(uSvc)
	h.user = v1.NewUserHandler(uSvc)
	h.subject = v1.NewSubjectHandler(service.NewSubjectService(s.repos.subjects))
	if h.tutorRequest, err = s.initTutorRequestHandler(uSvc); err != nil {
		return nil, err
	}
	h.tutorSubject = v1.NewTutorSubjectHandler(service.NewTutorSubjectService(s.repos.subjects, s.repos.availability), uSvc)
	h.availability = v1.NewAvailabilityHandler(service.NewAvailabilityService(s.repos.availability, s.repos.subjects, loc), uSvc)
	s.Events = v1.NewEventHub(uSvc, conf.API.AllowedCORSDomains)
	h.tutoring = s.initTutoringHandler(uSvc)

	s.MountHandlers(h)

	return s, nil
}

func (s *Server) initUserService() *service.UserService {
	return service.NewUserService(s.repos.users)
}

func (s *Server) initAuthHandler(uSvc *service.UserService) *v1.AuthHandler {
	svc := service.NewAuthService(s.repos.users, s.Config.Auth.AllowedEmailDomain)
	handler := v1.NewAuthHandler(s.Config.API, s.Config.Auth, svc, uSvc, s.Tracker)

	return handler
}

func (s *Server) initTutorRequestHandler(uSvc *service.UserService) (*v1.TutorRequestHandler, error) {
	store, err := service.NewDiskStore(s.Config.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("service.NewDiskStore -> %w", err)
	}

	svc := service.NewTutorRequestService(s.repos.tutorRequests, s.repos.subjects, store, s.loc)
	handler := v1.NewTutorRequestHandler(svc, uSvc)

	return handler, nil
}

func (s *Server) initTutoringHandler(uSvc *service.UserService) *v1.TutoringHandler {
	svc := service.NewTutoringService(
		s.repos.tutoring,
		s.repos.availability,
		s.repos.subjects,
		s.Events,
		s.loc,
		s.Config.Scheduler.ConfirmationBusinessDays,
	)
	s.Sweeper = service.NewSessionSweeper(svc, s.Config.Scheduler.SweepInterval)
	handler := v1.NewTutoringHandler(svc, uSvc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(h handlers) {
	const basePath = "/api"

	var (
		admin     = middleware.RequireRoles(domain.RoleAdmin, domain.RoleWellbeing)
		wellbeing = middleware.RequireRoles(domain.RoleWellbeing)
		student   = middleware.RequireRoles(domain.RoleStudent)
		tutor     = middleware.RequireRoles(domain.RoleTutor)
		anyRole   = middleware.RequireRoles(domain.RoleNames()...)
	)

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/oauth/complete",
			middleware.RequireCallbackSecret(s.Config.Auth.CallbackSecret), h.auth.HandleOAuthComplete)
	}

	api := s.Router.Group(basePath, h.authenticator.VerifyJWT())
	{
		api.GET("/auth/me", h.auth.HandleMe)
		api.POST("/auth/switch-role", h.auth.HandleSwitchRole)
		api.POST("/auth/logout", h.auth.HandleLogout)

		api.PUT("/usuarios/phone", h.user.HandleUpdatePhone)

		api.GET("/events/ws", s.Events.HandleWebSocket)
	}

	adminGroup := api.Group("/admin", admin)
	{
		adminGroup.GET("/users", h.user.HandleListUsers)
		adminGroup.PUT("/users/:userID/roles", h.user.HandleUpdateRoles)
		adminGroup.DELETE("/users/:userID", h.user.HandleDeleteUser)
	}

	subjects := api.Group("/materias")
	{
		subjects.GET("", anyRole, h.subject.HandleListSubjects)
		subjects.GET("/:subjectID", anyRole, h.subject.HandleGetSubject)
		subjects.GET("/verificar-codigo/:code", admin, h.subject.HandleCheckCode)
		subjects.POST("", admin, h.subject.HandleCreateSubject)
		subjects.PUT("/:subjectID", admin, h.subject.HandleUpdateSubject)
		subjects.DELETE("/:subjectID", admin, h.subject.HandleDeleteSubject)
	}

	tutorRequests := api.Group("/tutor-requests")
	{
		tutorRequests.POST("", student, h.tutorRequest.HandleSubmit)
		tutorRequests.GET("/my-requests", student, h.tutorRequest.HandleMine)
		tutorRequests.GET("/pending", wellbeing, h.tutorRequest.HandlePending)
		tutorRequests.GET("/history", wellbeing, h.tutorRequest.HandleHistory)
		tutorRequests.PUT("/:requestID/status", wellbeing, h.tutorRequest.HandleReview)
		tutorRequests.GET("/download/:fileName", h.tutorRequest.HandleDownload)
	}

	tutorSubjects := api.Group("/tutor-subjects", tutor)
	{
		tutorSubjects.GET("/my-subjects", h.tutorSubject.HandleMySubjects)
		tutorSubjects.DELETE("/:linkID", h.tutorSubject.HandleRemoveSubject)
	}

	availability := api.Group("/disponibilidad")
	{
		availability.POST("/plantilla-semanal", tutor, h.availability.HandleSaveWeeklyTemplate)
		availability.GET("/plantilla-semanal", tutor, h.availability.HandleWeeklyTemplate)
		availability.POST("/generar-mensual", tutor, h.availability.HandleGenerateMonthly)
		availability.GET("/mensual/:month/:year", tutor, h.availability.HandleMonthly)
		availability.POST("/validar-confirmar", tutor, h.availability.HandleValidateMonth)
		availability.DELETE("/bloque/:blockID", tutor, h.availability.HandleDeleteBlock)
		availability.PATCH("/bloque/:blockID/modalidad", tutor, h.availability.HandleChangeModality)
		availability.GET("/por-materia/:subjectID", middleware.RequireRoles(domain.RoleStudent, domain.RoleTutor), h.availability.HandleBySubject)
	}

	tutoring := api.Group("/tutorias")
	{
		tutoring.POST("/reservar", student, h.tutoring.HandleReserve)
		tutoring.GET("/estudiante", student, h.tutoring.HandleStudentSessions)
		tutoring.GET("/tutor", tutor, h.tutoring.HandleTutorSessions)
		tutoring.PUT("/:sessionID/link", tutor, h.tutoring.HandleSetLink)
		tutoring.PUT("/:sessionID/cancelar", middleware.RequireRoles(domain.RoleStudent, domain.RoleTutor), h.tutoring.HandleCancel)
		tutoring.PUT("/:sessionID/confirmar-estudiante", student, h.tutoring.HandleConfirmAsStudent)
		tutoring.PUT("/:sessionID/confirmar-tutor", tutor, h.tutoring.HandleConfirmAsTutor)
		tutoring.GET("/pendientes-revision", wellbeing, h.tutoring.HandlePendingReview)
		tutoring.PUT("/:sessionID/revision", wellbeing, h.tutoring.HandleReviewSession)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "IngeTUTO API"
	docs.SwaggerInfo.Description = "Tutoring scheduling: availability, bookings and the session lifecycle."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
