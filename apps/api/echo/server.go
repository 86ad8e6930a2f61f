package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/material"
)

type ServerDeps struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Renderer   PageRenderer // JSONRenderer if nil
	Blobs      core.BlobStore
	DB         core.Pinger // optional; checked by /health

	AccountSvc    *account.Service
	CourseSvc     *course.Service
	ClassroomSvc  *classroom.Service
	MaterialSvc   *material.Service
	AttendanceSvc *attendance.Service
}

type Server struct {
	deps     ServerDeps
	app      *echo.Echo
	sessions *sessionManager
	metrics  *metrics
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(deps ServerDeps) *Server {
	if deps.Renderer == nil {
		deps.Renderer = JSONRenderer{}
	}

	s := &Server{
		deps:     deps,
		app:      echo.New(),
		sessions: newSessionManager(deps.Conf),
		metrics:  newMetrics("shule"),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.deps.Renderer, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.BodyLimit(conf.Uploads.MaxSize))
	s.app.Use(session.Middleware(newFlashStore(conf)))
	s.app.Use(s.sessions.middleware)

	s.app.GET("/health", s.health)
	s.app.GET("/metrics", s.metrics.handler())

	p := pages{renderer: s.deps.Renderer, translator: s.deps.Translator}
	svc := s.deps

	registerAuthAPI(s.app, authApi{
		pages:      p,
		validate:   svc.Validate,
		sessions:   s.sessions,
		metrics:    s.metrics,
		accountSvc: svc.AccountSvc,
		courseSvc:  svc.CourseSvc,
	})
	registerMediaAPI(s.app, svc.Blobs)
	registerStudentAPI(s.app, requireRole(account.RoleStudent, svc.AccountSvc), studentApi{
		pages:         p,
		validate:      svc.Validate,
		metrics:       s.metrics,
		accountSvc:    svc.AccountSvc,
		courseSvc:     svc.CourseSvc,
		classroomSvc:  svc.ClassroomSvc,
		materialSvc:   svc.MaterialSvc,
		attendanceSvc: svc.AttendanceSvc,
	})
	registerTeacherAPI(s.app, requireRole(account.RoleTeacher, svc.AccountSvc), teacherApi{
		pages:         p,
		validate:      svc.Validate,
		metrics:       s.metrics,
		accountSvc:    svc.AccountSvc,
		courseSvc:     svc.CourseSvc,
		classroomSvc:  svc.ClassroomSvc,
		materialSvc:   svc.MaterialSvc,
		attendanceSvc: svc.AttendanceSvc,
	})
	registerParentAPI(s.app, requireRole(account.RoleParent, svc.AccountSvc), parentApi{
		pages:         p,
		validate:      svc.Validate,
		accountSvc:    svc.AccountSvc,
		materialSvc:   svc.MaterialSvc,
		attendanceSvc: svc.AttendanceSvc,
	})
	registerAdminAPI(s.app, adminAuth(conf), adminApi{
		pages:      p,
		accountSvc: svc.AccountSvc,
		courseSvc:  svc.CourseSvc,
	})
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors receives the error that stopped the server, if any.
func (s *Server) Errors() <-chan error { return s.errors }

// ShutdownSignal receives SIGINT, SIGTERM or a shutdown requested by a handler.
func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) health(ctx echo.Context) error {
	status := http.StatusOK
	data := echo.Map{"status": "ok", "build": s.deps.Conf.Build}
	if s.deps.DB != nil {
		if err := s.deps.DB.PingContext(ctx.Request().Context()); err != nil {
			status = http.StatusServiceUnavailable
			data["status"] = "db not ready"
		}
	}
	return ctx.JSON(status, data)
}
