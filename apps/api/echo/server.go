package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/time/rate"

	"github.com/ikedalab/classinfo/core"
	"github.com/ikedalab/classinfo/core/announcement"
	"github.com/ikedalab/classinfo/core/schedule"
	"github.com/ikedalab/classinfo/core/subscriber"
	"github.com/ikedalab/classinfo/core/task"
	chatbotsvc "github.com/ikedalab/classinfo/services/chatbot"
)

type (
	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		ScheduleSvc     *schedule.Service
		TaskSvc         *task.Service
		AnnouncementSvc *announcement.Service
		SubscriberSvc   *subscriber.Service
		ChatClient      *chatbotsvc.Client
		Validate        *validator.Validate
		Translator      ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps         ServerDeps
		app          *echo.Echo
		errChan      chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:         deps,
		app:          echo.New(),
		errChan:      make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	if conf.Server.RateLimit > 0 {
		s.app.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(conf.Server.RateLimit),
				Burst: conf.Server.RateBurst,
			},
		)))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/health", s.health)

	v1 := s.app.Group("/v1")
	registerScheduleAPI(v1, s.deps)
	registerTaskAPI(v1, s.deps)
	registerAnnouncementAPI(v1, s.deps)
	registerSubscriberAPI(v1, s.deps)
	registerChatAPI(v1, s.deps)
}

func (s *server) Start() {
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.errChan <- s.app.Start(s.deps.Conf.Server.APIAddr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errChan
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownChan
}

func (s *server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to " + s.deps.Conf.AppName + " API!",
		"endpoints": echo.Map{
			"schedules":     "/v1/schedules",
			"tasks":         "/v1/tasks",
			"announcements": "/v1/announcements",
			"subscribers":   "/v1/subscribers",
			"chat":          "/v1/chat",
			"health":        "/health",
		},
	})
}

func (s *server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   s.deps.Conf.AppName + " API is running",
		"timestamp": time.Now().In(s.deps.Conf.Timezone).Format(time.RFC3339),
		"version":   s.deps.Conf.Build,
	})
}
