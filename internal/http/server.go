package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"projecthub/internal/auth"
	"projecthub/internal/config"
	"projecthub/internal/http/handler"
	"projecthub/internal/http/middleware"
	"projecthub/internal/rbac"
	"projecthub/pkg/metrics"
	"projecthub/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const (
	jsonKeyStatus    = "status"
	statusOK         = "ok"
	statusDegraded   = "degraded"
	requestBodyLimit = "1M"
	healthTimeout    = 2 * time.Second
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type ServerDependencies struct {
	Config  *config.Config
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
	DB      Pinger

	AuthMiddleware *auth.Middleware
	RBACMiddleware *auth.RBACMiddleware

	Auth     handler.AuthService
	Users    handler.ProfileService
	Roles    handler.RoleService
	Projects handler.ProjectService
	Tasks    handler.TaskService
	Labels   handler.LabelService
	Comments handler.CommentService
	TimeLogs handler.TimeLogService
	Activity handler.ActivityReader
	Exporter handler.ActivityExporter
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = NewErrorHandler(deps.Log)

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID middleware (first, so all logs have request ID)
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit(requestBodyLimit))
	e.Use(deps.Metrics.Middleware())

	strictRateLimiter := middleware.NewStrictRateLimiter()
	apiRateLimiter := middleware.NewAPIRateLimiter()

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users, deps.Activity)
	roleHandler := handler.NewRoleHandler(deps.Roles)
	projectHandler := handler.NewProjectHandler(deps.Projects)
	activityHandler := handler.NewActivityHandler(deps.Activity, deps.Exporter)
	taskHandler := handler.NewTaskHandler(deps.Tasks)
	labelHandler := handler.NewLabelHandler(deps.Labels)
	commentHandler := handler.NewCommentHandler(deps.Comments)
	timeLogHandler := handler.NewTimeLogHandler(deps.TimeLogs)

	// Credential endpoints with strict rate limiting
	e.POST("/auth/register", authHandler.Register, strictRateLimiter.Middleware())
	e.POST("/auth/login", authHandler.Login, strictRateLimiter.Middleware())
	e.POST("/auth/refresh", authHandler.Refresh, strictRateLimiter.Middleware())
	e.GET("/health", healthCheck(deps.DB))
	deps.Metrics.RegisterRoute(e)
	if deps.Config.Server.ProfilingEnabled {
		profiling.RegisterRoutes(e)
	}

	api := e.Group("/api")
	api.Use(deps.AuthMiddleware.RequireJWT())
	api.Use(apiRateLimiter.Middleware())

	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/change-password", authHandler.ChangePassword)

	api.GET("/users/me", userHandler.Me)
	api.PUT("/users/me", userHandler.UpdateMe)
	api.DELETE("/users/me", userHandler.DeleteMe)
	api.GET("/users/me/activity", userHandler.MyActivity)

	api.GET("/roles", roleHandler.List)
	api.POST("/roles", roleHandler.Create)
	api.GET("/roles/:id", roleHandler.Get)
	api.PUT("/roles/:id", roleHandler.Update)
	api.DELETE("/roles/:id", roleHandler.Delete)

	// Project-scoped services check permissions themselves; the activity
	// routes have no service of their own and are gated here.
	api.GET("/projects", projectHandler.ListProjects)
	api.POST("/projects", projectHandler.CreateProject)
	api.GET("/projects/:project_id", projectHandler.GetProject)
	api.PUT("/projects/:project_id", projectHandler.UpdateProject)
	api.DELETE("/projects/:project_id", projectHandler.DeleteProject)

	api.GET("/projects/:project_id/members", projectHandler.ListMembers)
	api.POST("/projects/:project_id/members", projectHandler.AddMember)
	api.PUT("/projects/:project_id/members/:user_id", projectHandler.UpdateMemberRole)
	api.DELETE("/projects/:project_id/members/:user_id", projectHandler.RemoveMember)

	api.GET("/projects/:project_id/activity", activityHandler.List, deps.RBACMiddleware.RequireProjectRead())
	api.GET("/projects/:project_id/activity/recent", activityHandler.Recent, deps.RBACMiddleware.RequireProjectRead())
	api.POST("/projects/:project_id/activity/export", activityHandler.Export, deps.RBACMiddleware.RequireProjectPermission(rbac.ResourceReport, rbac.ActionExport))

	api.GET("/projects/:project_id/tasks", taskHandler.List)
	api.POST("/projects/:project_id/tasks", taskHandler.Create)
	api.GET("/projects/:project_id/tasks/:task_id", taskHandler.Get)
	api.PUT("/projects/:project_id/tasks/:task_id", taskHandler.Update)
	api.DELETE("/projects/:project_id/tasks/:task_id", taskHandler.Delete)
	api.POST("/projects/:project_id/tasks/:task_id/assignees", taskHandler.Assign)
	api.DELETE("/projects/:project_id/tasks/:task_id/assignees/:user_id", taskHandler.Unassign)

	api.GET("/projects/:project_id/labels", labelHandler.List)
	api.POST("/projects/:project_id/labels", labelHandler.Create)
	api.PUT("/projects/:project_id/labels/:label_id", labelHandler.Update)
	api.DELETE("/projects/:project_id/labels/:label_id", labelHandler.Delete)
	api.GET("/projects/:project_id/tasks/:task_id/labels", labelHandler.ListForTask)
	api.POST("/projects/:project_id/tasks/:task_id/labels", labelHandler.Attach)
	api.DELETE("/projects/:project_id/tasks/:task_id/labels/:label_id", labelHandler.Detach)

	api.GET("/projects/:project_id/tasks/:task_id/comments", commentHandler.List)
	api.POST("/projects/:project_id/tasks/:task_id/comments", commentHandler.Create)
	api.PUT("/projects/:project_id/comments/:comment_id", commentHandler.Update)
	api.DELETE("/projects/:project_id/comments/:comment_id", commentHandler.Delete)

	api.GET("/projects/:project_id/tasks/:task_id/time-logs", timeLogHandler.List)
	api.POST("/projects/:project_id/tasks/:task_id/time-logs", timeLogHandler.Create)
	api.GET("/projects/:project_id/time-logs/report", timeLogHandler.Report)
	api.PUT("/projects/:project_id/time-logs/:time_log_id", timeLogHandler.Update)
	api.DELETE("/projects/:project_id/time-logs/:time_log_id", timeLogHandler.Delete)

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func healthCheck(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				return c.JSON(stdhttp.StatusServiceUnavailable, map[string]string{
					jsonKeyStatus: statusDegraded,
				})
			}
		}
		return c.JSON(stdhttp.StatusOK, map[string]string{
			jsonKeyStatus: statusOK,
		})
	}
}
