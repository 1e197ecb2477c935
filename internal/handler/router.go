package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/service"
	"github.com/noah-isme/attendance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/attendance-api/pkg/middleware/requestid"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	APIPrefix      string
	FrontendDir    string
	AllowedOrigins []string
	TrustedProxies []string
	EnableDocs     bool

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type authAPI interface {
	authService
	middleware.Authenticator
}

// RouterDeps are the collaborators behind the routes. Metrics and Limiter
// may be nil.
type RouterDeps struct {
	Auth       authAPI
	Attendance attendanceService
	Export     exportService
	Students   studentService
	Metrics    *service.MetricsService
	DB         Pinger
	Limiter    middleware.Limiter
	Logger     *zap.Logger
}

// NewRouter builds the engine with every route and its access rules.
func NewRouter(cfg RouterConfig, deps RouterDeps) *gin.Engine {
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logr.Warn("invalid trusted proxies, using connection address", zap.Strings("proxies", cfg.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	authHandler := NewAuthHandler(deps.Auth)
	attendanceHandler := NewAttendanceHandler(deps.Attendance, deps.Export)
	studentHandler := NewStudentHandler(deps.Students)
	metricsHandler := NewMetricsHandler(deps.Metrics, deps.DB)
	frontendHandler := NewFrontendHandler(cfg.FrontendDir, cfg.APIPrefix)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if deps.Metrics != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limit := func(scope string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Limiter, middleware.RateLimitConfig{
			Scope:     scope,
			Requests:  cfg.RateLimitRequests,
			Window:    cfg.RateLimitWindow,
			OnLimited: deps.Metrics.RecordRateLimited,
		}, logr)
	}
	requireAuth := middleware.JWT(deps.Auth)
	teachers := middleware.RequireRoles(models.RoleTeacher)
	students := middleware.RequireRoles(models.RoleStudent)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", limit("register"), authHandler.Register)
	auth.POST("/login", limit("login"), authHandler.Login)
	auth.GET("/me", requireAuth, authHandler.Me)

	attendance := api.Group("/attendance", requireAuth)
	attendance.POST("/mark", teachers, attendanceHandler.Mark)
	attendance.GET("/records", teachers, attendanceHandler.Records)
	attendance.GET("/records/export", teachers, attendanceHandler.Export)
	attendance.GET("/my-attendance", students, attendanceHandler.MyAttendance)
	attendance.GET("/statistics", attendanceHandler.Statistics)
	attendance.GET("/students", teachers, studentHandler.List)

	r.NoRoute(frontendHandler.NoRoute)
	return r
}
