package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-portal/internal/handler"
	"github.com/jwalitptl/clinic-portal/internal/handler/admin"
	"github.com/jwalitptl/clinic-portal/internal/handler/auth"
	"github.com/jwalitptl/clinic-portal/internal/handler/doctor"
	"github.com/jwalitptl/clinic-portal/internal/handler/home"
	"github.com/jwalitptl/clinic-portal/internal/handler/patient"
	"github.com/jwalitptl/clinic-portal/internal/middleware"
	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	h        *handler.Handler
	limiter  *middleware.RateLimiter
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	config   RouterConfig

	homeH    Handler
	adminH   Handler
	doctorH  Handler
	patientH Handler
	authH    *auth.Handler
}

type RouterConfig struct {
	// Mode is the gin mode; release unless set.
	Mode string

	RateLimit    rate.Limit
	RateBurst    int
	Timeout      time.Duration
	MaxBodyBytes int64
	Security     middleware.SecurityConfig
	Cache        middleware.CacheConfig

	MetricsEnabled bool
	MetricsPath    string

	// CSRFKey is the 32 byte authentication key for form tokens. Secure
	// marks the CSRF cookie secure and enables the referer check for TLS.
	CSRFKey []byte
	Secure  bool
}

func NewRouter(
	authMW *middleware.AuthMiddleware,
	h *handler.Handler,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	config RouterConfig,
) *Router {
	if config.Mode == "" {
		config.Mode = gin.ReleaseMode
	}
	gin.SetMode(config.Mode)

	if config.Timeout <= 0 {
		config.Timeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = middleware.DefaultSizeLimitConfig().MaxBodySize
	}
	if config.Security.FrameOptions == "" {
		hsts := config.Security.HSTS
		config.Security = middleware.DefaultSecurityConfig()
		config.Security.HSTS = hsts
	}
	if config.Cache.StaticMaxAge <= 0 {
		config.Cache = middleware.DefaultCacheConfig()
	}
	if config.MetricsPath == "" {
		config.MetricsPath = "/metrics"
	}

	engine := gin.New() // Use New() instead of Default() for more control

	r := &Router{
		engine:   engine,
		auth:     authMW,
		h:        h,
		metrics:  m,
		gatherer: gatherer,
		config:   config,
		homeH:    home.NewHandler(h),
		adminH:   admin.NewHandler(h),
		doctorH:  doctor.NewHandler(h),
		patientH: patient.NewHandler(h),
		authH:    auth.NewHandler(h),
	}

	// Add core middlewares
	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(
		middleware.SecurityHeaders(config.Security),
		middleware.Cache(config.Cache),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodyBytes}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)

	if config.RateLimit > 0 {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	return r
}

func (r *Router) Setup() {
	r.engine.StaticFS("/static", http.FS(render.Static()))

	r.setupHealthCheck(r.engine.Group(""))

	// Every page and fragment runs with the session loaded and checked.
	app := r.engine.Group("")
	app.Use(r.auth.LoadSession(), r.auth.Guard())

	r.homeH.RegisterRoutes(app)
	var limit gin.HandlerFunc
	if r.limiter != nil {
		limit = r.limiter.RateLimit()
	}
	r.authH.RegisterRoutes(app, limit)
	r.adminH.RegisterRoutes(app)
	r.doctorH.RegisterRoutes(app)
	r.patientH.RegisterRoutes(app)

	r.engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "Page not found")
	})
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	if r.config.MetricsEnabled && r.gatherer != nil {
		rg.GET(r.config.MetricsPath, gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Limiter is the login rate limiter, nil when rate limiting is off.
func (r *Router) Limiter() *middleware.RateLimiter {
	return r.limiter
}

// Handler returns the engine behind CSRF protection. Without a key the
// engine is returned as is.
func (r *Router) Handler() http.Handler {
	if len(r.config.CSRFKey) == 0 {
		return r.engine
	}
	protect := csrf.Protect(r.config.CSRFKey,
		csrf.Secure(r.config.Secure),
		csrf.Path("/"),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)(r.engine)
	if r.config.Secure {
		return protect
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		protect.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
	})
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte("Forbidden: invalid or missing CSRF token. Please reload the page and try again."))
}
