package router

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/connectday/booking-api/internal/handler"
	"github.com/connectday/booking-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS      float64
	RateLimitBurst    int
	CORS              middleware.CORSConfig
	DirectoryCacheTTL time.Duration
	MetricsPrefix     string
}

type Router struct {
	engine        *gin.Engine
	slotH         Handler
	appointmentH  Handler
	partnerH      Handler
	entrepreneurH Handler
	eventsH       Handler
	h             *handler.Handler
	config        Config
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	slotH Handler,
	appointmentH Handler,
	partnerH Handler,
	entrepreneurH Handler,
	eventsH Handler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	RegisterValidators()

	r := &Router{
		engine:        engine,
		slotH:         slotH,
		appointmentH:  appointmentH,
		partnerH:      partnerH,
		entrepreneurH: entrepreneurH,
		eventsH:       eventsH,
		h:             h,
		config:        config,
		metrics:       initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORS),
	)

	if config.RateLimitRPS > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   config.RateLimitRPS,
			Burst: config.RateLimitBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	r.setupHealthCheck(root)

	r.slotH.RegisterRoutes(root)
	r.appointmentH.RegisterRoutes(root)
	r.eventsH.RegisterRoutes(root)

	// The identity directories are immutable after seeding; serve them from
	// a short-lived response cache.
	ttl := r.config.DirectoryCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	directory := r.engine.Group("", middleware.NewResponseCache(ttl, 2*ttl).Cache())
	r.partnerH.RegisterRoutes(directory)
	r.entrepreneurH.RegisterRoutes(directory)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	rg.GET("/metrics", r.h.MetricsHandler)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// RegisterValidators installs the hhmm rule used by slot and appointment
// requests. Only the HH:MM format is checked here; the 15-minute booking
// grid is a presentation concern.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmmPattern.MatchString(fl.Field().String())
		})
	}
}

func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "booking_api"
	}
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
