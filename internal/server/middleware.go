package server

import (
	"compress/gzip"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	apierrors "github.com/mahiraziiz/primetrade.ai/internal/domain/errors"
	"github.com/mahiraziiz/primetrade.ai/internal/domain/models"
)

const currentUserKey = "currentUser"

// requireAuth verifies the access token from the Authorization header
// or the accessToken cookie, loads the user and attaches it to the
// request context. Handlers behind it can assume currentUser is set.
func (api *TaskAPI) requireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := bearerToken(ctx)
		if tokenString == "" {
			api.respondError(ctx, apierrors.Unauthorized("missing access token"))
			return
		}

		claims, err := api.tokens.ValidateAccessToken(tokenString)
		if err != nil {
			api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrInvalidToken.Error()))
			return
		}

		user, err := api.users.GetUserByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrInvalidToken.Error()))
			return
		}

		ctx.Set(currentUserKey, user.Sanitized())
		ctx.Next()
	}
}

// requireRole gates a route on the attached user's role. Must run
// after requireAuth.
func (api *TaskAPI) requireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user := currentUser(ctx)
		if user == nil {
			api.respondError(ctx, apierrors.Unauthorized(apierrors.ErrUnauthorized.Error()))
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				ctx.Next()
				return
			}
		}

		api.respondError(ctx, apierrors.Forbidden("user does not have permission to access this resource"))
	}
}

func currentUser(ctx *gin.Context) *models.User {
	value, exists := ctx.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := ctx.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}
	return ""
}

// RequestLogger logs every request with structured fields.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		log.WithFields(log.Fields{
			"method":      ctx.Request.Method,
			"path":        ctx.Request.URL.Path,
			"status":      ctx.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   ctx.ClientIP(),
		}).Info("request completed")
	}
}

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.3, 1, 3},
		},
		[]string{"method", "route"},
	)

	inFlightRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)
)

// Metrics records request count, duration and in-flight gauge per route.
func Metrics() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		inFlightRequests.Inc()
		defer inFlightRequests.Dec()

		start := time.Now()

		ctx.Next()

		// FullPath keeps parameterized routes as one label value.
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestsTotal.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		requestDuration.WithLabelValues(ctx.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// CORS allows the configured origin with credentials, mirroring the
// headers the browser client needs.
func CORS(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", origin)
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	}
}

type gzipWriter struct {
	gin.ResponseWriter
	gw *gzip.Writer
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	return w.gw.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.gw.Write([]byte(s))
}

// GzipResponse compresses response bodies for clients that accept it.
func GzipResponse() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead {
			ctx.Next()
			return
		}
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		ctx.Header("Content-Encoding", "gzip")
		ctx.Header("Vary", "Accept-Encoding")

		gw := gzip.NewWriter(ctx.Writer)
		ctx.Writer = &gzipWriter{ResponseWriter: ctx.Writer, gw: gw}

		defer func() {
			_ = gw.Close()
		}()

		ctx.Next()
	}
}
