package api

import (
	"capm/internal/app"
	"capm/internal/domain"
	"capm/internal/logger"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	CapmHandler app.CapmHandler
	// used when a request names no benchmark
	DefaultBenchmark string
	Logger           *zap.SugaredLogger
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to capm"})
	})
	router.POST("/capm", m.capm)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

func (m ApiHandler) logger() *zap.SugaredLogger {
	if m.Logger == nil {
		return zap.S()
	}
	return m.Logger
}

// statusForError maps error kinds onto http status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDataUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	case domain.IsCoreError(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusForError(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	logger.FromContext(c.Request.Context()).Errorw("request failed", "error", err.Error(), "status", code)
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
		"kind":  domain.ErrorKind(err),
	})
}

// logRequestMiddleware attaches a request scoped logger and stage
// profile, then logs how the request went
func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	requestID := uuid.New()
	log := m.logger().With("requestID", requestID.String(), "route", c.Request.URL.Path)

	profile, endProfile := domain.NewProfile()
	ctx := logger.NewContext(c.Request.Context(), log)
	ctx = domain.NewCtxWithProfile(ctx, profile)
	c.Request = c.Request.WithContext(ctx)

	start := time.Now().UTC()
	c.Next()
	endProfile()

	spans, err := profile.ToJsonBytes()
	if err != nil {
		log.Warnw("failed to marshal profile", "error", err.Error())
	}
	log.Infow(
		"handled request",
		"method", c.Request.Method,
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"clientIP", c.ClientIP(),
		"spans", string(spans),
	)
}
