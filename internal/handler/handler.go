package handler

import (
	"log/slog"
	"net/http"

	"user_service/internal/auth"
	"user_service/internal/logger"
	"user_service/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	serviceLayer service.Service
	tokens       *auth.TokenIssuer
	log          *slog.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: errMessage})
}

func NewHandler(srvc service.Service, tokens *auth.TokenIssuer, lgr *slog.Logger) *Handler {
	return &Handler{
		serviceLayer: srvc,
		tokens:       tokens,
		log:          lgr,
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(logger.Middleware(h.log), gin.CustomRecovery(h.recoverPanic))

	router.GET("/livez", h.Livez)
	router.GET("/readyz", h.Readyz)

	router.POST("/user", h.CreateUser)
	router.GET("/login", h.Login)
	router.POST("/login", h.Login)

	authed := router.Group("/")
	authed.Use(AuthMiddleware(h.tokens))
	{
		authed.GET("/user", h.GetUser)
		authed.DELETE("/user", h.DeleteUser)
	}

	return router
}

// opLogger returns the request-scoped logger tagged with the operation name.
func (h *Handler) opLogger(c *gin.Context, op string) *slog.Logger {
	return logger.FromContext(c.Request.Context()).With(slog.String("op", op))
}

// recoverPanic ends the request that panicked with a bare 500; other requests
// keep being served.
func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.opLogger(c, "handler.recoverPanic").Error("request aborted", slog.Any("panic", recovered))

	newErrorResponse(c, http.StatusInternalServerError, "internal error")
}
