package httptransport

import (
	"log/slog"

	"github.com/ErlanBelekov/auth-service/internal/token"
	"github.com/ErlanBelekov/auth-service/internal/tracing"
	"github.com/ErlanBelekov/auth-service/internal/transport/http/handler"
	"github.com/ErlanBelekov/auth-service/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, issuer *token.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	auth := r.Group("/api/auth")
	auth.POST("/registration", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", middleware.Auth(issuer), authHandler.Me)

	return r
}
