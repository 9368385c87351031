package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gipsyblues/echoplexus/internal/config"
	"github.com/gipsyblues/echoplexus/internal/core"
)

// NewServer builds the HTTP server: health, the sandbox directory where
// render tasks write screenshots, and the chat websocket endpoint.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler)
	if cfg.Preview.SandboxDir != "" {
		router.Static("/sandbox", cfg.Preview.SandboxDir)
	}
	router.GET("/chat", gin.WrapH(NewWSHandler(hub, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
