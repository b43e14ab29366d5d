package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/danglnh07/notify-relay/service/worker"
	"github.com/danglnh07/notify-relay/util"
	"github.com/gin-gonic/gin"
)

// Server struct, holds the router, dependencies, system config and logger
type Server struct {
	// API router
	router *gin.Engine

	// Dependencies
	hub *notify.Hub

	// Nil when no Redis is configured, scheduled notifications are then refused
	distributor worker.TaskDistributor

	// Server's config and logger
	config *util.Config
	logger *slog.Logger
}

// Constructor method for server struct
func NewServer(
	config *util.Config,
	hub *notify.Hub,
	distributor worker.TaskDistributor,
	logger *slog.Logger,
) *Server {
	server := &Server{
		router:      gin.New(),
		hub:         hub,
		distributor: distributor,
		config:      config,
		logger:      logger,
	}
	server.RegisterHandler()
	return server
}

// Helper method to register handler for API
func (server *Server) RegisterHandler() {
	server.router.Use(gin.Recovery(), server.LoggerMiddleware(), server.CORSMiddleware())

	// Websocket endpoint, clients connect to the bare host by default
	server.router.GET("/", server.ServeWS)
	server.router.GET("/ws", server.ServeWS)

	// API routes
	api := server.router.Group("/api")
	{
		api.GET("/health", server.Health)
		api.GET("/connect-qr", server.ConnectQR)

		// Notification endpoints
		notification := api.Group("/notify")
		{
			notification.POST("", server.Notify)
			notification.POST("/schedule", server.ScheduleNotify)
		}
	}
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start server, it blocks until ctx is cancelled and in-flight requests finished
func (server *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", server.config.Port),
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		server.logger.Info("Server is running", "port", server.config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Hijacked websocket connections are not tracked here, the hub closes them
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type HealthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (server *Server) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, HealthResponse{Status: "ok", Clients: server.hub.Count()})
}

// Error response struct
type ErrorResponse struct {
	Message string `json:"error"`
}
