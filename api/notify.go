package api

import (
	"net/http"
	"time"

	"github.com/danglnh07/notify-relay/service/notify"
	"github.com/danglnh07/notify-relay/service/worker"
	"github.com/gin-gonic/gin"
)

type NotifyRequest struct {
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

type NotifyResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Broadcast the notification to every connected client. Success is reported
// whether or not anyone was connected to receive it.
func (server *Server) Notify(ctx *gin.Context) {
	// Get request body and validate
	var req NotifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		server.logger.Warn("POST /api/notify: failed to bind JSON request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body: title and message are required"})
		return
	}

	delivered := server.hub.Broadcast(notify.Notification{
		Title:   req.Title,
		Message: req.Message,
	})
	server.logger.Info("Server sent notification", "title", req.Title, "delivered", delivered)

	ctx.JSON(http.StatusOK, NotifyResponse{Success: true, Message: "Notification sent"})
}

type ScheduleNotifyRequest struct {
	Title        string `json:"title" binding:"required"`
	Message      string `json:"message" binding:"required"`
	DelaySeconds int    `json:"delay_seconds" binding:"gte=0"`
}

// Queue the notification for a broadcast after the requested delay
func (server *Server) ScheduleNotify(ctx *gin.Context) {
	if server.distributor == nil {
		ctx.JSON(http.StatusServiceUnavailable, ErrorResponse{"Scheduled notifications are not enabled"})
		return
	}

	var req ScheduleNotifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		server.logger.Warn("POST /api/notify/schedule: failed to bind JSON request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	err := worker.DistributeTaskBroadcastNotification(
		ctx,
		server.distributor,
		worker.BroadcastNotificationPayload{Title: req.Title, Message: req.Message},
		time.Duration(req.DelaySeconds)*time.Second,
	)
	if err != nil {
		server.logger.Error("POST /api/notify/schedule: failed to enqueue notification", "error", err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{"Internal server error"})
		return
	}

	ctx.JSON(http.StatusAccepted, NotifyResponse{Success: true, Message: "Notification scheduled"})
}
