package api

import (
	"net/http"

	"github.com/danglnh07/notify-relay/util"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	// Same policy as the CORS middleware: any origin may connect
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Upgrade the request and hand the connection to the hub
func (server *Server) ServeWS(ctx *gin.Context) {
	if !websocket.IsWebSocketUpgrade(ctx.Request) {
		ctx.JSON(http.StatusOK, gin.H{"message": "notification relay, connect with a websocket client"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrader has already written the error response
		server.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}

	server.hub.Connect(conn)
}

// PNG QR code of the public websocket URL, for pointing a client at this server
func (server *Server) ConnectQR(ctx *gin.Context) {
	png, err := util.GenerateQRCode(server.config.PublicWSURL, 256)
	if err != nil {
		server.logger.Error("GET /api/connect-qr: failed to generate QR code", "error", err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{"Internal server error"})
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}
