package controllers

import (
	"lifeline/websocket"

	"github.com/gin-gonic/gin"
)

type WebSocketController struct {
	hub *websocket.Hub
}

func NewWebSocketController(hub *websocket.Hub) *WebSocketController {
	return &WebSocketController{hub: hub}
}

// HandleWS upgrades the request to the dashboard socket.
func (wc *WebSocketController) HandleWS(c *gin.Context) {
	websocket.ServeWS(wc.hub, c.Writer, c.Request)
}
