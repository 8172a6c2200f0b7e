package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/models"
	"github.com/susp3kt93/myfleet-sub000/internal/websocket"
	"github.com/susp3kt93/myfleet-sub000/pkg/utils"
)

// EventHub is the part of websocket.Hub the handler needs.
type EventHub interface {
	Upgrader() *gorilla.Upgrader
	Register(client *websocket.Client)
	Stats() websocket.ClientStats
}

// WebSocketHandler streams domain events to dashboards.
type WebSocketHandler struct {
	hub EventHub
}

func NewWebSocketHandler(hub EventHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleEvents upgrades the request and subscribes the caller to its
// company's events. Drivers only receive events that concern them.
// ?types=TaskCreated,TaskCancelled narrows the stream.
func (h *WebSocketHandler) HandleEvents(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	conn, err := h.hub.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	var filters websocket.Filters
	for _, t := range queryList(c, "types") {
		filters.Types = append(filters.Types, events.Type(t))
	}

	client := &websocket.Client{
		ID:        uuid.New().String(),
		CompanyID: actor.CompanyID.Hex(),
		UserID:    actor.UserID.Hex(),
		AllEvents: actor.IsAdmin(),
		Conn:      conn,
		Filters:   filters,
	}
	h.hub.Register(client)

	log.WithFields(log.Fields{
		"client_id":  client.ID,
		"company_id": client.CompanyID,
		"user_id":    client.UserID,
	}).Info("Event stream client connected")
}

func (h *WebSocketHandler) GetStats(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin() {
		utils.HandleServiceError(c, models.ErrPermissionDenied)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "WebSocket stats retrieved successfully", h.hub.Stats())
}
