package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/satyampathakk/BOOKADATE/services/chat-service/internal/session"
	"github.com/satyampathakk/BOOKADATE/services/chat-service/internal/ws"
)

// Routes are mounted without a /chat prefix; the gateway strips it.
type Handler struct {
	reg *session.Registry
	hub *ws.Hub
	log *logrus.Logger

	upgrader websocket.Upgrader
}

func NewHandler(reg *session.Registry, hub *ws.Hub, log *logrus.Logger) *Handler {
	return &Handler{
		reg: reg,
		hub: hub,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/match", h.createSession)
	r.GET("/sessions/:session_id", h.getSession)
	r.GET("/ws/:session_id/:user_id", h.serveWS)
}

func (h *Handler) createSession(c *gin.Context) {
	var in struct {
		User1ID         string    `json:"user1_id" binding:"required"`
		User2ID         string    `json:"user2_id" binding:"required"`
		MeetingTime     time.Time `json:"meeting_time" binding:"required"`
		DurationMinutes int       `json:"duration_minutes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if in.DurationMinutes <= 0 {
		in.DurationMinutes = 120
	}
	s := h.reg.Create(in.User1ID, in.User2ID, in.MeetingTime, in.DurationMinutes)
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "status": s.Status})
}

func (h *Handler) getSession(c *gin.Context) {
	s, err := h.reg.Get(c.Param("session_id"))
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":     s.ID,
		"user1_id":       s.User1ID,
		"user2_id":       s.User2ID,
		"start_time":     s.StartTime,
		"end_time":       s.EndTime,
		"status":         s.Status,
		"messages_count": len(s.Messages),
	})
}

func (h *Handler) serveWS(c *gin.Context) {
	sessionID := c.Param("session_id")
	userID := c.Param("user_id")

	s, err := h.reg.Get(sessionID)
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return
	}
	if !s.Party(userID) {
		c.JSON(http.StatusForbidden, gin.H{"detail": "User not part of this session"})
		return
	}
	if s.Status != session.StatusActive {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Chat session not active"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	if old := h.hub.Register(sessionID, userID, conn); old != nil {
		_ = old.Close()
	}
	defer func() {
		h.hub.Unregister(sessionID, userID, conn)
		_ = conn.Close()
		h.log.WithFields(logrus.Fields{
			"session_id": sessionID,
			"user_id":    userID,
		}).Info("websocket disconnected")
	}()

	for {
		var in struct {
			Content string `json:"content"`
			Type    string `json:"type"`
		}
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		msg, err := h.reg.Append(sessionID, userID, in.Content, in.Type)
		if err != nil {
			_ = conn.WriteJSON(gin.H{"error": "Chat session has expired"})
			return
		}
		h.hub.SendToOther(sessionID, userID, gin.H{"type": "message", "data": msg})
	}
}
