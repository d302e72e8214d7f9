package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/service"
)

type Handler struct {
	svc *service.MatchSvc
}

func NewHandler(svc *service.MatchSvc) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	m := r.Group("/matches")
	{
		m.POST("/preferences", h.upsertPreference)
		m.GET("/preferences/:user_id", h.getPreference)
		m.PUT("/preferences/:user_id", h.updatePreference)
		m.POST("/find", h.find)
		m.POST("/approve", h.approve)
		m.GET("/user/:user_id", h.userMatches)
		m.GET("/queue/status/:user_id", h.queueStatus)
		m.GET("/queue/available/:gender", h.availability)
		m.DELETE("/queue/:user_id", h.leaveQueue)
		m.GET("/:match_id", h.getMatch)
	}
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotInQueue):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrAlreadyMatched), errors.Is(err, service.ErrInvalidState):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func (h *Handler) upsertPreference(c *gin.Context) {
	var in domain.UserPreference
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	p, err := h.svc.UpsertPreference(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) getPreference(c *gin.Context) {
	p, err := h.svc.Preference(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) updatePreference(c *gin.Context) {
	if _, err := h.svc.Preference(c.Request.Context(), c.Param("user_id")); err != nil {
		fail(c, err)
		return
	}
	var in domain.UserPreference
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	in.UserID = c.Param("user_id")
	p, err := h.svc.UpsertPreference(c.Request.Context(), &in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) find(c *gin.Context) {
	var in struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	m, err := h.svc.Find(c.Request.Context(), in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) approve(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}
	var in struct {
		MatchID  string `json:"match_id" binding:"required"`
		Approved *bool  `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	m, err := h.svc.Approve(c.Request.Context(), in.MatchID, userID, *in.Approved)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) userMatches(c *gin.Context) {
	list, err := h.svc.MatchesForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getMatch(c *gin.Context) {
	m, err := h.svc.Match(c.Request.Context(), c.Param("match_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) queueStatus(c *gin.Context) {
	st, err := h.svc.QueueStatus(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) availability(c *gin.Context) {
	a, err := h.svc.Availability(c.Request.Context(), c.Param("gender"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) leaveQueue(c *gin.Context) {
	if err := h.svc.LeaveQueue(c.Request.Context(), c.Param("user_id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Removed from queue"})
}
