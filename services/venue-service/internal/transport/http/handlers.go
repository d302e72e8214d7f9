package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/services/venue-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/venue-service/internal/repository"
)

// Venue CRUD is thin enough that the handler talks to the repository
// directly.
type Handler struct {
	repo *repository.VenueRepo
}

func NewHandler(repo *repository.VenueRepo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v := r.Group("/venues")
	{
		// GET browsing is public at the gateway; writes require auth there
		v.GET("", h.list)
		v.GET("/:venue_id", h.get)
		v.POST("", h.create)
		v.PUT("/:venue_id", h.update)
		v.DELETE("/:venue_id", h.remove)
	}
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.repo.List(c.Request.Context(), c.Query("city"), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.repo.ByID(c.Request.Context(), c.Param("venue_id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Venue not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) create(c *gin.Context) {
	var in domain.Venue
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if in.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "name is required"})
		return
	}
	if err := h.repo.Create(c.Request.Context(), &in); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, in)
}

func (h *Handler) update(c *gin.Context) {
	if _, err := h.repo.ByID(c.Request.Context(), c.Param("venue_id")); errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Venue not found"})
		return
	}
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	delete(in, "id")
	v, err := h.repo.Update(c.Request.Context(), c.Param("venue_id"), in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) remove(c *gin.Context) {
	ok, err := h.repo.Delete(c.Request.Context(), c.Param("venue_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Venue not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "Venue deleted"})
}
