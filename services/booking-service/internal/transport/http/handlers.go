package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/service"
)

type Handler struct {
	svc *service.BookingSvc
}

func NewHandler(svc *service.BookingSvc) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	b := r.Group("/bookings")
	{
		b.POST("/create", h.create)
		b.POST("/propose-venue", h.proposeVenue)
		b.POST("/approve-venue", h.approveVenue)
		b.POST("/reject-venue", h.rejectVenue)
		b.POST("/propose-time", h.proposeTime)
		b.POST("/approve-time", h.approveTime)
		b.POST("/reject-time", h.rejectTime)
		b.POST("/confirm", h.confirm)
		b.POST("/cancel", h.cancel)
		b.POST("/complete/:booking_id", h.complete)
		b.GET("/user/:user_id", h.userBookings)
		b.GET("/:booking_id", h.getBooking)
	}
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrAlreadyCancelled),
		errors.Is(err, service.ErrNothingToApprove):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

// actionReq identifies the booking and the acting party; most mutation
// endpoints need nothing else.
type actionReq struct {
	BookingID string `json:"booking_id" binding:"required"`
	UserID    string `json:"user_id" binding:"required"`
}

func bindAction(c *gin.Context) (actionReq, bool) {
	var in actionReq
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return in, false
	}
	return in, true
}

func (h *Handler) create(c *gin.Context) {
	var in struct {
		MatchID string `json:"match_id" binding:"required"`
		User1ID string `json:"user_1_id" binding:"required"`
		User2ID string `json:"user_2_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	b, err := h.svc.Create(c.Request.Context(), in.MatchID, in.User1ID, in.User2ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *Handler) proposeVenue(c *gin.Context) {
	var in struct {
		BookingID string `json:"booking_id" binding:"required"`
		UserID    string `json:"user_id" binding:"required"`
		VenueID   string `json:"venue_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	b, err := h.svc.ProposeVenue(c.Request.Context(), in.BookingID, in.UserID, in.VenueID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) approveVenue(c *gin.Context) {
	in, ok := bindAction(c)
	if !ok {
		return
	}
	b, err := h.svc.ApproveVenue(c.Request.Context(), in.BookingID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) rejectVenue(c *gin.Context) {
	in, ok := bindAction(c)
	if !ok {
		return
	}
	b, err := h.svc.RejectVenue(c.Request.Context(), in.BookingID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) proposeTime(c *gin.Context) {
	var in struct {
		BookingID   string `json:"booking_id" binding:"required"`
		UserID      string `json:"user_id" binding:"required"`
		BookingDate string `json:"booking_date" binding:"required"`
		BookingTime string `json:"booking_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	b, err := h.svc.ProposeTime(c.Request.Context(), in.BookingID, in.UserID, in.BookingDate, in.BookingTime)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) approveTime(c *gin.Context) {
	in, ok := bindAction(c)
	if !ok {
		return
	}
	b, err := h.svc.ApproveTime(c.Request.Context(), in.BookingID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) rejectTime(c *gin.Context) {
	in, ok := bindAction(c)
	if !ok {
		return
	}
	b, err := h.svc.RejectTime(c.Request.Context(), in.BookingID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) confirm(c *gin.Context) {
	in, ok := bindAction(c)
	if !ok {
		return
	}
	b, err := h.svc.Confirm(c.Request.Context(), in.BookingID, in.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) cancel(c *gin.Context) {
	var in struct {
		BookingID string `json:"booking_id" binding:"required"`
		UserID    string `json:"user_id" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	b, err := h.svc.Cancel(c.Request.Context(), in.BookingID, in.UserID, in.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) complete(c *gin.Context) {
	b, err := h.svc.Complete(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) userBookings(c *gin.Context) {
	list, err := h.svc.ForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) getBooking(c *gin.Context) {
	b, err := h.svc.Booking(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
