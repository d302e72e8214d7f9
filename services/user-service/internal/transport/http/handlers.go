package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/satyampathakk/BOOKADATE/pkg/auth"
	"github.com/satyampathakk/BOOKADATE/services/user-service/internal/service"
)

type Handler struct {
	svc           *service.UserSvc
	adminEmail    string
	adminPassword string
}

func NewHandler(svc *service.UserSvc, adminEmail, adminPassword string) *Handler {
	return &Handler{svc: svc, adminEmail: adminEmail, adminPassword: adminPassword}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	a := r.Group("/auth")
	{
		a.POST("/signup", h.signup)
		a.POST("/login", h.login)
		a.POST("/verify-token", h.verifyToken)
	}
	u := r.Group("/users")
	{
		u.GET("/me", h.me)
		u.PUT("/me", h.updateMe)
		u.GET("/:user_id", h.getUser)
	}
	// admin carries its credentials in the request body, not a token
	r.POST("/admin/users", h.adminListUsers)
}

func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrEmailTaken):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"detail": err.Error()})
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(header, "Bearer "), true
}

// claimsFromRequest resolves the caller's identity or writes the 401 itself.
func claimsFromRequest(c *gin.Context) (*auth.Claims, bool) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authorization required"})
		return nil, false
	}
	claims, err := auth.ParseValidate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
		return nil, false
	}
	return claims, true
}

func (h *Handler) signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	u, token, err := h.svc.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "access_token": token, "token_type": "bearer"})
}

func (h *Handler) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "access_token": token, "token_type": "bearer"})
}

// verifyToken is the gateway's identity check; the response shape is part
// of the inter-service contract.
func (h *Handler) verifyToken(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authorization required"})
		return
	}
	claims, err := auth.ParseValidate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":     claims.Sub,
		"email":       claims.Email,
		"token_valid": true,
	})
}

func (h *Handler) me(c *gin.Context) {
	claims, ok := claimsFromRequest(c)
	if !ok {
		return
	}
	u, err := h.svc.GetByID(c.Request.Context(), claims.Sub)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) updateMe(c *gin.Context) {
	claims, ok := claimsFromRequest(c)
	if !ok {
		return
	}
	var in struct {
		Name string `json:"name"`
		Bio  string `json:"bio"`
		Age  int    `json:"age"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	u, err := h.svc.Update(c.Request.Context(), claims.Sub, in.Name, in.Bio, in.Age)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.svc.GetByID(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) adminListUsers(c *gin.Context) {
	var in struct {
		AdminEmail    string `json:"admin_email" binding:"required"`
		AdminPassword string `json:"admin_password" binding:"required"`
		Page          int    `json:"page"`
		Size          int    `json:"size"`
		Query         string `json:"query"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if in.AdminEmail != h.adminEmail || in.AdminPassword != h.adminPassword {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Invalid admin credentials"})
		return
	}
	users, total, err := h.svc.List(c.Request.Context(), in.Page, in.Size, in.Query)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total})
}
