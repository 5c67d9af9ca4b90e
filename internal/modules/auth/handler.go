package auth

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gratitree/core/internal/middleware"
	"github.com/gratitree/core/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the auth routes on the API group.
func (h *Handler) Register(r *gin.RouterGroup) {
	g := r.Group("/auth")
	{
		g.POST("/register", h.register)
		g.POST("/login", h.login)
		g.POST("/logout", middleware.Auth(), h.logout)
		g.GET("/me", middleware.Auth(), h.me)
		g.POST("/refresh", middleware.Auth(), h.refresh)
	}
}

func (h *Handler) register(c *gin.Context) {
	var dto RegisterDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username (min 3) and password (min 6) are required")
		return
	}

	token, u, err := h.service.Register(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, sessionResponse{Token: token, User: toResponse(u)})
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "username and password are required")
		return
	}

	token, u, err := h.service.Login(c.Request.Context(), &dto)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.ForbiddenMsg(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, sessionResponse{Token: token, User: toResponse(u)})
}

// logout is stateless: the client discards its token.
func (h *Handler) logout(c *gin.Context) {
	response.NoContent(c)
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.service.GetByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, toResponse(u))
}

// refresh re-issues the token so claim changes (admin grants in particular)
// reach the client without a fresh login.
func (h *Handler) refresh(c *gin.Context) {
	token, u, err := h.service.Refresh(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, sessionResponse{Token: token, User: toResponse(u)})
}
