package http

import (
	"strings"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthHandler struct {
	users  ports.UserRepository
	tokens services.TokenService
}

func NewAuthHandler(users ports.UserRepository, tokens services.TokenService) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
	}
}

func (h *AuthHandler) SetupRoutes(router *gin.Engine) {
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.Credentials
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	user, password, err := h.users.GetByUsername(c.Request.Context(), req.Username)
	if err != nil || password != req.Password {
		respondFail(c, 401, "wrong username or password")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		respondFail(c, 500, "failed to generate token")
		return
	}

	respondOK(c, domain.AuthPayload{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
	})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.Registration
	if err := c.BindJSON(&req); err != nil {
		respondFail(c, 400, "invalid request format")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		respondFail(c, 400, "username and password required")
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		role = domain.RoleUser
	}

	user := &domain.User{
		ID:       domain.UserID(uuid.New().String()),
		Username: req.Username,
		Role:     role,
	}
	if err := h.users.Create(c.Request.Context(), user, req.Password); err != nil {
		if err == domain.ErrUserExists {
			respondFail(c, 409, "username already taken")
			return
		}
		respondFail(c, 500, "failed to create user")
		return
	}

	respondOK(c, nil)
}
