package handler

import (
	"context"
	"net/http"
	"time"

	"libraryhub/internal/http-api/dto"
	"libraryhub/internal/http-api/response"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.POST("/signup", h.SignUp)
	rg.POST("/login", h.Login)
	rg.GET("/profile", authMW, h.Profile)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req dto.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.SignUp(ctx, req.Email, req.FirstName, req.LastName, req.Password, req.Role)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusCreated, "User created successfully", dto.FromUserModel(*user))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	accessToken, user, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Login successful", dto.LoginResponse{
		AccessToken: accessToken,
		User:        dto.FromUserModel(*user),
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := h.authService.GetProfile(ctx, userID.(string))
	if err != nil {
		status, msg := statusForError(err)
		response.Error(c, status, msg)
		return
	}

	response.Success(c, http.StatusOK, "Profile retrieved successfully", dto.FromUserModel(*user))
}
