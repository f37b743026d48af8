package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlibelula/movie-api/internal/response"
	"github.com/mrlibelula/movie-api/internal/users"
	"github.com/mrlibelula/movie-api/internal/validation"
)

type loginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type Handler struct {
	users  *users.Repository
	tokens *TokenManager
}

func NewHandler(repo *users.Repository, tokens *TokenManager) *Handler {
	return &Handler{users: repo, tokens: tokens}
}

func (h *Handler) Login(c *gin.Context) {
	var dto loginDTO
	if err := validation.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), dto.Email, dto.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	tok, err := h.tokens.GenerateToken(u)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": tok,
		"user":  users.ToResponse(u),
	})
}

func (h *Handler) Me(c *gin.Context) {
	p, ok := MustPrincipal(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":    p.UserID,
		"name":  p.Name,
		"email": p.Email,
	})
}
