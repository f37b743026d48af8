package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlibelula/movie-api/internal/response"
	"github.com/mrlibelula/movie-api/internal/validation"
)

// TokenIssuer signs a bearer token for a freshly registered user.
type TokenIssuer interface {
	GenerateToken(u *User) (string, error)
}

type Handler struct {
	repo   *Repository
	tokens TokenIssuer
}

func NewHandler(repo *Repository, tokens TokenIssuer) *Handler {
	return &Handler{repo: repo, tokens: tokens}
}

func (h *Handler) Register(c *gin.Context) {
	var body RegisterInput
	if err := validation.BindJSON(c, &body); err != nil {
		response.Error(c, err)
		return
	}

	user, err := h.repo.Create(c.Request.Context(), body)
	if err != nil {
		response.Error(c, err)
		return
	}

	tok, err := h.tokens.GenerateToken(user)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":  ToResponse(user),
		"token": tok,
	})
}
