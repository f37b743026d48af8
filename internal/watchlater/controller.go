package watchlater

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlibelula/movie-api/internal/auth"
	"github.com/mrlibelula/movie-api/internal/movies"
	"github.com/mrlibelula/movie-api/internal/response"
)

type Handler struct {
	manager *Manager
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) Add(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, err := movies.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	msg, err := h.manager.Add(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, msg)
}

func (h *Handler) Remove(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}
	id, err := movies.ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	msg, err := h.manager.Remove(c.Request.Context(), p, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, msg)
}

func (h *Handler) List(c *gin.Context) {
	p, ok := auth.MustPrincipal(c)
	if !ok {
		return
	}

	list, err := h.manager.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Watch later list retrieved successfully.",
		"data": gin.H{
			"user": gin.H{
				"id":    p.UserID,
				"name":  p.Name,
				"email": p.Email,
			},
			"watch_later": list,
		},
	})
}
