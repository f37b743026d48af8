package movies

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlibelula/movie-api/internal/response"
	"github.com/mrlibelula/movie-api/internal/validation"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List returns the whole catalog ordered by id.
func (h *Handler) List(c *gin.Context) {
	movies, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]MovieResponse, 0, len(movies))
	for i := range movies {
		out = append(out, ToResponse(&movies[i]))
	}
	c.JSON(http.StatusOK, gin.H{"movies": out})
}

func (h *Handler) Create(c *gin.Context) {
	var in CreateMovieInput
	if err := validation.BindJSON(c, &in); err != nil {
		response.Error(c, h.repo.WithGenreCheck(c.Request.Context(), err, in.GenreID))
		return
	}

	movie, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToResponse(movie))
}

// Show accepts either the numeric id or the slug.
func (h *Handler) Show(c *gin.Context) {
	movie, err := h.repo.GetByIdentifier(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ToResponse(movie))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	var in UpdateMovieInput
	if err := validation.BindJSON(c, &in); err != nil {
		var genreID uint
		if in.GenreID != nil {
			genreID = *in.GenreID
		}
		response.Error(c, h.repo.WithGenreCheck(c.Request.Context(), err, genreID))
		return
	}

	movie, err := h.repo.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movie": ToResponse(movie)})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := ParseID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Movie successfully deleted",
		"data":    gin.H{"deleted": deleted},
	})
}

func (h *Handler) ListGenres(c *gin.Context) {
	genres, err := h.repo.ListGenres(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (h *Handler) CreateGenre(c *gin.Context) {
	var in CreateGenreInput
	if err := validation.BindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	genre, err := h.repo.CreateGenre(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, genre)
}
