package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlibelula/movie-api/internal/apperr"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/movies/1", nil)

	Error(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorValidation(t *testing.T) {
	w, body := render(t, apperr.FieldError("title", "The title field is required."))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "The given data was invalid.", body["message"])
	assert.Equal(t, map[string]any{"title": []any{"The title field is required."}}, body["errors"])
}

func TestErrorNotFound(t *testing.T) {
	w, body := render(t, fmt.Errorf("get movie: %w", apperr.ResourceNotFound()))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Resource not found", body["message"])
	assert.Equal(t, "The requested resource does not exist.", body["error"])
}

func TestErrorConflictIs409(t *testing.T) {
	w, body := render(t, apperr.Conflict(`The movie "Heat" is already in your watch later list.`, "duplicate"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, body["message"], "Heat")
}

func TestErrorUnauthorized(t *testing.T) {
	w, body := render(t, apperr.Unauthorized("No token provided"))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", body["message"])
}

func TestErrorStorageDoesNotLeak(t *testing.T) {
	for _, err := range []error{
		apperr.Storage("insert movie", errors.New("pq: relation \"movies\" does not exist")),
		errors.New("something unexpected at main.go:42"),
	} {
		w, body := render(t, err)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "An error occurred", body["message"])
		assert.Equal(t, "Internal server error", body["error"])
		assert.NotContains(t, w.Body.String(), "relation")
		assert.NotContains(t, w.Body.String(), "main.go")
	}
}
