package watchlater

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/auth"
	"github.com/mrlibelula/movie-api/internal/database"
	"github.com/mrlibelula/movie-api/internal/movies"
)

var (
	alice = auth.Principal{UserID: 1, Name: "Alice", Email: "alice@example.com"}
	bob   = auth.Principal{UserID: 2, Name: "Bob", Email: "bob@example.com"}
)

type fixture struct {
	db      *gorm.DB
	repo    *movies.Repository
	manager *Manager
	movies  []*movies.Movie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, movies.Models()...))
	require.NoError(t, db.Create(&movies.Genre{Name: "Drama"}).Error)

	log := logrus.New()
	log.SetOutput(io.Discard)

	repo := movies.NewRepository(db)
	f := &fixture{db: db, repo: repo, manager: NewManager(db, repo, log)}
	for _, title := range []string{"Heat", "Ronin", "Collateral"} {
		m, err := repo.Create(context.Background(), movies.CreateMovieInput{
			Title:       title,
			Description: title + " description",
			ReleaseDate: "2000-01-01",
			GenreID:     1,
		})
		require.NoError(t, err)
		f.movies = append(f.movies, m)
	}
	return f
}

func TestAddThenList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg, err := f.manager.Add(ctx, alice, f.movies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, `The movie "Heat" has been added to your watch later list.`, msg)

	list, err := f.manager.List(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	require.Len(t, list.Movies, 1)
	assert.Equal(t, "Heat", list.Movies[0].Title)
	assert.Equal(t, "2000-01-01", list.Movies[0].ReleaseDate)
	require.NotNil(t, list.Movies[0].Genre)
	assert.Equal(t, "Drama", list.Movies[0].Genre.Name)
}

func TestAddTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Add(ctx, alice, f.movies[0].ID)
	require.NoError(t, err)

	_, err = f.manager.Add(ctx, alice, f.movies[0].ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Contains(t, err.Error(), "Heat")

	list, err := f.manager.List(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)
}

func TestAddMissingMovie(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Add(context.Background(), alice, 99)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRemoveWithoutAdd(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.Remove(context.Background(), alice, f.movies[1].ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), `The movie "Ronin" is not in your watch later list.`)
}

func TestRemoveAfterAdd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Add(ctx, alice, f.movies[1].ID)
	require.NoError(t, err)

	msg, err := f.manager.Remove(ctx, alice, f.movies[1].ID)
	require.NoError(t, err)
	assert.Equal(t, `The movie "Ronin" has been removed from your watch later list.`, msg)

	list, err := f.manager.List(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
	assert.NotNil(t, list.Movies)

	_, err = f.manager.Remove(ctx, alice, f.movies[1].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestListsArePerUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, m := range f.movies {
		_, err := f.manager.Add(ctx, alice, m.ID)
		require.NoError(t, err)
	}
	_, err := f.manager.Add(ctx, bob, f.movies[2].ID)
	require.NoError(t, err)

	list, err := f.manager.List(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, []string{"Heat", "Ronin", "Collateral"},
		[]string{list.Movies[0].Title, list.Movies[1].Title, list.Movies[2].Title})

	list, err = f.manager.List(ctx, bob)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Collateral", list.Movies[0].Title)
}

func TestDeletedMovieLeavesLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.manager.Add(ctx, alice, f.movies[0].ID)
	require.NoError(t, err)
	_, err = f.repo.Delete(ctx, f.movies[0].ID)
	require.NoError(t, err)

	list, err := f.manager.List(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func router(f *fixture, p *auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if p != nil {
		r.Use(func(c *gin.Context) {
			auth.SetPrincipal(c, *p)
			c.Next()
		})
	}
	h := NewHandler(f.manager)
	r.POST("/movies/:id/watch-later", h.Add)
	r.DELETE("/movies/:id/watch-later", h.Remove)
	r.GET("/watch-later", h.List)
	return r
}

func call(t *testing.T, r *gin.Engine, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)
	r := router(f, &alice)

	w, body := call(t, r, http.MethodPost, "/movies/1/watch-later")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `The movie "Heat" has been added to your watch later list.`, body["message"])

	w, body = call(t, r, http.MethodPost, "/movies/1/watch-later")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `The movie "Heat" is already in your watch later list.`, body["message"])

	w, _ = call(t, r, http.MethodPost, "/movies/abc/watch-later")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = call(t, r, http.MethodGet, "/watch-later")
	require.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Alice", "email": "alice@example.com"}, data["user"])
	wl := data["watch_later"].(map[string]any)
	assert.Equal(t, float64(1), wl["count"])
	movie := wl["movies"].([]any)[0].(map[string]any)
	assert.Equal(t, "Heat", movie["title"])
	assert.Equal(t, "Heat description", movie["description"])
	assert.Equal(t, "2000-01-01", movie["release_date"])
	assert.Equal(t, map[string]any{"id": float64(1), "name": "Drama"}, movie["genre"])

	w, _ = call(t, r, http.MethodDelete, "/movies/2/watch-later")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = call(t, r, http.MethodDelete, "/movies/1/watch-later")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `The movie "Heat" has been removed from your watch later list.`, body["message"])
}

func TestHandlersWithoutPrincipal(t *testing.T) {
	f := newFixture(t)
	r := router(f, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/movies/1/watch-later"},
		{http.MethodDelete, "/movies/1/watch-later"},
		{http.MethodGet, "/watch-later"},
	} {
		w, _ := call(t, r, tc.method, tc.path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}

	var rows int64
	require.NoError(t, f.db.Model(&movies.WatchLater{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
