// Package watchlater manages each user's watch-later list. Attach and
// detach are not idempotent: repeating either is an error.
package watchlater

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/auth"
	"github.com/mrlibelula/movie-api/internal/database"
	"github.com/mrlibelula/movie-api/internal/movies"
)

// MovieFinder is the slice of the movie repository the manager needs.
type MovieFinder interface {
	Get(ctx context.Context, id uint) (*movies.Movie, error)
}

type Manager struct {
	db     *gorm.DB
	movies MovieFinder
	log    *logrus.Logger
}

func NewManager(db *gorm.DB, finder MovieFinder, log *logrus.Logger) *Manager {
	return &Manager{db: db, movies: finder, log: log}
}

type GenreItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type MovieItem struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ReleaseDate string     `json:"release_date"`
	Genre       *GenreItem `json:"genre"`
}

type List struct {
	Count  int         `json:"count"`
	Movies []MovieItem `json:"movies"`
}

// Add attaches movieID to the principal's list and returns the
// confirmation message.
func (m *Manager) Add(ctx context.Context, p auth.Principal, movieID uint) (string, error) {
	movie, err := m.movies.Get(ctx, movieID)
	if err != nil {
		return "", err
	}

	row := movies.WatchLater{UserID: p.UserID, MovieID: movie.ID}
	if err := m.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return "", apperr.Conflict(
				fmt.Sprintf("The movie %q is already in your watch later list.", movie.Title),
				"Movie already in watch later list.",
			)
		}
		return "", apperr.Storage("attach watch later", err)
	}

	m.log.WithFields(logrus.Fields{"user_id": p.UserID, "movie_id": movie.ID}).Info("movie added to watch later")
	return fmt.Sprintf("The movie %q has been added to your watch later list.", movie.Title), nil
}

// Remove detaches movieID from the principal's list. Removing a movie
// that is not on the list is a not-found error.
func (m *Manager) Remove(ctx context.Context, p auth.Principal, movieID uint) (string, error) {
	movie, err := m.movies.Get(ctx, movieID)
	if err != nil {
		return "", err
	}

	res := m.db.WithContext(ctx).
		Where("user_id = ? AND movie_id = ?", p.UserID, movie.ID).
		Delete(&movies.WatchLater{})
	if res.Error != nil {
		return "", apperr.Storage("detach watch later", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", apperr.NotFound(
			fmt.Sprintf("The movie %q is not in your watch later list.", movie.Title),
			"Movie not in watch later list.",
		)
	}

	m.log.WithFields(logrus.Fields{"user_id": p.UserID, "movie_id": movie.ID}).Info("movie removed from watch later")
	return fmt.Sprintf("The movie %q has been removed from your watch later list.", movie.Title), nil
}

// List reads the principal's movies with their genre straight from storage.
func (m *Manager) List(ctx context.Context, p auth.Principal) (*List, error) {
	var rows []movies.Movie
	err := m.db.WithContext(ctx).
		Joins("JOIN watch_later ON watch_later.movie_id = movies.id").
		Where("watch_later.user_id = ?", p.UserID).
		Preload("Genre").
		Order("movies.id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Storage("list watch later", err)
	}

	out := &List{Count: len(rows), Movies: make([]MovieItem, 0, len(rows))}
	for _, mv := range rows {
		item := MovieItem{
			ID:          mv.ID,
			Title:       mv.Title,
			Description: mv.Description,
			ReleaseDate: mv.ReleaseDate.Format(movies.DateLayout),
		}
		if mv.Genre != nil {
			item.Genre = &GenreItem{ID: mv.Genre.ID, Name: mv.Genre.Name}
		}
		out.Movies = append(out.Movies, item)
	}
	return out, nil
}
