package movies

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/database"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func notFound() *apperr.Error {
	return apperr.NotFound("Movie not found", "The requested movie does not exist.")
}

// ParseID turns a route parameter into a movie id. Anything that cannot
// name a movie is reported as not found.
func ParseID(param string) (uint, error) {
	id, err := strconv.ParseUint(param, 10, 64)
	if err != nil || id == 0 {
		return 0, notFound()
	}
	return uint(id), nil
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func makeSlug(title string, releaseDate time.Time) string {
	return slug.Make(title + " " + releaseDate.Format(DateLayout))
}

// List returns every movie ordered by id.
func (r *Repository) List(ctx context.Context) ([]Movie, error) {
	movies := []Movie{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&movies).Error; err != nil {
		return nil, apperr.Storage("list movies", err)
	}
	return movies, nil
}

func (r *Repository) Create(ctx context.Context, in CreateMovieInput) (*Movie, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	fields := map[string][]string{}
	if title == "" {
		fields["title"] = []string{"The title field is required."}
	}
	if description == "" {
		fields["description"] = []string{"The description field is required."}
	}
	releaseDate, err := ParseDate(in.ReleaseDate)
	if err != nil {
		fields["release_date"] = []string{"The release date field must be a valid date."}
	}
	if len(fields) > 0 {
		return nil, addGenreError(ctx, r.db, apperr.Validation(fields), in.GenreID)
	}

	if err := r.requireGenre(ctx, r.db, in.GenreID); err != nil {
		return nil, err
	}

	movie := Movie{
		Title:       title,
		Slug:        makeSlug(title, releaseDate),
		Description: description,
		ReleaseDate: releaseDate,
		GenreID:     in.GenreID,
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&movie).Error; err != nil {
		return nil, translateWrite("insert movie", err, movie.Title, movie.ReleaseDate)
	}
	return &movie, nil
}

func (r *Repository) Get(ctx context.Context, id uint) (*Movie, error) {
	var movie Movie
	if err := r.db.WithContext(ctx).First(&movie, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, apperr.Storage("get movie", err)
	}
	return &movie, nil
}

// GetByIdentifier resolves a numeric id or, failing that, a slug.
func (r *Repository) GetByIdentifier(ctx context.Context, identifier string) (*Movie, error) {
	if id, err := strconv.ParseUint(identifier, 10, 64); err == nil {
		return r.Get(ctx, uint(id))
	}

	var movie Movie
	err := r.db.WithContext(ctx).Where("slug = ?", identifier).Order("id ASC").First(&movie).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, apperr.Storage("get movie by slug", err)
	}
	return &movie, nil
}

// Update merges only the supplied fields into the stored movie.
func (r *Repository) Update(ctx context.Context, id uint, in UpdateMovieInput) (*Movie, error) {
	var movie Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&movie, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound()
			}
			return apperr.Storage("get movie", err)
		}

		fields := map[string][]string{}
		if in.Title != nil {
			if title := strings.TrimSpace(*in.Title); title == "" {
				fields["title"] = []string{"The title field must not be empty."}
			} else {
				movie.Title = title
			}
		}
		if in.Description != nil {
			if description := strings.TrimSpace(*in.Description); description == "" {
				fields["description"] = []string{"The description field must not be empty."}
			} else {
				movie.Description = description
			}
		}
		if in.ReleaseDate != nil {
			releaseDate, err := ParseDate(*in.ReleaseDate)
			if err != nil {
				fields["release_date"] = []string{"The release date field must be a valid date."}
			} else {
				movie.ReleaseDate = releaseDate
			}
		}
		if len(fields) > 0 {
			var genreID uint
			if in.GenreID != nil {
				genreID = *in.GenreID
			}
			return addGenreError(ctx, tx, apperr.Validation(fields), genreID)
		}

		if in.GenreID != nil {
			if err := r.requireGenre(ctx, tx, *in.GenreID); err != nil {
				return err
			}
			movie.GenreID = *in.GenreID
		}

		movie.Slug = makeSlug(movie.Title, movie.ReleaseDate)
		if err := tx.Omit(clause.Associations).Save(&movie).Error; err != nil {
			return translateWrite("update movie", err, movie.Title, movie.ReleaseDate)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// Delete removes the movie and its watch-later rows atomically.
func (r *Repository) Delete(ctx context.Context, id uint) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&WatchLater{}).Error; err != nil {
			return apperr.Storage("delete watch later rows", err)
		}
		res := tx.Delete(&Movie{}, id)
		if res.Error != nil {
			return apperr.Storage("delete movie", res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound()
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) ListGenres(ctx context.Context) ([]Genre, error) {
	genres := []Genre{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error; err != nil {
		return nil, apperr.Storage("list genres", err)
	}
	return genres, nil
}

func (r *Repository) CreateGenre(ctx context.Context, in CreateGenreInput) (*Genre, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.FieldError("name", "The name field is required.")
	}

	genre := Genre{Name: name}
	if err := r.db.WithContext(ctx).Create(&genre).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperr.Conflict(
				fmt.Sprintf("The genre %q already exists.", name),
				"A genre with this name already exists.",
			)
		}
		return nil, apperr.Storage("insert genre", err)
	}
	return &genre, nil
}

func (r *Repository) requireGenre(ctx context.Context, db *gorm.DB, id uint) error {
	ok, err := genreExists(ctx, db, id)
	if err != nil {
		return err
	}
	if !ok {
		return invalidGenre()
	}
	return nil
}

func genreExists(ctx context.Context, db *gorm.DB, id uint) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&Genre{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperr.Storage("check genre", err)
	}
	return count > 0, nil
}

const invalidGenreMessage = "The selected genre id is invalid."

func invalidGenre() *apperr.Error {
	return apperr.FieldError("genre_id", invalidGenreMessage)
}

// WithGenreCheck adds the genre_id message to a validation failure when
// genreID names no genre, so one response lists every invalid field.
// Zero means the id was missing or already rejected.
func (r *Repository) WithGenreCheck(ctx context.Context, err error, genreID uint) error {
	return addGenreError(ctx, r.db, err, genreID)
}

func addGenreError(ctx context.Context, db *gorm.DB, err error, genreID uint) error {
	var verr *apperr.Error
	if genreID == 0 || !errors.As(err, &verr) || verr.Kind != apperr.KindValidation {
		return err
	}
	if _, ok := verr.Fields["genre_id"]; ok {
		return err
	}
	if _, ok := verr.Fields["body"]; ok {
		return err
	}

	ok, gerr := genreExists(ctx, db, genreID)
	if gerr != nil {
		return gerr
	}
	if !ok {
		if verr.Fields == nil {
			verr.Fields = map[string][]string{}
		}
		verr.Fields["genre_id"] = []string{invalidGenreMessage}
	}
	return err
}

func translateWrite(op string, err error, title string, releaseDate time.Time) error {
	switch {
	case database.IsUniqueViolation(err):
		return apperr.Conflict(
			fmt.Sprintf("The movie %q released on %s already exists.", title, releaseDate.Format(DateLayout)),
			"A movie with this title and release date already exists.",
		)
	case database.IsForeignKeyViolation(err):
		return invalidGenre()
	default:
		return apperr.Storage(op, err)
	}
}
