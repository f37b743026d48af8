package movies

import (
	"time"
)

// DateLayout is the wire and storage format of release dates.
const DateLayout = "2006-01-02"

type Movie struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:255;not null;uniqueIndex:idx_movies_title_release_date"`
	Slug        string    `gorm:"size:300;not null;index"`
	Description string    `gorm:"type:text;not null"`
	ReleaseDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_movies_title_release_date"`
	GenreID     uint      `gorm:"not null;index"`
	Genre       *Genre    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Genre struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;unique;not null" json:"name"`
}

// WatchLater is the user/movie join row. The composite primary key makes
// a second attach of the same pair a unique violation.
type WatchLater struct {
	UserID    uint  `gorm:"primaryKey;autoIncrement:false"`
	MovieID   uint  `gorm:"primaryKey;autoIncrement:false;index"`
	Movie     Movie `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WatchLater) TableName() string {
	return "watch_later"
}

// Models lists every table owned by this package in migration order.
func Models() []interface{} {
	return []interface{}{&Genre{}, &Movie{}, &WatchLater{}}
}

type MovieResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ReleaseDate string    `json:"release_date"`
	GenreID     uint      `json:"genre_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ToResponse(m *Movie) MovieResponse {
	return MovieResponse{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate.Format(DateLayout),
		GenreID:     m.GenreID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// CreateMovieInput holds exactly the attributes a client may set on create.
type CreateMovieInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"required"`
	ReleaseDate string `json:"release_date" binding:"required,datetime=2006-01-02"`
	GenreID     uint   `json:"genre_id" binding:"required"`
}

// UpdateMovieInput fields are optional; nil means "leave unchanged".
type UpdateMovieInput struct {
	Title       *string `json:"title" binding:"omitnil,min=1,max=255"`
	Description *string `json:"description" binding:"omitnil,min=1"`
	ReleaseDate *string `json:"release_date" binding:"omitnil,datetime=2006-01-02"`
	GenreID     *uint   `json:"genre_id" binding:"omitnil,gt=0"`
}

type CreateGenreInput struct {
	Name string `json:"name" binding:"required,max=100"`
}
