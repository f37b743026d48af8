package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/mrlibelula/movie-api/internal/apperr"
	"github.com/mrlibelula/movie-api/internal/auth"
	"github.com/mrlibelula/movie-api/internal/config"
	"github.com/mrlibelula/movie-api/internal/movies"
	"github.com/mrlibelula/movie-api/internal/response"
	"github.com/mrlibelula/movie-api/internal/users"
	"github.com/mrlibelula/movie-api/internal/validation"
	"github.com/mrlibelula/movie-api/internal/watchlater"
)

// Models returns every table the API needs, in migration order.
func Models() []interface{} {
	return append([]interface{}{&users.User{}}, movies.Models()...)
}

// NewRouter wires repositories, handlers and middleware on top of db.
func NewRouter(cfg *config.Config, db *gorm.DB, log *logrus.Logger) *gin.Engine {
	validation.Setup()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresHours)
	userRepo := users.NewRepository(db)
	movieRepo := movies.NewRepository(db)
	manager := watchlater.NewManager(db, movieRepo, log)

	authHandler := auth.NewHandler(userRepo, tokens)
	userHandler := users.NewHandler(userRepo, tokens)
	movieHandler := movies.NewHandler(movieRepo)
	watchHandler := watchlater.NewHandler(manager)

	r := gin.New()
	r.Use(requestLogger(log), recovery(), corsMiddleware(cfg.AllowedOrigins))
	r.Use(rateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, apperr.ResourceNotFound())
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/register", userHandler.Register)
	r.POST("/login", authHandler.Login)

	protected := r.Group("/")
	protected.Use(auth.RequireAuth(tokens, userRepo))
	{
		protected.GET("/user", authHandler.Me)

		protected.GET("/genres", movieHandler.ListGenres)
		protected.POST("/genres", movieHandler.CreateGenre)

		protected.GET("/movies", movieHandler.List)
		protected.POST("/movies", movieHandler.Create)
		protected.GET("/movies/:id", movieHandler.Show)
		protected.PUT("/movies/:id", movieHandler.Update)
		protected.DELETE("/movies/:id", movieHandler.Delete)

		protected.POST("/movies/:id/watch-later", watchHandler.Add)
		protected.DELETE("/movies/:id/watch-later", watchHandler.Remove)
		protected.GET("/watch-later", watchHandler.List)
	}

	return r
}
