// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/moviehall/cinema-booking/internal/config"
	"github.com/moviehall/cinema-booking/internal/handler"
	"github.com/moviehall/cinema-booking/internal/middleware"
	"github.com/moviehall/cinema-booking/internal/model"
)

// Handlers bundles everything Register needs to wire the API.
type Handlers struct {
	Cfg       config.Config
	Redis     *redis.Client
	Auth      *handler.AuthHandler
	Genres    *handler.GenreHandler
	Movies    *handler.MovieHandler
	Halls     *handler.HallHandler
	Tariffs   *handler.TariffHandler
	Showtimes *handler.ShowtimeHandler
	Bookings  *handler.BookingHandler
	Users     *handler.UserHandler
	Reports   *handler.ReportHandler
}

// Register wires all routes.  Browse endpoints are public and cached;
// booking and account endpoints require a token; mutating CRUD and
// reports require the admin role.
func Register(e *echo.Echo, h Handlers) {
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.RateLimit(h.Redis, h.Cfg.RateLimit, h.Cfg.RateWindow))

	e.GET("/healthz", handler.Health)

	e.POST("/v1/auth/register", h.Auth.Register)
	e.POST("/v1/auth/login", h.Auth.Login)

	// Public browse, cached.
	browse := e.Group("/v1")
	if h.Cfg.CacheEnabled {
		browse.Use(middleware.RedisCache(h.Redis, h.Cfg.CacheTTL))
	}
	browse.GET("/genres", h.Genres.List)
	browse.GET("/movies", h.Movies.List)
	browse.GET("/movies/:id", h.Movies.Get)
	browse.GET("/halls", h.Halls.List)
	browse.GET("/halls/:id", h.Halls.Get)
	browse.GET("/tariffs", h.Tariffs.List)
	browse.GET("/showtimes", h.Showtimes.List)
	browse.GET("/showtimes/:id", h.Showtimes.Get)
	browse.GET("/showtimes/:id/seats", h.Showtimes.Seats)

	// Authenticated endpoints.
	auth := e.Group("/v1", middleware.JWTAuth(h.Cfg.JWTSecret))
	auth.GET("/me", h.Auth.Me)
	auth.POST("/showtimes/:id/bookings", h.Bookings.Create)
	auth.GET("/bookings/:id", h.Bookings.Get)
	auth.DELETE("/bookings/:id", h.Bookings.Cancel)
	auth.GET("/users/:id", h.Users.Get)
	auth.GET("/users/:id/bookings", h.Bookings.ListByUser)
	auth.PATCH("/users/:id", h.Users.Update)
	auth.DELETE("/users/:id", h.Users.Delete)

	// Admin-only management and reporting.
	admin := e.Group("/v1", middleware.JWTAuth(h.Cfg.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	admin.POST("/genres", h.Genres.Create)
	admin.PATCH("/genres/:id", h.Genres.Update)
	admin.DELETE("/genres/:id", h.Genres.Delete)
	admin.POST("/movies", h.Movies.Create)
	admin.PATCH("/movies/:id", h.Movies.Update)
	admin.DELETE("/movies/:id", h.Movies.Delete)
	admin.POST("/halls", h.Halls.Create)
	admin.PATCH("/halls/:id", h.Halls.Update)
	admin.DELETE("/halls/:id", h.Halls.Delete)
	admin.POST("/tariffs", h.Tariffs.Create)
	admin.PATCH("/tariffs/:id", h.Tariffs.Update)
	admin.DELETE("/tariffs/:id", h.Tariffs.Delete)
	admin.POST("/showtimes", h.Showtimes.Create)
	admin.PATCH("/showtimes/:id", h.Showtimes.Update)
	admin.DELETE("/showtimes/:id", h.Showtimes.Delete)
	admin.GET("/showtimes/:id/bookings", h.Bookings.ListByShowtime)
	admin.GET("/reports/movies/revenue", h.Reports.MoviesRevenue)
	admin.GET("/reports/movies/attendance", h.Reports.MoviesAttendance)
	admin.GET("/reports/users/spending", h.Reports.UsersSpending)
}
