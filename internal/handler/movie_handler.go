package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
)

// MovieHandler serves the movie CRUD endpoints.
type MovieHandler struct {
	Movies *repository.MovieRepo
}

func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{Movies: movies}
}

// List handles GET /v1/movies with pagination.
func (h *MovieHandler) List(c echo.Context) error {
	page, limit, offset := pageParams(c)
	movies, total, err := h.Movies.List(c.Request().Context(), limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, paged(movies, total, page, limit))
}

// Get handles GET /v1/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Movies.GetDetails(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMovieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, m)
}

type movieReq struct {
	Title       string   `json:"title"`
	AgeLimit    int      `json:"ageLimit"`
	DurationMin int      `json:"durationMin"`
	ReleaseYear int      `json:"releaseYear"`
	Description string   `json:"description"`
	GenreIDs    []uint64 `json:"genreIds"`
}

// Create handles POST /v1/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var body movieReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	body.Title = strings.TrimSpace(body.Title)
	if body.Title == "" || body.AgeLimit <= 0 || body.DurationMin <= 0 || body.ReleaseYear <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title, ageLimit, durationMin and releaseYear are required and must be positive"})
	}

	m := &model.Movie{
		Title:       body.Title,
		AgeLimit:    body.AgeLimit,
		DurationMin: body.DurationMin,
		ReleaseYear: body.ReleaseYear,
		Description: strings.TrimSpace(body.Description),
	}
	err := h.Movies.Create(c.Request().Context(), m, uniqueIDs(body.GenreIDs))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSomeGenresNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "some genres do not exist"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, m)
}

// Update handles PATCH /v1/movies/:id.  Absent fields keep their
// stored values; a present genreIds replaces the genre links.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Title       *string  `json:"title"`
		AgeLimit    *int     `json:"ageLimit"`
		DurationMin *int     `json:"durationMin"`
		ReleaseYear *int     `json:"releaseYear"`
		Description *string  `json:"description"`
		GenreIDs    []uint64 `json:"genreIds"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
	}
	if (body.AgeLimit != nil && *body.AgeLimit <= 0) ||
		(body.DurationMin != nil && *body.DurationMin <= 0) ||
		(body.ReleaseYear != nil && *body.ReleaseYear <= 0) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "numeric fields must be positive"})
	}

	upd := repository.MovieUpdate{
		Title:       body.Title,
		AgeLimit:    body.AgeLimit,
		DurationMin: body.DurationMin,
		ReleaseYear: body.ReleaseYear,
		Description: body.Description,
	}
	if body.GenreIDs != nil {
		upd.GenreIDs = uniqueIDs(body.GenreIDs)
	}

	m, err := h.Movies.Update(c.Request().Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrSomeGenresNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "some genres do not exist"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "movie title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update movie failed"})
	}
	return c.JSON(http.StatusOK, m)
}

// Delete handles DELETE /v1/movies/:id.  A movie with scheduled
// showtimes cannot be deleted.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrMovieNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		case errors.Is(err, repository.ErrMovieHasShowtimes):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "movie has scheduled showtimes"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movie failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted"})
}

// uniqueIDs drops duplicates preserving order.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]bool, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
