package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviehall/cinema-booking/internal/config"
	"github.com/moviehall/cinema-booking/internal/database"
	"github.com/moviehall/cinema-booking/internal/handler"
	"github.com/moviehall/cinema-booking/internal/queue"
	"github.com/moviehall/cinema-booking/internal/repository"
	"github.com/moviehall/cinema-booking/internal/router"
	"github.com/moviehall/cinema-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPass, cfg.DBName, cfg.DBSSLMode)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()

	genres := repository.NewGenreRepo(db)
	movies := repository.NewMovieRepo(db)
	halls := repository.NewHallRepo(db)
	tariffs := repository.NewTariffRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)
	reports := repository.NewReportRepo(db)

	var publisher service.EventPublisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
		go queue.StartBookingConsumer(cfg.RabbitURL)
	}

	bookingSvc := service.NewBookingService(db, showtimes, halls, tariffs, bookings, publisher)
	showtimeSvc := service.NewShowtimeService(db, showtimes, halls, tariffs, bookings)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Cfg:       cfg,
		Redis:     rdb,
		Auth:      handler.NewAuthHandler(cfg, users),
		Genres:    handler.NewGenreHandler(genres),
		Movies:    handler.NewMovieHandler(movies),
		Halls:     handler.NewHallHandler(halls),
		Tariffs:   handler.NewTariffHandler(tariffs),
		Showtimes: handler.NewShowtimeHandler(showtimeSvc),
		Bookings:  handler.NewBookingHandler(bookingSvc),
		Users:     handler.NewUserHandler(cfg, users),
		Reports:   handler.NewReportHandler(reports),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
