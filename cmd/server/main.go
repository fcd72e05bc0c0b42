package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/meeting-room-booking/internal/config"
	"github.com/iliyamo/meeting-room-booking/internal/database"
	"github.com/iliyamo/meeting-room-booking/internal/handler"
	"github.com/iliyamo/meeting-room-booking/internal/logger"
	"github.com/iliyamo/meeting-room-booking/internal/middleware"
	"github.com/iliyamo/meeting-room-booking/internal/queue"
	"github.com/iliyamo/meeting-room-booking/internal/repository"
	"github.com/iliyamo/meeting-room-booking/internal/router"
	"github.com/iliyamo/meeting-room-booking/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}).
		With().Str("env", cfg.Env).Logger()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	userRepo := repository.NewUserRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	guestRepo := repository.NewGuestUserRepo(db)
	articleRepo := repository.NewArticleRepo(db)

	users := service.NewUserService(userRepo, cfg.Auth.BcryptCost, log)
	if _, err := users.EnsureAdmin(ctx, cfg.Admin); err != nil {
		return err
	}
	auth := service.NewAuthService(userRepo, cfg.Auth)

	var rdb *redis.Client
	if cfg.RateLimit.Enabled || cfg.Cache.Enabled {
		rdb, err = config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable; rate limiting and caching disabled")
		} else {
			defer rdb.Close()
		}
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, log)
		if cfg.Queue.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.AuditLog, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error().Err(err).Msg("booking event consumer stopped")
				}
			}()
		}
	}

	admission := service.NewAdmission(service.NewDirectory(userRepo, roomRepo), bookingRepo, events, cfg.Booking, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.HTTPMetrics())
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, router.Deps{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Redis:    rdb,
		Verifier: auth,
		Auth:     handler.NewAuthHandler(auth, users),
		Users:    handler.NewUserHandler(users),
		Rooms:    handler.NewRoomHandler(roomRepo, bookingRepo),
		Bookings: handler.NewBookingHandler(admission),
		Guests:   handler.NewGuestUserHandler(service.NewGuestService(guestRepo, bookingRepo)),
		Articles: handler.NewArticleHandler(articleRepo),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("db", cfg.DB.Driver).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
