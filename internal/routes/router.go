package routes

import (
	"net/http"

	"fleet-reserve/internal/config"
	"fleet-reserve/internal/delivery/http/handler"
	"fleet-reserve/internal/infrastructure/database/postgres"
	"fleet-reserve/internal/logger"
	"fleet-reserve/internal/middleware"
	"fleet-reserve/internal/notification"
	"fleet-reserve/internal/usecase/automation"
	"fleet-reserve/internal/usecase/availability"
	"fleet-reserve/internal/usecase/driver"
	"fleet-reserve/internal/usecase/maintenance"
	"fleet-reserve/internal/usecase/reservation"
	"fleet-reserve/internal/usecase/vehicle"
	appErrors "fleet-reserve/pkg/errors"
	"fleet-reserve/pkg/retry"

	"github.com/gin-gonic/gin"
	"github.com/zoobzio/clockz"
)

// Deps bundles the wired application services so main can share them with the
// background scheduler.
type Deps struct {
	Router    *gin.Engine
	Scheduler *automation.Scheduler
}

func SetupRoutes(cfg *config.Config, db *postgres.DB) *Deps {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware in order: recovery, request ID, logging, security headers,
	// CORS, request size limit, general rate limit.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(middleware.DefaultMaxRequestSize))
	router.Use(middleware.RateLimitMiddleware(cfg.RateLimit.GeneralRPS, cfg.RateLimit.GeneralBurst))

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})

	loc := cfg.Fleet.Location()
	clock := clockz.RealClock

	retryPolicy := retry.DefaultPolicy(appErrors.IsRetryable)
	if cfg.Fleet.RetryMaxAttempts > 0 {
		retryPolicy.MaxAttempts = cfg.Fleet.RetryMaxAttempts
	}
	if cfg.Fleet.RetryBaseDelay > 0 {
		retryPolicy.BaseDelay = cfg.Fleet.RetryBaseDelay
	}

	var sender notification.Sender
	if cfg.SMTP.Host != "" {
		sender = notification.NewRetryingSender(notification.NewSMTPSender(cfg.SMTP), retryPolicy)
	}

	vehicleRepository := postgres.NewVehicleRepository(db)
	driverRepository := postgres.NewDriverRepository(db)
	reservationRepository := postgres.NewReservationRepository(db)
	automationRepository := postgres.NewAutomationRepository(db)
	availabilityQuery := postgres.NewAvailabilityQuery(db)

	engine := maintenance.NewEngine(maintenance.Thresholds{
		ApproachingKm: cfg.Fleet.ApproachingKm,
		UrgentKm:      cfg.Fleet.UrgentKm,
	})

	resolver := availability.NewResolver(
		vehicleRepository, reservationRepository, availabilityQuery,
		engine, clock, loc, retryPolicy,
	)

	vehicleService := vehicle.NewService(
		vehicleRepository, engine, sender, clock, loc,
		vehicle.Intervals{
			ServiceKm:      cfg.Fleet.ServiceIntervalKm,
			RevisionKm:     cfg.Fleet.RevisionIntervalKm,
			RevisionMonths: cfg.Fleet.RevisionIntervalMon,
		},
		cfg.Fleet.DefaultMarginKm,
		cfg.SMTP.From,
	)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)

	driverService := driver.NewService(driverRepository)

	reservationService := reservation.NewService(
		reservationRepository, vehicleRepository, driverRepository,
		resolver, sender, clock, loc, cfg.Fleet.CooldownDays,
	)
	reservationHandler := handler.NewReservationHandler(reservationService)

	driverHandler := handler.NewDriverHandler(driverService, reservationService)

	scheduler := automation.NewScheduler(
		reservationRepository, vehicleRepository, driverRepository,
		automationRepository, sender, clock, loc,
		automation.Options{
			AutoCompleteHour: &cfg.Fleet.AutoCompleteHour,
			ReminderHours:    cfg.Fleet.ReminderHours,
			ReminderThrottle: cfg.Fleet.ReminderThrottle,
			CooldownDays:     cfg.Fleet.CooldownDays,
			BatchSize:        cfg.Fleet.SchedulerBatchSize,
		},
	)
	automationHandler := handler.NewAutomationHandler(scheduler)

	v1 := router.Group("/api/v1")
	{
		vehicleHandler.RegisterRoutes(v1)
		driverHandler.RegisterRoutes(v1)
		reservationHandler.RegisterRoutes(v1)
		automationHandler.RegisterRoutes(v1)
	}

	logger.Info("All routes initialized")
	return &Deps{Router: router, Scheduler: scheduler}
}
