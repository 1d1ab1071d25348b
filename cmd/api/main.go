package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/drivelead/drivelead-api/internal/application/analytics"
	"github.com/drivelead/drivelead-api/internal/application/assignment"
	"github.com/drivelead/drivelead-api/internal/application/auth"
	"github.com/drivelead/drivelead-api/internal/application/duplicate"
	"github.com/drivelead/drivelead-api/internal/application/lead"
	"github.com/drivelead/drivelead-api/internal/application/ports"
	"github.com/drivelead/drivelead-api/internal/domain/entity"
	"github.com/drivelead/drivelead-api/internal/domain/routing"
	"github.com/drivelead/drivelead-api/internal/infrastructure/postgres"
	"github.com/drivelead/drivelead-api/internal/infrastructure/queue"
	httpRouter "github.com/drivelead/drivelead-api/internal/interfaces/http"
	"github.com/drivelead/drivelead-api/pkg/config"
	"github.com/drivelead/drivelead-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando motor de asignación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	leadRepo := postgres.NewLeadRepository(pool)
	ownerRepo := postgres.NewOwnerRepository(pool)
	assignRepo := postgres.NewAssignmentRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	dupRepo := postgres.NewDuplicateRepository(pool)
	campaignRepo := postgres.NewCampaignRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Publicador de eventos: RabbitMQ si hay URL configurada, no-op si no.
	var publisher ports.EventPublisher = ports.NopPublisher{}
	if cfg.Events.URL != "" {
		mq, err := queue.NewRabbitMQ(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a RabbitMQ")
		}
		defer mq.Close()
		publisher = queue.NewPublisher(mq)
		log.Info().Str("exchange", cfg.Events.Exchange).Msg("publicador de eventos activo")
	}

	slaTable := routing.SLATable{
		entity.ChannelWebsite:  time.Duration(cfg.Routing.SLAWebsiteHours) * time.Hour,
		entity.ChannelFacebook: time.Duration(cfg.Routing.SLAFacebookHours) * time.Hour,
		entity.ChannelWhatsApp: time.Duration(cfg.Routing.SLAWhatsAppHours) * time.Hour,
		entity.ChannelPhone:    time.Duration(cfg.Routing.SLAPhoneHours) * time.Hour,
		entity.ChannelWalkIn:   time.Duration(cfg.Routing.SLAWalkInHours) * time.Hour,
		entity.ChannelReferral: time.Duration(cfg.Routing.SLAReferralHours) * time.Hour,
	}

	assignmentUC := assignment.NewAssignmentUseCase(txRunner, leadRepo, ownerRepo, publisher, log)
	registryUC := assignment.NewOwnerRegistryUseCase(ownerRepo)
	leadUC := lead.NewLeadUseCase(
		txRunner, leadRepo, assignRepo, activityRepo, dupRepo, campaignRepo, userRepo,
		assignmentUC,
		lead.Options{
			SLA:                slaTable,
			DuplicateThreshold: cfg.Routing.DuplicateThreshold,
			AllowReopen:        cfg.Routing.AllowReopen,
		},
		log,
	)
	duplicateUC := duplicate.NewDuplicateUseCase(txRunner, dupRepo, publisher, log)
	analyticsUC := analytics.NewAnalyticsUseCase(analyticsRepo, leadRepo, slaTable)
	authUC := auth.NewAuthUseCase(userRepo, ownerRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "DriveLead API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		LeadUC:       leadUC,
		AssignmentUC: assignmentUC,
		RegistryUC:   registryUC,
		DuplicateUC:  duplicateUC,
		AnalyticsUC:  analyticsUC,
		AuthUC:       authUC,
		JWTSecret:    cfg.JWT.Secret,
		Audit:        log.Audit(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("motor detenido")
}
