// Package server assembles the storefront's Fiber application.
package server

import (
	"fmt"
	"log"
	"time"

	"momo/internal/catalog"
	"momo/internal/config"
	"momo/internal/database"
	"momo/internal/handlers"
	"momo/internal/repositories"
	"momo/internal/services"
	"momo/internal/session"
	"momo/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config   config.Config
	Users    repositories.UserRepository
	Orders   repositories.OrderRepository
	Contacts repositories.ContactRepository
	Catalog  *catalog.Catalog

	// Publisher receives storefront events. Nil disables them.
	Publisher services.EventPublisher
	// Store is pinged by /health. Nil for in-memory repositories.
	Store handlers.Pinger
}

// New builds the Fiber app with every route registered.
func New(deps Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		AppName:      "momo",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSAllowOrigins}))
	if cfg.StaticDir != "" {
		app.Static("/static", cfg.StaticDir)
	}

	store := session.NewStore(cfg.SecretKey, cfg.SessionTTL, cfg.SessionCookieSecure)
	app.Use(store.Middleware())

	authService := services.NewAuthService(deps.Users)
	checkoutService := services.NewCheckoutService(deps.Orders, deps.Users, deps.Publisher, cfg.RequireOrderPersistence)
	profileService := services.NewProfileService(deps.Users, deps.Orders)
	contactService := services.NewContactService(deps.Contacts, deps.Publisher)

	images := deps.Catalog.Images()

	handlers.NewHealthHandler(deps.Store, deps.Publisher != nil).RegisterRoutes(app)
	handlers.NewPageHandler(deps.Catalog).RegisterRoutes(app)
	handlers.NewAuthHandler(authService).RegisterRoutes(app)
	handlers.NewCartHandler(images).RegisterRoutes(app)
	handlers.NewCheckoutHandler(checkoutService, images).RegisterRoutes(app)
	handlers.NewProfileHandler(profileService).RegisterRoutes(app)
	handlers.NewContactHandler(contactService).RegisterRoutes(app)

	return app
}

// Build wires repositories, the optional event client and the catalog from
// cfg. The returned cleanup releases the database pool and the broker
// connection.
func Build(cfg config.Config) (*fiber.App, *rabbitmq.Client, func(), error) {
	images := catalog.LoadImageResolver(cfg.ImageMapPath, "/static")
	menu, err := catalog.Load(images)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load menu: %w", err)
	}

	deps := Dependencies{Config: cfg, Catalog: menu}
	var closers []func() error

	if cfg.Database.Driver == database.DriverMemory {
		log.Println("Using in-memory repositories; data is lost on restart")
		deps.Users = repositories.NewMockUserRepository()
		deps.Orders = repositories.NewMockOrderRepository()
		deps.Contacts = repositories.NewMockContactRepository()
	} else {
		if _, err := cfg.Database.Dialector(); err != nil {
			return nil, nil, nil, err
		}
		gateway := database.NewGateway(cfg.Database)
		closers = append(closers, gateway.Close)
		deps.Users = repositories.NewGORMUserRepository(gateway)
		deps.Orders = repositories.NewGORMOrderRepository(gateway)
		deps.Contacts = repositories.NewGORMContactRepository(gateway)
		deps.Store = gateway
	}

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Storefront events disabled: %v", err)
			mqClient = nil
		} else {
			deps.Publisher = mqClient
			closers = append(closers, mqClient.Close)
		}
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Printf("Error during cleanup: %v", err)
			}
		}
	}

	return New(deps), mqClient, cleanup, nil
}
