// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/redelink/redelink/app/dto"
	"github.com/redelink/redelink/app/handlers"
	"github.com/redelink/redelink/app/middleware"
	"github.com/redelink/redelink/config"
	_ "github.com/redelink/redelink/docs"
	"github.com/redelink/redelink/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app             *fiber.App
	cfg             *config.ProductionConfig
	authMiddleware  *middleware.AuthMiddleware
	authHandler     handlers.AuthHandlerInterface
	statusHandler   handlers.StatusHandlerInterface
	reminderHandler handlers.ReminderHandlerInterface
	customerHandler handlers.CustomerHandlerInterface
	contractHandler handlers.ContractHandlerInterface
	ticketHandler   handlers.TicketHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	cfg *config.ProductionConfig,
	authMiddleware *middleware.AuthMiddleware,
	authHandler handlers.AuthHandlerInterface,
	statusHandler handlers.StatusHandlerInterface,
	reminderHandler handlers.ReminderHandlerInterface,
	customerHandler handlers.CustomerHandlerInterface,
	contractHandler handlers.ContractHandlerInterface,
	ticketHandler handlers.TicketHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "RedeLink API",
		ServerHeader: "RedeLink",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:             app,
		cfg:             cfg,
		authMiddleware:  authMiddleware,
		authHandler:     authHandler,
		statusHandler:   statusHandler,
		reminderHandler: reminderHandler,
		customerHandler: customerHandler,
		contractHandler: contractHandler,
		ticketHandler:   ticketHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// Swagger JSON (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		log.Println("API documentation enabled for development")
	}

	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: &dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: &dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	auth.Post("/login", r.authHandler.Login)
	auth.Post("/refresh", r.authHandler.Refresh)

	// Protected routes
	protected := api.Group("", r.authMiddleware.Authenticate())

	subscribers := protected.Group("/subscribers")
	subscribers.Get("/status", r.statusHandler.List)
	subscribers.Get("/status/export", r.statusHandler.Export)
	subscribers.Get("/:username/history", r.statusHandler.History)

	reminders := protected.Group("/reminders")
	reminders.Post("/run", r.reminderHandler.RunPass)
	reminders.Get("/runs", r.reminderHandler.ListRuns)
	reminders.Post("/templates", r.reminderHandler.CreateTemplate)
	reminders.Get("/templates", r.reminderHandler.ListTemplates)

	customers := protected.Group("/customers")
	customers.Post("", r.customerHandler.Create)
	customers.Get("", r.customerHandler.List)
	customers.Get("/:id", r.customerHandler.Get)

	contracts := protected.Group("/contracts")
	contracts.Post("", r.contractHandler.Create)
	contracts.Get("", r.contractHandler.List)
	contracts.Put("/:id/status", r.contractHandler.UpdateStatus)

	tickets := protected.Group("/tickets")
	tickets.Post("", r.ticketHandler.Create)
	tickets.Get("", r.ticketHandler.List)
	tickets.Post("/:id/reply", r.ticketHandler.Reply)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(recover.New())

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Server.AllowedOrigins,
		AllowMethods:     r.cfg.Server.AllowedMethods,
		AllowHeaders:     r.cfg.Server.AllowedHeaders,
		AllowCredentials: r.cfg.Server.AllowCredentials,
		MaxAge:           utils.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelDefault,
		}))
	}

	if r.cfg.Server.EnableMetrics {
		r.app.Use(middleware.Metrics())
	}
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the underlying Fiber app
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNowRFC3339(),
		},
	})
}

func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	swaggerData, err := os.ReadFile("docs/swagger.json")
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
			Success: false,
			Message: "Swagger documentation not found",
			Error:   &dto.ErrorDetail{Code: "SWAGGER_NOT_FOUND"},
		})
	}
	c.Set("Content-Type", "application/json")
	return c.Send(swaggerData)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "Endpoint not found",
		Error: &dto.ErrorDetail{
			Code: "NOT_FOUND",
		},
	})
}

// errorHandler is the global Fiber error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if !strings.Contains(c.Path(), "/health") {
		log.Printf("request error: %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code: "REQUEST_FAILED",
		},
	})
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "req-" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return hex.EncodeToString(b)
}
