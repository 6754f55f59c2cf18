package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/yevheniigera/dialogflow-fulfillment/fulfillment"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := newApp(cfg, intents())

	go func() {
		log.Printf("Listening on :%s, webhook at %s", cfg.Port, cfg.WebhookPath)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func newApp(cfg *Config, intents fulfillment.IntentMap) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
	}))

	handlers := []fiber.Handler{}
	if cfg.BasicAuth() {
		handlers = append(handlers, basicauth.New(basicauth.Config{
			Users: map[string]string{cfg.Username: cfg.Password},
		}))
	}
	handlers = append(handlers, fulfillment.Webhook(intents))

	app.Post(cfg.WebhookPath, handlers...)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World 👋!")
	})

	return app
}
