package router

import (
	"context"

	"chat_relay_service/internal/chat/app"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/websocket/v2"
)

// Options route wiring switches
type Options struct {
	// EnablePprof mount /debug/pprof, never in production
	EnablePprof bool
}

// RegisterRoutes register chat routes: /ws, /health and /debug.
// ctx is handed to every websocket connection and bounds its storage calls.
func RegisterRoutes(ctx context.Context, r *fiber.App, chatWebsocket *app.ChatWebsocketHandler, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST",
	}))
	if opts.EnablePprof {
		r.Use(pprof.New())
	}

	r.Get("/health", app.HealthCheck)
	r.Post("/debug", app.DebugLogFlag)

	r.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		chatWebsocket.HandleConnection(ctx, c)
	}))
}
