package app

import (
	"fmt"
	"strconv"
	"time"

	"chat_relay_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthResponse GET /health body
type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthCheck liveness probe
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "OK",
		Message:   "Chat server is running",
		Timestamp: time.Now(),
	})
}

// DebugLogFlag toggle debug logging with ?status=true|false
func DebugLogFlag(c *fiber.Ctx) error {
	statusStr := c.Query("status")
	status, err := strconv.ParseBool(statusStr)
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	logger.Log.Info("debug mode changed", zap.Bool("status", status))
	logger.Log.SetDebugMode(status)
	return c.SendString(fmt.Sprintf("debug mode is : %t", status))
}
