package handlers

import (
	"github.com/doctorvirtual/api/database"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandleCheckHealth reports liveness and identity-store reachability.
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbStatus := "ok"
		if db, ok := store.GetDB().(*gorm.DB); ok {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.Ping() != nil {
				dbStatus = "unreachable"
			}
		} else {
			dbStatus = "unavailable"
		}

		status := "ok"
		if dbStatus != "ok" {
			status = "degraded"
		}

		return c.JSON(fiber.Map{
			"status":   status,
			"database": dbStatus,
		})
	}
}
