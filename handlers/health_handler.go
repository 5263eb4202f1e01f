package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/globalfaces/phoenix-backend/pkg/redis"
)

// HealthHandler handles health checks.
type HealthHandler struct {
	db           *sqlx.DB
	redis        *redis.Client
	checkTimeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redis:        redisClient,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses (warehouse and Redis).
// @Summary Health check
// @Description Returns overall status with warehouse and Redis connectivity results
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
			overallStatus = "degraded"
		} else {
			redisStatus = "up"
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"warehouse": map[string]any{
				"status": dbStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
		},
	})
}

// Healthz reports the warehouse session identity, confirming key-pair auth
// and the active role/warehouse/database context.
// @Summary Warehouse identity check
// @Description Returns the Snowflake session identity the service is connected as
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	var who struct {
		User      string `db:"USER"`
		Role      string `db:"ROLE"`
		Warehouse string `db:"WH"`
		Database  string `db:"DB"`
		Schema    string `db:"SCHEMA"`
	}
	query := `
		SELECT CURRENT_USER() AS "USER", CURRENT_ROLE() AS "ROLE", CURRENT_WAREHOUSE() AS "WH",
		       CURRENT_DATABASE() AS "DB", CURRENT_SCHEMA() AS "SCHEMA"
	`
	if err := h.db.GetContext(ctx, &who, query); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"ok": false, "error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"ok": true,
		"snowflake": map[string]any{
			"user":   who.User,
			"role":   who.Role,
			"wh":     who.Warehouse,
			"db":     who.Database,
			"schema": who.Schema,
		},
	})
}
