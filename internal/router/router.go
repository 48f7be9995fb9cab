// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/wedding-seating-engine/internal/config"
	"github.com/iliyamo/wedding-seating-engine/internal/handler"
	"github.com/iliyamo/wedding-seating-engine/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSeating registers the seating plan surface under
// /v1/weddings/:id/seating.  Every route runs session authentication
// first so the lock protocol always has a collaborator identity, then
// the Redis token bucket when a client is available.
func RegisterSeating(e *echo.Echo, h *handler.SeatingHandler, jwtSecret string, rl config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/weddings/:id/seating")
	g.Use(middleware.SessionAuth(jwtSecret))
	if rl.Enabled && rdb != nil {
		g.Use(middleware.NewTokenBucket(rl, rdb))
	}

	// Queries.
	g.GET("/areas", h.GetAreas)
	g.GET("/tables", h.GetTables)
	g.GET("/tables/:tableID/seats", h.GetSeats)
	g.GET("/conflicts", h.GetConflicts)
	g.GET("/locks", h.GetLocks)
	g.GET("/history", h.GetHistoryStatus)
	g.GET("/events", h.StreamEvents)

	// Spatial commands.
	g.POST("/areas", h.CreateArea)
	g.DELETE("/areas/:areaID", h.DeleteArea)
	g.POST("/tables", h.CreateTable)
	g.DELETE("/tables/:tableID", h.DeleteTable)
	g.POST("/tables/:tableID/duplicate", h.DuplicateTable)
	g.POST("/tables/:tableID/move", h.MoveTable)
	g.POST("/tables/:tableID/resize", h.ResizeTable)
	g.PUT("/tables/:tableID/capacity", h.SetTableCapacity)
	g.PUT("/tables/:tableID/name", h.RenameTable)
	g.PUT("/tables/:tableID/pinned", h.SetTablePinned)
	g.POST("/tables/:tableID/seats/:seatIndex/toggle", h.ToggleSeatEnabled)
	g.POST("/tables/:tableID/fix-position", h.FixTablePosition)

	// Assignments.
	g.POST("/assignments", h.AssignGuest)
	g.POST("/assignments/move", h.MoveGuest)
	g.DELETE("/assignments/:guestID", h.UnassignGuest)

	// Layout generation.
	g.POST("/areas/:areaID/grid", h.GenerateSeatGrid)
	g.POST("/areas/:areaID/banquet", h.GenerateBanquetLayout)
	g.POST("/auto-assign", h.AutoAssign)

	// History.
	g.POST("/undo", h.Undo)
	g.POST("/redo", h.Redo)

	// Locks.
	g.POST("/locks/:tableID", h.EnsureLock)
	g.DELETE("/locks", h.ReleaseLocks)

	// Reconciliation.
	g.POST("/reconcile", h.Reconcile)

	// Snapshots.
	g.POST("/snapshots", h.SaveSnapshot)
	g.GET("/snapshots", h.ListSnapshots)
	g.POST("/snapshots/:name/restore", h.RestoreSnapshot)
	g.DELETE("/snapshots/:name", h.DeleteSnapshot)
}
