package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// SaveSnapshot handles POST /v1/weddings/:id/seating/snapshots: it
// captures the current plan under a name, overwriting any snapshot
// already stored under that name.
func (h *SeatingHandler) SaveSnapshot(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "snapshot name required"})
	}
	ctx := c.Request().Context()
	snap, err := p.Snapshot(ctx, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	if err := h.Snapshots.Save(ctx, snap); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"name": snap.Name, "saved_at": snap.SavedAt})
}

// ListSnapshots handles GET /v1/weddings/:id/seating/snapshots.
func (h *SeatingHandler) ListSnapshots(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	names, err := h.Snapshots.List(c.Request().Context(), p.WeddingID())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"snapshots": names})
}

// RestoreSnapshot handles POST /v1/weddings/:id/seating/snapshots/:name/restore.
// The stored document is validated before any live state is touched,
// so a corrupt snapshot leaves the plan exactly as it was.
func (h *SeatingHandler) RestoreSnapshot(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	snap, err := h.Snapshots.Load(ctx, p.WeddingID(), c.Param("name"))
	if err != nil {
		return respondErr(c, err)
	}
	if err := p.Restore(ctx, snap); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteSnapshot handles DELETE /v1/weddings/:id/seating/snapshots/:name.
func (h *SeatingHandler) DeleteSnapshot(c echo.Context) error {
	p, err := h.plan(c)
	if err != nil {
		return err
	}
	if err := h.Snapshots.Delete(c.Request().Context(), p.WeddingID(), c.Param("name")); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
