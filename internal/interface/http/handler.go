package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
)

// Handler wires the HTTP transport to the dashboard service.
type Handler struct {
	dashboardSvc dashboard.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(dashboardSvc dashboard.Service, logger *slog.Logger) *Handler {
	return &Handler{
		dashboardSvc: dashboardSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

type selectDayRequest struct {
	Day *int `json:"day" binding:"required"`
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// OpenSession mounts a new dashboard and returns its first view.
func (h *Handler) OpenSession(c *gin.Context) {
	wait := wantsWait(c)
	resp, err := h.dashboardSvc.Open(c.Request.Context(), dashboard.OpenRequest{Wait: wait})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetSession returns the current view of a session.
func (h *Handler) GetSession(c *gin.Context) {
	resp, err := h.dashboardSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SelectDay selects a forecast day and re-fetches its actions.
func (h *Handler) SelectDay(c *gin.Context) {
	var req selectDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	wait := wantsWait(c)
	resp, err := h.dashboardSvc.Select(c.Request.Context(), dashboard.SelectRequest{
		SessionID: c.Param("id"),
		Day:       *req.Day,
		Wait:      wait,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	status := http.StatusAccepted
	if wait {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// Interactions lists the resolved actions fetches of a session.
func (h *Handler) Interactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	items, err := h.dashboardSvc.Interactions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interactions": items})
}

// CloseSession evicts a session.
func (h *Handler) CloseSession(c *gin.Context) {
	if err := h.dashboardSvc.Close(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func wantsWait(c *gin.Context) bool {
	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	return wait
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
