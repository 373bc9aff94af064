package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Track returns per-day planned nutrition for the trailing days (default 7).
func (h *Handler) Track(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.String(http.StatusBadRequest, "user_id is required")
		return
	}
	days, err := queryInt(c, "days", 7, 1, 366)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.Tracker.Daily(ctx, userID, days)
	if err != nil {
		h.logger(c).WithError(err).WithField("user_id", userID).Error("failed to load nutrition")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

// StatsSummary returns the home screen overview for a user.
func (h *Handler) StatsSummary(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.String(http.StatusBadRequest, "user_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	s, err := h.Tracker.Summary(ctx, userID)
	if err != nil {
		h.logger(c).WithError(err).WithField("user_id", userID).Error("failed to compute summary")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	c.JSON(http.StatusOK, s)
}
