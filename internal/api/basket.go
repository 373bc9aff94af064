package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scranly/internal/basket"
	"scranly/internal/plan"
)

const noMealsMessage = "No meals found for this week. Plan meals to generate your basket."

// BasketOut is the client view of a weekly basket.
type BasketOut struct {
	UserID         string        `json:"user_id"`
	WeekStart      string        `json:"week_start"`
	WeekEnd        string        `json:"week_end"`
	Items          []basket.Item `json:"items"`
	EstimatedTotal float64       `json:"estimated_total"`
	SourcePlanID   *int64        `json:"source_plan_id"`
	Stored         bool          `json:"stored"`
	Message        string        `json:"message,omitempty"`
}

// basketParams reads user_id and week_start, defaulting the week to the
// current one. It writes a 400 and returns false on bad input.
func (h *Handler) basketParams(c *gin.Context) (string, time.Time, bool) {
	userID := c.Query("user_id")
	if userID == "" {
		c.String(http.StatusBadRequest, "user_id is required")
		return "", time.Time{}, false
	}
	week := h.today()
	if raw := c.Query("week_start"); raw != "" {
		d, err := plan.ParseDate(raw)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid week_start: %q", raw))
			return "", time.Time{}, false
		}
		week = d
	}
	return userID, plan.SundayOfWeek(week), true
}

func emptyBasket(userID string, ws time.Time, message string) BasketOut {
	return BasketOut{
		UserID:    userID,
		WeekStart: plan.FormatDate(ws),
		WeekEnd:   plan.FormatDate(plan.WeekEnd(ws)),
		Items:     []basket.Item{},
		Message:   message,
	}
}

// storedOut renders a basket returned by the store or by a rebuild. Stored
// is false when the rebuild could not save it.
func storedOut(b *basket.Basket) BasketOut {
	out := BasketOut{
		UserID:         b.UserID,
		WeekStart:      b.WeekStart,
		WeekEnd:        b.WeekEnd,
		Items:          b.Items,
		EstimatedTotal: b.EstimatedTotal,
		SourcePlanID:   b.SourcePlanID,
		Stored:         b.Saved(),
	}
	if len(out.Items) == 0 {
		out.Items = []basket.Item{}
		out.Message = noMealsMessage
	}
	return out
}

// GetBasket builds the basket for the week live, so plan changes show up
// without a rebuild. When the build fails the stored basket for the week is
// returned instead, and without one an empty basket with a message.
func (h *Handler) GetBasket(c *gin.Context) {
	userID, ws, ok := h.basketParams(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c).WithField("user_id", userID).WithField("week_start", plan.FormatDate(ws))
	res, err := h.Baskets.Build(ctx, userID, ws)
	if err != nil {
		log.WithError(err).Error("failed to build basket")
		stored, serr := h.Baskets.Stored(ctx, userID, ws)
		if serr != nil {
			log.WithError(serr).Warn("failed to read stored basket")
		}
		if stored != nil {
			c.JSON(http.StatusOK, storedOut(stored))
			return
		}
		c.JSON(http.StatusOK, emptyBasket(userID, ws, fmt.Sprintf("Basket error: %s", err.Error())))
		return
	}
	if len(res.Items) == 0 {
		out := emptyBasket(userID, ws, noMealsMessage)
		out.SourcePlanID = res.SourcePlanID
		c.JSON(http.StatusOK, out)
		return
	}

	out := emptyBasket(userID, ws, "")
	out.Items = res.Items
	out.EstimatedTotal = res.EstimatedTotal
	out.SourcePlanID = res.SourcePlanID
	c.JSON(http.StatusOK, out)
}

// RebuildBasket builds and stores the basket for the week. A basket that
// could not be saved is still returned, with stored set to false.
func (h *Handler) RebuildBasket(c *gin.Context) {
	userID, ws, ok := h.basketParams(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	b, err := h.Baskets.Rebuild(ctx, userID, ws)
	if err != nil {
		h.logger(c).WithError(err).WithField("user_id", userID).Error("failed to rebuild basket")
		c.JSON(http.StatusOK, emptyBasket(userID, ws, fmt.Sprintf("Error rebuilding basket: %s", err.Error())))
		return
	}
	c.JSON(http.StatusOK, storedOut(b))
}
