package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scranly/internal/plan"
	"scranly/internal/recipe"
)

// EventOut is one scheduled meal.
type EventOut struct {
	ID     string   `json:"id"`
	MealID string   `json:"meal_id"`
	Time   string   `json:"time"`
	Recipe *MealOut `json:"recipe,omitempty"`
}

// DayOut is one plan date.
type DayOut struct {
	Date      string     `json:"date"`
	Breakfast []EventOut `json:"breakfast"`
	Lunch     []EventOut `json:"lunch"`
	Dinner    []EventOut `json:"dinner"`
}

// PlanOut is the client view of a plan.
type PlanOut struct {
	ID         int64    `json:"id"`
	UserID     string   `json:"user_id"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`
	LengthDays int      `json:"length_days"`
	Days       []DayOut `json:"days"`
}

// ListPlans lists the newest plans, optionally for one user.
func (h *Handler) ListPlans(c *gin.Context) {
	limit, err := queryInt(c, "limit", 20, 1, 100)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	plans, err := h.PlanStore.ListByUser(ctx, c.Query("user_id"), limit)
	if err != nil {
		h.logger(c).WithError(err).Error("failed to list plans")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if plans == nil {
		plans = []plan.Plan{}
	}
	c.JSON(http.StatusOK, plans)
}

// CurrentPlan returns the plan covering as_of (default today). A user with
// no such plan gets an empty plan with id -1.
func (h *Handler) CurrentPlan(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.String(http.StatusBadRequest, "user_id is required")
		return
	}
	asOf := plan.FormatDate(h.today())
	if raw := c.Query("as_of"); raw != "" {
		d, err := plan.ParseDate(raw)
		if err != nil {
			c.String(http.StatusBadRequest, fmt.Sprintf("invalid as_of: %q", raw))
			return
		}
		asOf = plan.FormatDate(d)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c).WithField("user_id", userID)
	p, err := h.PlanStore.Covering(ctx, userID, asOf)
	if err != nil {
		log.WithError(err).Error("failed to resolve current plan")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, PlanOut{ID: -1, UserID: userID, StartDate: asOf, EndDate: asOf, Days: []DayOut{}})
		return
	}
	h.writePlan(ctx, c, log, p)
}

// GetPlan returns one plan. An unknown id yields an empty plan, not 404.
func (h *Handler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("plan_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid plan id: %q", c.Param("plan_id")))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c).WithField("plan_id", id)
	p, err := h.PlanStore.Get(ctx, id)
	if err != nil {
		log.WithError(err).Error("failed to get plan")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if p == nil {
		log.Warn("plan not found, returning empty plan")
		today := plan.FormatDate(h.today())
		c.JSON(http.StatusOK, PlanOut{ID: id, UserID: "unknown", StartDate: today, EndDate: today, Days: []DayOut{}})
		return
	}
	h.writePlan(ctx, c, log, p)
}

func (h *Handler) writePlan(ctx context.Context, c *gin.Context, log logrus.FieldLogger, p *plan.Plan) {
	out, err := h.planOut(ctx, log, p, c.Query("expand") == "true")
	if err != nil {
		log.WithError(err).Error("failed to load plan days")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

// planOut reads the plan's days from the per-date index, falling back to
// its payload when it has not been materialized. With expand set every
// event carries its meal.
func (h *Handler) planOut(ctx context.Context, log logrus.FieldLogger, p *plan.Plan, expand bool) (PlanOut, error) {
	out := PlanOut{ID: p.ID, UserID: p.UserID, StartDate: p.StartDate, EndDate: p.EndDate, LengthDays: p.LengthDays, Days: []DayOut{}}

	entries, err := h.PlanStore.Entries(ctx, p.UserID, p.StartDate, p.EndDate, p.ID)
	if err != nil {
		return out, err
	}
	if len(entries) == 0 {
		days, err := plan.ParseDays(p.ID, p.PlanJSON)
		if err != nil {
			log.WithError(err).Warn("plan payload is malformed")
		}
		entries = plan.Flatten(p.ID, p.UserID, days)
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Date != b.Date {
				return a.Date < b.Date
			}
			if a.Slot.Rank() != b.Slot.Rank() {
				return a.Slot.Rank() < b.Slot.Rank()
			}
			return a.Idx < b.Idx
		})
	}

	var meals map[string]*recipe.Meal
	if expand && len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.MealID)
		}
		if meals, err = h.RecipeStore.GetMealsByIDs(ctx, ids); err != nil {
			return out, err
		}
	}

	events := func(entries []plan.Entry) []EventOut {
		evs := make([]EventOut, 0, len(entries))
		for _, e := range entries {
			ev := EventOut{ID: e.EventID(), MealID: e.MealID, Time: e.Slot.DefaultTime()}
			if m, ok := meals[e.MealID]; ok {
				mo := h.mealOut(log, m)
				ev.Recipe = &mo
			}
			evs = append(evs, ev)
		}
		return evs
	}
	for _, d := range plan.GroupByDate(entries) {
		out.Days = append(out.Days, DayOut{
			Date:      d.Date,
			Breakfast: events(d.Breakfast),
			Lunch:     events(d.Lunch),
			Dinner:    events(d.Dinner),
		})
	}
	return out, nil
}

// MaterializePlan rebuilds one plan's per-date index.
func (h *Handler) MaterializePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("plan_id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, fmt.Sprintf("invalid plan id: %q", c.Param("plan_id")))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c).WithField("plan_id", id)
	p, err := h.PlanStore.Get(ctx, id)
	if err != nil {
		log.WithError(err).Error("failed to get plan")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if p == nil {
		c.String(http.StatusNotFound, "Plan not found")
		return
	}

	res, err := h.Materializer.Materialize(ctx, p)
	if err != nil {
		log.WithError(err).Error("failed to materialize plan")
		c.String(http.StatusInternalServerError, fmt.Sprintf("failed to materialize plan: %s", err.Error()))
		return
	}

	body := gin.H{"plan_id": res.PlanID, "user_id": res.UserID, "rows": res.Rows}
	if res.ParseErr != nil {
		body["error"] = res.ParseErr.Error()
	}
	c.JSON(http.StatusOK, body)
}
