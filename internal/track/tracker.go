package track

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"scranly/internal/plan"
	"scranly/internal/recipe"
)

// summaryWindow is the number of trailing days averaged in a Summary.
const summaryWindow = 7

// EntrySource reads the per-date plan index.
type EntrySource interface {
	Entries(ctx context.Context, userID, from, to string, planID int64) ([]plan.Entry, error)
	CountEntries(ctx context.Context, userID, to string) (int, error)
}

// MealSource fetches meals in one batch.
type MealSource interface {
	GetMealsByIDs(ctx context.Context, ids []string) (map[string]*recipe.Meal, error)
}

// Day is the planned nutrition for one date.
type Day struct {
	UserID   string  `json:"user_id"`
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Meals    int     `json:"meals"`
}

// Summary is the home screen overview for a user. Averages are nil when no
// day in the window has a planned meal.
type Summary struct {
	UserID        string   `json:"user_id"`
	MealsPlanned  int      `json:"meals_cooked"`
	CaloriesAvg7d *float64 `json:"calories_avg_7d"`
	ProteinAvg7d  *float64 `json:"protein_avg_7d"`
}

// Tracker sums meal nutrition over the plan index.
type Tracker struct {
	entries EntrySource
	meals   MealSource
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewTracker creates a new Tracker.
func NewTracker(entries EntrySource, meals MealSource, log logrus.FieldLogger) *Tracker {
	return &Tracker{entries: entries, meals: meals, log: log, now: time.Now}
}

func (t *Tracker) today() time.Time {
	n := t.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Daily returns one Day per date from today-(days-1) to today, zeros
// included. Every scheduled occurrence of a meal counts.
func (t *Tracker) Daily(ctx context.Context, userID string, days int) ([]Day, error) {
	if days < 1 {
		days = 1
	}
	end := t.today()
	start := end.AddDate(0, 0, -(days - 1))

	byDate, err := t.load(ctx, userID, plan.FormatDate(start), plan.FormatDate(end))
	if err != nil {
		return nil, err
	}

	out := make([]Day, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		ds := plan.FormatDate(d)
		day := Day{UserID: userID, Date: ds}
		if got, ok := byDate[ds]; ok {
			day = got
		}
		out = append(out, day)
	}
	return out, nil
}

// Summary counts the user's planned meals up to today and averages the
// last seven days over the days that have any meals.
func (t *Tracker) Summary(ctx context.Context, userID string) (Summary, error) {
	end := t.today()
	start := end.AddDate(0, 0, -(summaryWindow - 1))
	out := Summary{UserID: userID}

	n, err := t.entries.CountEntries(ctx, userID, plan.FormatDate(end))
	if err != nil {
		return out, err
	}
	out.MealsPlanned = n

	byDate, err := t.load(ctx, userID, plan.FormatDate(start), plan.FormatDate(end))
	if err != nil {
		return out, err
	}

	var kcal, protein float64
	var counted int
	for _, d := range byDate {
		if d.Meals == 0 {
			continue
		}
		kcal += d.Calories
		protein += d.Protein
		counted++
	}
	if counted > 0 {
		avgKcal := kcal / float64(counted)
		avgProtein := protein / float64(counted)
		out.CaloriesAvg7d = &avgKcal
		out.ProteinAvg7d = &avgProtein
	}
	return out, nil
}

// load sums nutrition per date for index rows in [from, to]. Meals that are
// missing or carry malformed nutrition count as zero.
func (t *Tracker) load(ctx context.Context, userID, from, to string) (map[string]Day, error) {
	entries, err := t.entries.Entries(ctx, userID, from, to, 0)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return map[string]Day{}, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MealID)
	}
	meals, err := t.meals.GetMealsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meals: %w", err)
	}

	totals := make(map[string]recipe.Totals, len(meals))
	for id, m := range meals {
		n, err := m.Nutrition()
		if err != nil {
			t.log.WithError(err).WithField("meal_id", id).Warn("ignoring malformed nutrition")
			continue
		}
		totals[id] = n
	}

	byDate := make(map[string]Day)
	for _, e := range entries {
		d, ok := byDate[e.Date]
		if !ok {
			d = Day{UserID: userID, Date: e.Date}
		}
		n := totals[e.MealID]
		d.Calories += n.Kcal
		d.Protein += n.ProteinG
		d.Carbs += n.CarbsG
		d.Fats += n.FatG
		d.Meals++
		byDate[e.Date] = d
	}
	return byDate, nil
}
