package basket

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"scranly/internal/catalog"
	"scranly/internal/ingredient"
	"scranly/internal/plan"
	"scranly/internal/recipe"
)

// PlanSource resolves plans and their per-date index.
type PlanSource interface {
	Covering(ctx context.Context, userID, date string) (*plan.Plan, error)
	Entries(ctx context.Context, userID, from, to string, planID int64) ([]plan.Entry, error)
}

// MealSource fetches meals in one batch.
type MealSource interface {
	GetMealsByIDs(ctx context.Context, ids []string) (map[string]*recipe.Meal, error)
}

// Pricer prices canonical ingredient names.
type Pricer interface {
	Price(ctx context.Context, name string) (catalog.Estimate, *catalog.Item)
}

// Store persists built baskets.
type Store interface {
	Upsert(ctx context.Context, b *Basket) error
	Get(ctx context.Context, userID, weekStart string) (*Basket, error)
}

// Builder turns a user's plan for a week into a priced basket.
type Builder struct {
	plans      PlanSource
	meals      MealSource
	pricer     Pricer
	store      Store
	normalizer *ingredient.Normalizer
	pantry     *ingredient.Pantry
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewBuilder creates a new Builder. rules supplies the pantry staples and
// synonyms used to canonicalise ingredient names.
func NewBuilder(plans PlanSource, meals MealSource, pricer Pricer, store Store, rules ingredient.Rules, log logrus.FieldLogger) *Builder {
	return &Builder{
		plans:      plans,
		meals:      meals,
		pricer:     pricer,
		store:      store,
		normalizer: ingredient.NewNormalizer(rules),
		pantry:     ingredient.NewPantry(rules),
		log:        log,
		now:        time.Now,
	}
}

func emptyResult(planID *int64) Result {
	return Result{Items: []Item{}, SourcePlanID: planID}
}

// Build computes the basket for the week containing weekStart. A user with
// no covering plan gets an empty result and a nil SourcePlanID. Malformed
// meals are logged, listed in Skipped and left out. The returned error is
// only set when the stores cannot be read; the result is still valid then.
func (b *Builder) Build(ctx context.Context, userID string, weekStart time.Time) (Result, error) {
	ws := plan.SundayOfWeek(weekStart)
	from, to := plan.FormatDate(ws), plan.FormatDate(plan.WeekEnd(ws))
	log := b.log.WithFields(logrus.Fields{"user_id": userID, "week_start": from})

	p, err := b.plans.Covering(ctx, userID, from)
	if err != nil {
		return emptyResult(nil), fmt.Errorf("failed to resolve plan: %w", err)
	}
	if p == nil {
		log.Debug("no plan covers this week")
		return emptyResult(nil), nil
	}
	planID := p.ID
	res := emptyResult(&planID)
	log = log.WithField("plan_id", p.ID)

	mealIDs, err := b.mealIDs(ctx, p, from, to)
	if err != nil {
		return res, err
	}
	if len(mealIDs) == 0 {
		log.Debug("plan has no meals this week")
		return res, nil
	}

	meals, err := b.meals.GetMealsByIDs(ctx, mealIDs)
	if err != nil {
		return res, fmt.Errorf("failed to fetch meals: %w", err)
	}

	index := make(map[string]int)
	for _, id := range mealIDs {
		meal, ok := meals[id]
		if !ok {
			log.WithField("meal_id", id).Warn("planned meal not found")
			res.Skipped = append(res.Skipped, fmt.Errorf("meal %s not found", id))
			continue
		}
		ings, err := meal.Ingredients()
		if err != nil {
			log.WithError(err).WithField("meal_id", id).Warn("skipping meal with malformed ingredients")
			res.Skipped = append(res.Skipped, err)
			continue
		}
		for _, ing := range ings {
			b.add(ctx, &res, index, ing)
		}
	}

	res.EstimatedTotal = Total(res.Items)
	log.WithFields(logrus.Fields{"items": len(res.Items), "estimated_total": res.EstimatedTotal}).Info("basket built")
	return res, nil
}

// mealIDs lists the meals scheduled in [from, to], one per slot item. The
// per-date index is the fast path and is read across all of the user's
// plans, since materializing a newer plan takes over the dates it shares
// with older ones. The covering plan's payload is read only when the week
// has no index rows at all.
func (b *Builder) mealIDs(ctx context.Context, p *plan.Plan, from, to string) ([]string, error) {
	entries, err := b.plans.Entries(ctx, p.UserID, from, to, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan index: %w", err)
	}
	if len(entries) > 0 {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.MealID)
		}
		return ids, nil
	}

	days, err := plan.ParseDays(p.ID, p.PlanJSON)
	if err != nil {
		b.log.WithError(err).WithField("plan_id", p.ID).Warn("plan payload is malformed")
	}
	return plan.MealIDs(days, from, to), nil
}

// add counts one mention of ing. Pantry staples are matched before
// synonyms apply, so "pepper" is a staple but "red pepper" is not.
func (b *Builder) add(ctx context.Context, res *Result, index map[string]int, ing recipe.Ingredient) {
	cleaned := b.normalizer.Clean(ing.Name)
	if cleaned == "" || b.pantry.Excludes(cleaned) {
		return
	}

	name := b.normalizer.Canonical(ing.Name)
	i, ok := index[name]
	if !ok {
		est, cat := b.pricer.Price(ctx, name)
		if cat == nil && ing.PricePerPack > 0 {
			est.PricePerPack = ing.PricePerPack
		}
		it := Item{
			Name:     name,
			NeedUnit: NeedUnit,
			Aisle:    ing.Aisle,
			Emoji:    ing.Emoji,
			Estimate: est,
		}
		if it.Aisle == "" && cat != nil {
			it.Aisle = cat.Aisle
		}
		if it.Emoji == "" && cat != nil {
			it.Emoji = cat.Emoji
		}
		if it.Aisle == "" {
			it.Aisle = DefaultAisle
		}
		if it.Emoji == "" {
			it.Emoji = DefaultEmoji
		}
		res.Items = append(res.Items, it)
		i = len(res.Items) - 1
		index[name] = i
	}
	res.Items[i].NeedAmount += 1.0
}

// Rebuild builds the basket and stores it, replacing any earlier basket for
// the same user and week. A failed store write is logged and the built
// basket is still returned, unsaved.
func (b *Builder) Rebuild(ctx context.Context, userID string, weekStart time.Time) (*Basket, error) {
	res, err := b.Build(ctx, userID, weekStart)
	if err != nil {
		return nil, err
	}

	ws := plan.SundayOfWeek(weekStart)
	bk := &Basket{
		UserID:         userID,
		WeekStart:      plan.FormatDate(ws),
		WeekEnd:        plan.FormatDate(plan.WeekEnd(ws)),
		Items:          res.Items,
		EstimatedTotal: res.EstimatedTotal,
		SourcePlanID:   res.SourcePlanID,
		CreatedAt:      b.now().UTC(),
	}
	if err := b.store.Upsert(ctx, bk); err != nil {
		bk.ID = 0
		b.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "week_start": bk.WeekStart}).
			Warn("could not save basket, returning it anyway")
	}
	return bk, nil
}

// Stored returns the saved basket for the week containing weekStart, or nil.
func (b *Builder) Stored(ctx context.Context, userID string, weekStart time.Time) (*Basket, error) {
	return b.store.Get(ctx, userID, plan.FormatDate(plan.SundayOfWeek(weekStart)))
}
