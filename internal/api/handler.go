package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scranly/internal/basket"
	"scranly/internal/ingredient"
	"scranly/internal/plan"
	"scranly/internal/recipe"
	"scranly/internal/track"
)

// requestTimeout bounds the store work done for one request.
const requestTimeout = 10 * time.Second

// RecipeStore defines the interface for meal data operations.
type RecipeStore interface {
	GetMeal(ctx context.Context, id string) (*recipe.Meal, error)
	GetMealsByIDs(ctx context.Context, ids []string) (map[string]*recipe.Meal, error)
	ListMeals(ctx context.Context, query string, limit, offset int) ([]*recipe.Meal, error)
	RandomMeals(ctx context.Context, limit int) ([]*recipe.Meal, error)
}

// PlanStore defines the interface for plan reads.
type PlanStore interface {
	Get(ctx context.Context, id int64) (*plan.Plan, error)
	Covering(ctx context.Context, userID, date string) (*plan.Plan, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]plan.Plan, error)
	Entries(ctx context.Context, userID, from, to string, planID int64) ([]plan.Entry, error)
}

// Materializer rebuilds a plan's per-date index.
type Materializer interface {
	Materialize(ctx context.Context, p *plan.Plan) (plan.MaterializeResult, error)
}

// BasketBuilder builds, stores and reads weekly baskets.
type BasketBuilder interface {
	Build(ctx context.Context, userID string, weekStart time.Time) (basket.Result, error)
	Rebuild(ctx context.Context, userID string, weekStart time.Time) (*basket.Basket, error)
	Stored(ctx context.Context, userID string, weekStart time.Time) (*basket.Basket, error)
}

// Tracker reports planned nutrition.
type Tracker interface {
	Daily(ctx context.Context, userID string, days int) ([]track.Day, error)
	Summary(ctx context.Context, userID string) (track.Summary, error)
}

// Handler handles HTTP requests.
type Handler struct {
	RecipeStore  RecipeStore
	PlanStore    PlanStore
	Materializer Materializer
	Baskets      BasketBuilder
	Tracker      Tracker
	Normalizer   *ingredient.Normalizer
	Pantry       *ingredient.Pantry
	ImageBaseURL string
	Log          logrus.FieldLogger
	Now          func() time.Time
}

// NewHandler creates a new Handler. rules is used to annotate recipe
// ingredient lines the same way baskets read them.
func NewHandler(recipeStore RecipeStore, planStore PlanStore, materializer Materializer, baskets BasketBuilder, tracker Tracker, rules ingredient.Rules, imageBaseURL string, log logrus.FieldLogger) *Handler {
	return &Handler{
		RecipeStore:  recipeStore,
		PlanStore:    planStore,
		Materializer: materializer,
		Baskets:      baskets,
		Tracker:      tracker,
		Normalizer:   ingredient.NewNormalizer(rules),
		Pantry:       ingredient.NewPantry(rules),
		ImageBaseURL: imageBaseURL,
		Log:          log,
		Now:          time.Now,
	}
}

func (h *Handler) today() time.Time {
	n := h.Now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// logger returns the handler logger tagged with the request id.
func (h *Handler) logger(c *gin.Context) logrus.FieldLogger {
	return h.Log.WithField("request_id", c.GetString(requestIDKey))
}

// Health reports that the server is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MealOut is the client view of a meal.
type MealOut struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Desc        string          `json:"desc"`
	ImageURL    *string         `json:"image_url"`
	TimeMinutes int             `json:"time_minutes"`
	Calories    float64         `json:"calories"`
	ProteinG    float64         `json:"protein_g"`
	CarbsG      float64         `json:"carbs_g"`
	FatG        float64         `json:"fat_g"`
	Tags        []string        `json:"tags"`
	Cuisine     *string         `json:"cuisine"`
	Diet        *string         `json:"diet"`
	Allergens   []string        `json:"allergens"`
	Ingredients []IngredientOut `json:"ingredients"`
}

// IngredientOut is one ingredient line of a meal with its normalized name
// and quantity. Pantry lines are left out of baskets.
type IngredientOut struct {
	Name         string  `json:"ingredient"`
	Amount       string  `json:"amount,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Aisle        string  `json:"aisle,omitempty"`
	Emoji        string  `json:"emoji,omitempty"`
	Normalized   string  `json:"normalized"`
	Quantity     float64 `json:"quantity"`
	QuantityUnit string  `json:"quantity_unit"`
	Pantry       bool    `json:"pantry"`
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func (h *Handler) ingredientOut(ing recipe.Ingredient) IngredientOut {
	qty, unit := ingredient.ParseQuantity(strings.TrimSpace(ing.Amount + " " + ing.Unit))
	return IngredientOut{
		Name:         ing.Name,
		Amount:       ing.Amount,
		Unit:         ing.Unit,
		Aisle:        ing.Aisle,
		Emoji:        ing.Emoji,
		Normalized:   h.Normalizer.Normalize(ing.Name),
		Quantity:     qty,
		QuantityUnit: unit,
		Pantry:       h.Pantry.Excludes(h.Normalizer.Clean(ing.Name)),
	}
}

func (h *Handler) imageURL(path string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	if h.ImageBaseURL == "" {
		return nil
	}
	u := h.ImageBaseURL + "/" + strings.TrimLeft(path, "/")
	return &u
}

// mealOut shapes m for clients. Malformed nutrition or ingredients are
// logged and shown as empty.
func (h *Handler) mealOut(log logrus.FieldLogger, m *recipe.Meal) MealOut {
	out := MealOut{
		ID:          m.ID,
		Title:       m.Title,
		Desc:        m.Description,
		ImageURL:    h.imageURL(m.ImagePath),
		TimeMinutes: m.TimeMinutes,
		Tags:        m.Tags(),
		Cuisine:     optional(m.Cuisine),
		Diet:        optional(m.Diet),
		Allergens:   m.Allergens(),
		Ingredients: []IngredientOut{},
	}

	n, err := m.Nutrition()
	if err != nil {
		log.WithError(err).WithField("meal_id", m.ID).Warn("malformed nutrition")
	}
	out.Calories, out.ProteinG, out.CarbsG, out.FatG = n.Kcal, n.ProteinG, n.CarbsG, n.FatG

	ings, err := m.Ingredients()
	if err != nil {
		log.WithError(err).WithField("meal_id", m.ID).Warn("malformed ingredients")
	}
	for _, ing := range ings {
		out.Ingredients = append(out.Ingredients, h.ingredientOut(ing))
	}
	return out
}

// queryInt reads an integer query parameter, clamped to [min, max].
func queryInt(c *gin.Context, key string, def, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v, nil
}

// ListRecipes pages through meals, optionally filtered by title or
// description.
func (h *Handler) ListRecipes(c *gin.Context) {
	page, err := queryInt(c, "page", 1, 1, 1<<20)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(c, "limit", 50, 1, 200)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c)
	meals, err := h.RecipeStore.ListMeals(ctx, c.Query("q"), limit, (page-1)*limit)
	if err != nil {
		log.WithError(err).Error("failed to list meals")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}

	data := make([]MealOut, 0, len(meals))
	for _, m := range meals {
		data = append(data, h.mealOut(log, m))
	}
	c.JSON(http.StatusOK, gin.H{"data": data, "page": page, "limit": limit})
}

// GetRecipe returns one meal.
func (h *Handler) GetRecipe(c *gin.Context) {
	id := c.Param("recipe_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c)
	m, err := h.RecipeStore.GetMeal(ctx, id)
	if err != nil {
		log.WithError(err).WithField("meal_id", id).Error("failed to get meal")
		c.String(http.StatusInternalServerError, fmt.Sprintf("database error: %s", err.Error()))
		return
	}
	if m == nil {
		c.String(http.StatusNotFound, "Recipe not found")
		return
	}
	c.JSON(http.StatusOK, h.mealOut(log, m))
}
