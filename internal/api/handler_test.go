package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scranly/internal/basket"
	"scranly/internal/catalog"
	"scranly/internal/ingredient"
	"scranly/internal/plan"
	"scranly/internal/recipe"
	"scranly/internal/track"
)

// mockRecipeStore is a mock of the meal store.
type mockRecipeStore struct {
	meals     map[string]*recipe.Meal
	returnErr error
	gotQuery  string
	gotLimit  int
	gotOffset int
}

func (m *mockRecipeStore) GetMeal(ctx context.Context, id string) (*recipe.Meal, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.meals[id], nil
}

func (m *mockRecipeStore) GetMealsByIDs(ctx context.Context, ids []string) (map[string]*recipe.Meal, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	out := make(map[string]*recipe.Meal)
	for _, id := range ids {
		if meal, ok := m.meals[id]; ok {
			out[id] = meal
		}
	}
	return out, nil
}

func (m *mockRecipeStore) ListMeals(ctx context.Context, query string, limit, offset int) ([]*recipe.Meal, error) {
	m.gotQuery, m.gotLimit, m.gotOffset = query, limit, offset
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var out []*recipe.Meal
	for _, meal := range m.meals {
		out = append(out, meal)
	}
	return out, nil
}

func (m *mockRecipeStore) RandomMeals(ctx context.Context, limit int) ([]*recipe.Meal, error) {
	m.gotLimit = limit
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var out []*recipe.Meal
	for _, meal := range m.meals {
		if len(out) == limit {
			break
		}
		out = append(out, meal)
	}
	return out, nil
}

// mockPlanStore is a mock of the plan store.
type mockPlanStore struct {
	plans     map[int64]*plan.Plan
	entries   []plan.Entry
	returnErr error
}

func (m *mockPlanStore) Get(ctx context.Context, id int64) (*plan.Plan, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.plans[id], nil
}

func (m *mockPlanStore) Covering(ctx context.Context, userID, date string) (*plan.Plan, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	for _, p := range m.plans {
		if p.UserID == userID && p.StartDate <= date && p.EndDate >= date {
			return p, nil
		}
	}
	return nil, nil
}

func (m *mockPlanStore) ListByUser(ctx context.Context, userID string, limit int) ([]plan.Plan, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	var out []plan.Plan
	for _, p := range m.plans {
		if userID == "" || p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPlanStore) Entries(ctx context.Context, userID, from, to string, planID int64) ([]plan.Entry, error) {
	if m.returnErr != nil {
		return nil, m.returnErr
	}
	return m.entries, nil
}

// mockMaterializer is a mock of the plan materializer.
type mockMaterializer struct {
	result    plan.MaterializeResult
	returnErr error
}

func (m *mockMaterializer) Materialize(ctx context.Context, p *plan.Plan) (plan.MaterializeResult, error) {
	if m.returnErr != nil {
		return plan.MaterializeResult{}, m.returnErr
	}
	return m.result, nil
}

// mockBaskets is a mock of the basket builder.
type mockBaskets struct {
	stored     *basket.Basket
	storedErr  error
	result     basket.Result
	buildErr   error
	rebuilt    *basket.Basket
	rebuildErr error
	gotWeek    time.Time
}

func (m *mockBaskets) Build(ctx context.Context, userID string, weekStart time.Time) (basket.Result, error) {
	m.gotWeek = weekStart
	return m.result, m.buildErr
}

func (m *mockBaskets) Rebuild(ctx context.Context, userID string, weekStart time.Time) (*basket.Basket, error) {
	m.gotWeek = weekStart
	return m.rebuilt, m.rebuildErr
}

func (m *mockBaskets) Stored(ctx context.Context, userID string, weekStart time.Time) (*basket.Basket, error) {
	return m.stored, m.storedErr
}

// mockTracker is a mock of the nutrition tracker.
type mockTracker struct {
	days      []track.Day
	summary   track.Summary
	returnErr error
	gotDays   int
}

func (m *mockTracker) Daily(ctx context.Context, userID string, days int) ([]track.Day, error) {
	m.gotDays = days
	return m.days, m.returnErr
}

func (m *mockTracker) Summary(ctx context.Context, userID string) (track.Summary, error) {
	return m.summary, m.returnErr
}

type testServer struct {
	recipes *mockRecipeStore
	plans   *mockPlanStore
	mat     *mockMaterializer
	baskets *mockBaskets
	tracker *mockTracker
	router  *gin.Engine
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := &testServer{
		recipes: &mockRecipeStore{meals: map[string]*recipe.Meal{}},
		plans:   &mockPlanStore{plans: map[int64]*plan.Plan{}},
		mat:     &mockMaterializer{},
		baskets: &mockBaskets{},
		tracker: &mockTracker{},
	}
	h := NewHandler(s.recipes, s.plans, s.mat, s.baskets, s.tracker, ingredient.DefaultRules(), "https://cdn.test", log)
	h.Now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	s.router = NewRouter(h, []string{"http://localhost:8081"})
	return s
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	s := newTestServer()

	w := s.do("GET", "/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok": true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req, _ := http.NewRequest("GET", "/v1/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestGetBasket(t *testing.T) {
	planID := int64(7)
	items := []basket.Item{{Name: "pepper", NeedAmount: 2, NeedUnit: basket.NeedUnit, Aisle: "Other", Emoji: "🛒", Estimate: catalog.DefaultEstimate()}}

	t.Run("MissingUser", func(t *testing.T) {
		s := newTestServer()
		w := s.do("GET", "/v1/basket")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("BadWeek", func(t *testing.T) {
		s := newTestServer()
		w := s.do("GET", "/v1/basket?user_id=u1&week_start=next-week")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("LiveBuild", func(t *testing.T) {
		s := newTestServer()
		s.baskets.stored = &basket.Basket{ID: 4, UserID: "u1", WeekStart: "2024-01-07", WeekEnd: "2024-01-13", Items: []basket.Item{}}
		s.baskets.result = basket.Result{Items: items, EstimatedTotal: 2, SourcePlanID: &planID}

		// a stale stored basket does not hide the live result
		w := s.do("GET", "/v1/basket?user_id=u1&week_start=2024-01-09")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.False(t, out.Stored)
		assert.Equal(t, items, out.Items)
		assert.Equal(t, "2024-01-07", out.WeekStart)
		assert.Equal(t, "2024-01-13", out.WeekEnd)
		assert.Equal(t, "2024-01-07", plan.FormatDate(s.baskets.gotWeek))
		assert.InDelta(t, 2.0, out.EstimatedTotal, 1e-9)
	})

	t.Run("StoredOnBuildFailure", func(t *testing.T) {
		s := newTestServer()
		s.baskets.buildErr = errors.New("connection refused")
		s.baskets.stored = &basket.Basket{ID: 4, UserID: "u1", WeekStart: "2024-01-07", WeekEnd: "2024-01-13", Items: items, EstimatedTotal: 2, SourcePlanID: &planID}

		w := s.do("GET", "/v1/basket?user_id=u1")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.True(t, out.Stored)
		assert.Equal(t, items, out.Items)
		assert.Equal(t, &planID, out.SourcePlanID)
		assert.Empty(t, out.Message)
	})

	t.Run("NoMeals", func(t *testing.T) {
		s := newTestServer()
		s.baskets.result = basket.Result{Items: []basket.Item{}}

		w := s.do("GET", "/v1/basket?user_id=u1")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.Empty(t, out.Items)
		assert.NotNil(t, out.Items)
		assert.Nil(t, out.SourcePlanID)
		assert.Equal(t, noMealsMessage, out.Message)
		// today is Wednesday 2024-01-10
		assert.Equal(t, "2024-01-07", out.WeekStart)
	})

	t.Run("BuildFailure", func(t *testing.T) {
		s := newTestServer()
		s.baskets.buildErr = errors.New("connection refused")
		s.baskets.storedErr = errors.New("connection refused")

		w := s.do("GET", "/v1/basket?user_id=u1")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.Empty(t, out.Items)
		assert.Zero(t, out.EstimatedTotal)
		assert.Contains(t, out.Message, "connection refused")
	})
}

func TestRebuildBasket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		s := newTestServer()
		s.baskets.rebuilt = &basket.Basket{ID: 3, UserID: "u1", WeekStart: "2024-01-07", WeekEnd: "2024-01-13", Items: []basket.Item{}}

		w := s.do("POST", "/v1/basket/rebuild?user_id=u1&week_start=2024-01-13")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.True(t, out.Stored)
		assert.Equal(t, noMealsMessage, out.Message)
		assert.Equal(t, "2024-01-07", plan.FormatDate(s.baskets.gotWeek))
	})

	t.Run("NotSaved", func(t *testing.T) {
		s := newTestServer()
		s.baskets.rebuilt = &basket.Basket{UserID: "u1", WeekStart: "2024-01-07", WeekEnd: "2024-01-13", Items: []basket.Item{{Name: "rice", NeedAmount: 1}}, EstimatedTotal: 1}

		w := s.do("POST", "/v1/basket/rebuild?user_id=u1")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.False(t, out.Stored)
		assert.Len(t, out.Items, 1)
		assert.Empty(t, out.Message)
	})

	t.Run("Failure", func(t *testing.T) {
		s := newTestServer()
		s.baskets.rebuildErr = errors.New("connection refused")

		w := s.do("POST", "/v1/basket/rebuild?user_id=u1")
		require.Equal(t, http.StatusOK, w.Code)
		var out BasketOut
		decode(t, w, &out)
		assert.Empty(t, out.Items)
		assert.Contains(t, out.Message, "Error rebuilding basket")
	})
}

func TestGetPlan(t *testing.T) {
	p := &plan.Plan{ID: 1, UserID: "u1", StartDate: "2024-01-07", EndDate: "2024-01-13", LengthDays: 7,
		PlanJSON: `{"days": [{"date": "2024-01-08", "dinner": [{"meal_id": "m2"}]}, {"date": "2024-01-07", "lunch": [{"meal_id": "m1"}]}]}`}

	t.Run("NotFound", func(t *testing.T) {
		s := newTestServer()
		w := s.do("GET", "/v1/plans/99")
		require.Equal(t, http.StatusOK, w.Code)
		var out PlanOut
		decode(t, w, &out)
		assert.Equal(t, int64(99), out.ID)
		assert.Equal(t, "unknown", out.UserID)
		assert.Empty(t, out.Days)
	})

	t.Run("BadID", func(t *testing.T) {
		s := newTestServer()
		w := s.do("GET", "/v1/plans/abc")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("FromIndexExpanded", func(t *testing.T) {
		s := newTestServer()
		s.plans.plans[1] = p
		s.plans.entries = []plan.Entry{
			{PlanID: 1, UserID: "u1", Date: "2024-01-07", Slot: plan.Breakfast, Idx: 0, MealID: "m1"},
			{PlanID: 1, UserID: "u1", Date: "2024-01-07", Slot: plan.Dinner, Idx: 2, MealID: "m2"},
		}
		s.recipes.meals["m1"] = &recipe.Meal{ID: "m1", Title: "Porridge", ImagePath: "/img/m1.jpg", NutritionJSON: `{"totals": {"kcal": 350}}`}

		w := s.do("GET", "/v1/plans/1?expand=true")
		require.Equal(t, http.StatusOK, w.Code)
		var out PlanOut
		decode(t, w, &out)
		require.Len(t, out.Days, 1)
		day := out.Days[0]
		require.Len(t, day.Breakfast, 1)
		assert.Equal(t, "1|2024-01-07|breakfast|0", day.Breakfast[0].ID)
		assert.Equal(t, "08:00", day.Breakfast[0].Time)
		require.NotNil(t, day.Breakfast[0].Recipe)
		assert.Equal(t, "Porridge", day.Breakfast[0].Recipe.Title)
		assert.Equal(t, 350.0, day.Breakfast[0].Recipe.Calories)
		require.NotNil(t, day.Breakfast[0].Recipe.ImageURL)
		assert.Equal(t, "https://cdn.test/img/m1.jpg", *day.Breakfast[0].Recipe.ImageURL)
		assert.Empty(t, day.Lunch)
		require.Len(t, day.Dinner, 1)
		assert.Equal(t, "1|2024-01-07|dinner|2", day.Dinner[0].ID)
		assert.Nil(t, day.Dinner[0].Recipe)
	})

	t.Run("FromPayload", func(t *testing.T) {
		s := newTestServer()
		s.plans.plans[1] = p

		w := s.do("GET", "/v1/plans/1")
		require.Equal(t, http.StatusOK, w.Code)
		var out PlanOut
		decode(t, w, &out)
		require.Len(t, out.Days, 2)
		assert.Equal(t, "2024-01-07", out.Days[0].Date)
		assert.Equal(t, "m1", out.Days[0].Lunch[0].MealID)
		assert.Nil(t, out.Days[0].Lunch[0].Recipe)
		assert.Equal(t, "2024-01-08", out.Days[1].Date)
	})

	t.Run("StoreFailure", func(t *testing.T) {
		s := newTestServer()
		s.plans.returnErr = errors.New("connection refused")
		w := s.do("GET", "/v1/plans/1")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCurrentPlan(t *testing.T) {
	s := newTestServer()
	s.plans.plans[1] = &plan.Plan{ID: 1, UserID: "u1", StartDate: "2024-01-07", EndDate: "2024-01-13", LengthDays: 7}

	w := s.do("GET", "/v1/plans/current?user_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	var out PlanOut
	decode(t, w, &out)
	assert.Equal(t, int64(1), out.ID)

	w = s.do("GET", "/v1/plans/current?user_id=u1&as_of=2024-02-01")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &out)
	assert.Equal(t, int64(-1), out.ID)
	assert.Equal(t, "2024-02-01", out.StartDate)
	assert.Empty(t, out.Days)

	w = s.do("GET", "/v1/plans/current")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPlans(t *testing.T) {
	s := newTestServer()

	w := s.do("GET", "/v1/plans?user_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do("GET", "/v1/plans?limit=lots")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaterializePlan(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		s := newTestServer()
		w := s.do("POST", "/v1/plans/5/materialize")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Success", func(t *testing.T) {
		s := newTestServer()
		s.plans.plans[5] = &plan.Plan{ID: 5, UserID: "u1"}
		s.mat.result = plan.MaterializeResult{PlanID: 5, UserID: "u1", Rows: 12}

		w := s.do("POST", "/v1/plans/5/materialize")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"plan_id": 5, "user_id": "u1", "rows": 12}`, w.Body.String())
	})

	t.Run("Malformed", func(t *testing.T) {
		s := newTestServer()
		s.plans.plans[5] = &plan.Plan{ID: 5, UserID: "u1"}
		s.mat.result = plan.MaterializeResult{PlanID: 5, UserID: "u1", ParseErr: errors.New("bad json")}

		w := s.do("POST", "/v1/plans/5/materialize")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "bad json")
	})
}

func TestRecipes(t *testing.T) {
	s := newTestServer()
	s.recipes.meals["m1"] = &recipe.Meal{ID: "m1", Title: "Porridge", ImagePath: "https://img.test/p.jpg", IngredientsJSON: `[{"ingredient": "oats"}]`}

	w := s.do("GET", "/v1/recipes?q=porr&page=3&limit=10")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "porr", s.recipes.gotQuery)
	assert.Equal(t, 10, s.recipes.gotLimit)
	assert.Equal(t, 20, s.recipes.gotOffset)

	var page struct {
		Data []MealOut `json:"data"`
		Page int       `json:"page"`
	}
	decode(t, w, &page)
	assert.Equal(t, 3, page.Page)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "https://img.test/p.jpg", *page.Data[0].ImageURL)
	assert.Equal(t, "oats", page.Data[0].Ingredients[0].Name)

	w = s.do("GET", "/v1/recipes/m1")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do("GET", "/v1/recipes/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRecipe_Details(t *testing.T) {
	s := newTestServer()
	s.recipes.meals["m2"] = &recipe.Meal{
		ID: "m2", Title: "Chilli", Description: "smoky", TimeMinutes: 40,
		TagsRaw: `["vegan", "batch"]`, Cuisine: "Mexican", AllergensRaw: "celery, mustard",
		IngredientsJSON: `[
			{"ingredient": "2x Bell Peppers", "amount": 2},
			{"ingredient": "Black beans", "amount": "0.4", "unit": "kg"},
			{"ingredient": "Salt"}
		]`,
	}

	w := s.do("GET", "/v1/recipes/m2")
	require.Equal(t, http.StatusOK, w.Code)
	var out MealOut
	decode(t, w, &out)
	assert.Equal(t, "smoky", out.Desc)
	assert.Equal(t, 40, out.TimeMinutes)
	assert.Equal(t, []string{"vegan", "batch"}, out.Tags)
	require.NotNil(t, out.Cuisine)
	assert.Equal(t, "Mexican", *out.Cuisine)
	assert.Nil(t, out.Diet)
	assert.Equal(t, []string{"celery", "mustard"}, out.Allergens)
	assert.Nil(t, out.ImageURL)

	require.Len(t, out.Ingredients, 3)
	peppers, beans, salt := out.Ingredients[0], out.Ingredients[1], out.Ingredients[2]
	assert.Equal(t, "bell peppers", peppers.Normalized)
	assert.Equal(t, 2.0, peppers.Quantity)
	assert.Equal(t, "count", peppers.QuantityUnit)
	assert.False(t, peppers.Pantry)

	assert.Equal(t, "black beans", beans.Normalized)
	assert.InDelta(t, 400.0, beans.Quantity, 1e-9)
	assert.Equal(t, "g", beans.QuantityUnit)

	assert.True(t, salt.Pantry)
	assert.Equal(t, 1.0, salt.Quantity)
}

func TestRecipeDeck(t *testing.T) {
	s := newTestServer()
	for _, id := range []string{"a", "b", "c"} {
		s.recipes.meals[id] = &recipe.Meal{ID: id, Title: "Meal " + id}
	}

	w := s.do("GET", "/v1/recipes/deck?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	var out []MealOut
	decode(t, w, &out)
	assert.Len(t, out, 2)
	assert.Equal(t, 2, s.recipes.gotLimit)

	w = s.do("GET", "/v1/recipes/deck?limit=1000")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 200, s.recipes.gotLimit)

	w = s.do("GET", "/v1/recipes/deck")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 40, s.recipes.gotLimit)

	s.recipes.returnErr = errors.New("db down")
	w = s.do("GET", "/v1/recipes/deck")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecipeImages(t *testing.T) {
	s := newTestServer()
	s.recipes.meals["1"] = &recipe.Meal{ID: "1", ImagePath: "img/1.jpg"}
	s.recipes.meals["2"] = &recipe.Meal{ID: "2"}

	w := s.do("GET", "/v1/recipes/images?ids=1&ids=2&ids=99")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"images": {"1": "https://cdn.test/img/1.jpg", "2": null, "99": null}}`, w.Body.String())

	w = s.do("GET", "/v1/recipes/images")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"images": {}}`, w.Body.String())
}

func TestRecipeImage(t *testing.T) {
	s := newTestServer()
	s.recipes.meals["1"] = &recipe.Meal{ID: "1", ImagePath: "https://img.test/1.jpg"}

	w := s.do("GET", "/v1/recipes/1/image")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url": "https://img.test/1.jpg"}`, w.Body.String())

	w = s.do("GET", "/v1/recipes/404/image")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url": null}`, w.Body.String())

	s.recipes.returnErr = errors.New("db down")
	w = s.do("GET", "/v1/recipes/1/image")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"image_url": null}`, w.Body.String())
}

func TestTrack(t *testing.T) {
	s := newTestServer()
	s.tracker.days = []track.Day{{UserID: "u1", Date: "2024-01-10", Calories: 1200}}

	w := s.do("GET", "/v1/track?user_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 7, s.tracker.gotDays)
	var days []track.Day
	decode(t, w, &days)
	assert.Equal(t, s.tracker.days, days)

	w = s.do("GET", "/v1/track?user_id=u1&days=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, s.tracker.gotDays)

	s.tracker.returnErr = errors.New("connection refused")
	w = s.do("GET", "/v1/track?user_id=u1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatsSummary(t *testing.T) {
	s := newTestServer()
	avg := 650.0
	s.tracker.summary = track.Summary{UserID: "u1", MealsPlanned: 4, CaloriesAvg7d: &avg}

	w := s.do("GET", "/v1/stats/summary?user_id=u1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "u1", "meals_cooked": 4, "calories_avg_7d": 650, "protein_avg_7d": null}`, w.Body.String())

	w = s.do("GET", "/v1/stats/summary")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
