package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the handler's routes behind CORS, panic recovery and
// request logging.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Log))

	corsConfig := cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	v1 := r.Group("/v1")
	v1.GET("/health", h.Health)

	v1.GET("/recipes", h.ListRecipes)
	v1.GET("/recipes/deck", h.RecipeDeck)
	v1.GET("/recipes/images", h.RecipeImages)
	v1.GET("/recipes/:recipe_id", h.GetRecipe)
	v1.GET("/recipes/:recipe_id/image", h.RecipeImage)

	v1.GET("/plans", h.ListPlans)
	v1.GET("/plans/current", h.CurrentPlan)
	v1.GET("/plans/:plan_id", h.GetPlan)
	v1.POST("/plans/:plan_id/materialize", h.MaterializePlan)

	v1.GET("/basket", h.GetBasket)
	v1.POST("/basket/rebuild", h.RebuildBasket)

	v1.GET("/track", h.Track)
	v1.GET("/stats/summary", h.StatsSummary)
	return r
}
