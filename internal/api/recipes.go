package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RecipeDeck returns a random sample of meals for swiping through.
func (h *Handler) RecipeDeck(c *gin.Context) {
	limit, err := queryInt(c, "limit", 40, 1, 200)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c)
	meals, err := h.RecipeStore.RandomMeals(ctx, limit)
	if err != nil {
		log.WithError(err).Error("failed to sample meals")
		c.String(http.StatusInternalServerError, "database error: "+err.Error())
		return
	}

	out := make([]MealOut, 0, len(meals))
	for _, m := range meals {
		out = append(out, h.mealOut(log, m))
	}
	c.JSON(http.StatusOK, out)
}

// RecipeImages maps each requested id (?ids=1&ids=2) to its image URL, or
// null when the meal or its image is missing.
func (h *Handler) RecipeImages(c *gin.Context) {
	var ids []string
	for _, id := range c.QueryArray("ids") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	images := make(map[string]*string, len(ids))
	if len(ids) == 0 {
		c.JSON(http.StatusOK, gin.H{"images": images})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	meals, err := h.RecipeStore.GetMealsByIDs(ctx, ids)
	if err != nil {
		h.logger(c).WithError(err).Error("failed to get meal images")
		c.String(http.StatusInternalServerError, "database error: "+err.Error())
		return
	}
	for _, id := range ids {
		images[id] = nil
		if m, ok := meals[id]; ok {
			images[id] = h.imageURL(m.ImagePath)
		}
	}
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// RecipeImage returns one meal's image URL. Missing meals, missing images
// and store errors all answer 200 with a null URL.
func (h *Handler) RecipeImage(c *gin.Context) {
	id := c.Param("recipe_id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	log := h.logger(c).WithField("meal_id", id)
	m, err := h.RecipeStore.GetMeal(ctx, id)
	if err != nil {
		log.WithError(err).Warn("failed to get meal image")
		c.JSON(http.StatusOK, gin.H{"image_url": nil})
		return
	}
	if m == nil {
		log.Debug("meal not found, returning no image")
		c.JSON(http.StatusOK, gin.H{"image_url": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"image_url": h.imageURL(m.ImagePath)})
}
