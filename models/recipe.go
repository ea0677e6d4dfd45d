package models

import "time"

// MediaURL is the public prefix uploaded files are served under
const MediaURL = "/media/"

// Recipe is the stored record; TagIDs and IngredientIDs are loaded from the join tables
type Recipe struct {
	ID            int       `db:"id"`
	UserID        int       `db:"user_id"`
	Title         string    `db:"title"`
	TimeMinutes   int       `db:"time_minutes"`
	Cost          Cost      `db:"cost"`
	Link          string    `db:"link"`
	Image         string    `db:"image"` // Relative to the media root; empty when unset
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
	TagIDs        []int     `db:"-"`
	IngredientIDs []int     `db:"-"`
}

// RecipeResponse is the list/create/update rendering: associations as ids
type RecipeResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Cost        Cost    `json:"cost"`
	Link        string  `json:"link"`
	Image       *string `json:"image"`
	Tags        []int   `json:"tags"`
	Ingredients []int   `json:"ingredients"`
}

// RecipeDetail is the retrieve rendering: associations expanded
type RecipeDetail struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"`
	Cost        Cost         `json:"cost"`
	Link        string       `json:"link"`
	Image       *string      `json:"image"`
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
}

// RecipeImageResponse is returned by the upload endpoint
type RecipeImageResponse struct {
	ID    int     `json:"id"`
	Image *string `json:"image"`
}

// ImageURL returns the public URL of the recipe image, or nil when unset
func (r Recipe) ImageURL() *string {
	if r.Image == "" {
		return nil
	}
	url := MediaURL + r.Image
	return &url
}

// Response renders the recipe with association ids
func (r Recipe) Response() RecipeResponse {
	tags := r.TagIDs
	if tags == nil {
		tags = []int{}
	}
	ingredients := r.IngredientIDs
	if ingredients == nil {
		ingredients = []int{}
	}
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Cost:        r.Cost,
		Link:        r.Link,
		Image:       r.ImageURL(),
		Tags:        tags,
		Ingredients: ingredients,
	}
}

// Detail renders the recipe with the given expanded associations
func (r Recipe) Detail(tags []Tag, ingredients []Ingredient) RecipeDetail {
	if tags == nil {
		tags = []Tag{}
	}
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Cost:        r.Cost,
		Link:        r.Link,
		Image:       r.ImageURL(),
		Tags:        tags,
		Ingredients: ingredients,
	}
}

// RecipeRequest is the create (POST) and full update (PUT) payload
// Omitted tags/ingredients mean "none"
type RecipeRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	TimeMinutes *int   `json:"time_minutes" validate:"required,gt=0"`
	Cost        *Cost  `json:"cost" validate:"required,gte=0,lte=99999"`
	Link        string `json:"link" validate:"omitempty,max=255"`
	Tags        []int  `json:"tags"`
	Ingredients []int  `json:"ingredients"`
}

// RecipePatchRequest is the partial update (PATCH) payload
// Nil fields, including tags/ingredients, are left untouched
type RecipePatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	TimeMinutes *int    `json:"time_minutes" validate:"omitempty,gt=0"`
	Cost        *Cost   `json:"cost" validate:"omitempty,gte=0,lte=99999"`
	Link        *string `json:"link" validate:"omitempty,max=255"`
	Tags        *[]int  `json:"tags"`
	Ingredients *[]int  `json:"ingredients"`
}

// RecipeFields replaces every mutable field of a recipe
type RecipeFields struct {
	Title         string
	TimeMinutes   int
	Cost          Cost
	Link          string
	TagIDs        []int
	IngredientIDs []int
}

// RecipePatch changes only the non-nil fields of a recipe
type RecipePatch struct {
	Title         *string
	TimeMinutes   *int
	Cost          *Cost
	Link          *string
	TagIDs        *[]int
	IngredientIDs *[]int
}

// RecipeFilter narrows a recipe listing to recipes carrying any of the ids
type RecipeFilter struct {
	TagIDs        []int
	IngredientIDs []int
}

// Fields converts a validated request into a replace-all change
func (req RecipeRequest) Fields() RecipeFields {
	f := RecipeFields{
		Title:         req.Title,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}
	if req.TimeMinutes != nil {
		f.TimeMinutes = *req.TimeMinutes
	}
	if req.Cost != nil {
		f.Cost = *req.Cost
	}
	return f
}

// Patch converts a validated request into a partial change
func (req RecipePatchRequest) Patch() RecipePatch {
	return RecipePatch{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Cost:          req.Cost,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	}
}
