package handlers

import (
	"context"
	"errors"
	"net/http"

	"recipe-service/images"
	"recipe-service/models"
	"recipe-service/store"
	"recipe-service/validation"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// RecipeHandler handles recipe CRUD and image upload
type RecipeHandler struct {
	store    *store.Store
	images   *images.Storage
	validate *validation.Validator
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(s *store.Store, img *images.Storage, v *validation.Validator) *RecipeHandler {
	return &RecipeHandler{
		store:    s,
		images:   img,
		validate: v,
	}
}

// ListRecipes handles GET /api/recipe/recipes/ with optional ?tags=1,2&ingredients=3
func (h *RecipeHandler) ListRecipes(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var filter models.RecipeFilter
	var err error
	if filter.TagIDs, err = queryIDs(r, "tags"); err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
		return
	}
	if filter.IngredientIDs, err = queryIDs(r, "ingredients"); err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
		return
	}

	recipes, err := h.store.ListRecipes(ctx, userID, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]models.RecipeResponse, 0, len(recipes))
	for _, recipe := range recipes {
		out = append(out, recipe.Response())
	}

	logRequest(ctx, "debug", "Listed recipes", zap.Int("count", len(out)))
	writeJSON(w, http.StatusOK, out)
}

// CreateRecipe handles POST /api/recipe/recipes/
func (h *RecipeHandler) CreateRecipe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req models.RecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Creating recipe", zap.String("title", req.Title))

	recipe, err := h.store.CreateRecipe(ctx, userID, req.Fields())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Recipe created successfully", zap.Int("recipe_id", recipe.ID))
	writeJSON(w, http.StatusCreated, recipe.Response())
}

// GetRecipe handles GET /api/recipe/recipes/{id}/ - tags and ingredients expanded
func (h *RecipeHandler) GetRecipe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	detail, err := h.store.GetRecipeDetail(ctx, userID, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Recipe retrieved", zap.Int("recipe_id", id))
	writeJSON(w, http.StatusOK, detail)
}

// UpdateRecipe handles PUT - omitted tags and ingredients are cleared
func (h *RecipeHandler) UpdateRecipe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	var req models.RecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	recipe, err := h.store.ReplaceRecipe(ctx, userID, id, req.Fields())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Recipe replaced", zap.Int("recipe_id", id))
	writeJSON(w, http.StatusOK, recipe.Response())
}

// PatchRecipe handles PATCH - omitted fields, tags and ingredients included, are kept
func (h *RecipeHandler) PatchRecipe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	var req models.RecipePatchRequest
	if err := decodePatch(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	recipe, err := h.store.PatchRecipe(ctx, userID, id, req.Patch())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", "Recipe patched", zap.Int("recipe_id", id))
	writeJSON(w, http.StatusOK, recipe.Response())
}

// DeleteRecipe handles DELETE and drops the stored image with the recipe
func (h *RecipeHandler) DeleteRecipe(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	recipe, err := h.store.DeleteRecipe(ctx, userID, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.images.Remove(recipe.Image); err != nil {
		logRequest(ctx, "error", "Failed to remove recipe image", zap.String("image", recipe.Image), zap.Error(err))
	}

	logRequest(ctx, "info", "Recipe deleted", zap.Int("recipe_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles POST /api/recipe/recipes/{id}/upload-image/ with multipart field "image"
func (h *RecipeHandler) UploadImage(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	// Make sure the recipe is the caller's before reading the upload
	if _, err := h.store.GetRecipe(ctx, userID, id); err != nil {
		writeError(ctx, w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, images.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(images.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(ctx, w, images.ErrTooLarge)
			return
		}
		logRequest(ctx, "info", "Invalid multipart body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("image: no file was submitted"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError("image: no file was submitted"))
		return
	}
	defer file.Close()

	rel, err := h.images.Save(file, header.Filename)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	previous, err := h.store.SetRecipeImage(ctx, userID, id, rel)
	if err != nil {
		if rmErr := h.images.Remove(rel); rmErr != nil {
			logRequest(ctx, "error", "Failed to remove orphaned image", zap.String("image", rel), zap.Error(rmErr))
		}
		writeError(ctx, w, err)
		return
	}

	if previous != "" && previous != rel {
		if err := h.images.Remove(previous); err != nil {
			logRequest(ctx, "error", "Failed to remove replaced image", zap.String("image", previous), zap.Error(err))
		}
	}

	logRequest(ctx, "info", "Recipe image uploaded", zap.Int("recipe_id", id), zap.String("image", rel))
	recipe := models.Recipe{ID: id, Image: rel}
	writeJSON(w, http.StatusOK, models.RecipeImageResponse{ID: id, Image: recipe.ImageURL()})
}
