package handlers

import (
	"context"
	"net/http"

	"recipe-service/models"
	"recipe-service/store"
	"recipe-service/validation"

	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

// TaxonomyHandler serves one of the owner-scoped name collections (tags or ingredients)
type TaxonomyHandler[T any] struct {
	kind     string
	validate *validation.Validator

	list   func(ctx context.Context, owner int, assignedOnly bool) ([]T, error)
	get    func(ctx context.Context, owner, id int) (T, error)
	create func(ctx context.Context, owner int, name string) (T, error)
	rename func(ctx context.Context, owner, id int, name string) (T, error)
	remove func(ctx context.Context, owner, id int) error
}

// NewTagHandler serves /api/recipe/tags/
func NewTagHandler(s *store.Store, v *validation.Validator) *TaxonomyHandler[models.Tag] {
	return &TaxonomyHandler[models.Tag]{
		kind:     "tag",
		validate: v,
		list:     s.ListTags,
		get:      s.GetTag,
		create:   s.CreateTag,
		rename:   s.RenameTag,
		remove:   s.DeleteTag,
	}
}

// NewIngredientHandler serves /api/recipe/ingredients/
func NewIngredientHandler(s *store.Store, v *validation.Validator) *TaxonomyHandler[models.Ingredient] {
	return &TaxonomyHandler[models.Ingredient]{
		kind:     "ingredient",
		validate: v,
		list:     s.ListIngredients,
		get:      s.GetIngredient,
		create:   s.CreateIngredient,
		rename:   s.RenameIngredient,
		remove:   s.DeleteIngredient,
	}
}

// List handles GET - ?assigned_only=1 keeps only items used by the caller's recipes
func (h *TaxonomyHandler[T]) List(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	assignedOnly, err := queryFlag(r, "assigned_only")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errs.NewValidationError(err.Error()))
		return
	}

	items, err := h.list(ctx, userID, assignedOnly)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "debug", "Listed "+h.kind+"s", zap.Int("count", len(items)), zap.Bool("assigned_only", assignedOnly))
	writeJSON(w, http.StatusOK, items)
}

// Create handles POST
func (h *TaxonomyHandler[T]) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeUnauthenticated(w)
		return
	}

	var req models.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.create(ctx, userID, req.Name)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", h.kind+" created", zap.String("name", req.Name))
	writeJSON(w, http.StatusCreated, item)
}

// Update handles PUT - name is required
func (h *TaxonomyHandler[T]) Update(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	var req models.NameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.applyName(ctx, w, userID, id, &req.Name)
}

// Patch handles PATCH - an absent name leaves the item as it is
func (h *TaxonomyHandler[T]) Patch(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	var req models.PatchNameRequest
	if err := decodePatch(r, &req); err != nil {
		writeInvalidJSON(ctx, w, err)
		return
	}
	if err := h.validate.Validate(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	h.applyName(ctx, w, userID, id, req.Name)
}

// Delete handles DELETE
func (h *TaxonomyHandler[T]) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestTarget(ctx, w, r)
	if !ok {
		return
	}

	if err := h.remove(ctx, userID, id); err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", h.kind+" deleted", zap.Int("id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaxonomyHandler[T]) applyName(ctx context.Context, w http.ResponseWriter, userID, id int, name *string) {
	var (
		item T
		err  error
	)
	if name == nil {
		item, err = h.get(ctx, userID, id)
	} else {
		item, err = h.rename(ctx, userID, id, *name)
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	logRequest(ctx, "info", h.kind+" updated", zap.Int("id", id))
	writeJSON(w, http.StatusOK, item)
}
