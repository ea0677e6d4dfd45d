package store

import (
	"context"
	"testing"

	"recipe-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecipe(t *testing.T, s *Store, owner int, title string) models.Recipe {
	t.Helper()
	recipe, err := s.CreateRecipe(context.Background(), owner, models.RecipeFields{
		Title: title, TimeMinutes: 10, Cost: 500,
	})
	require.NoError(t, err)
	return recipe
}

func TestCreateRecipeWithAssociations(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")

	tag, err := s.CreateTag(ctx, user.ID, "Python")
	require.NoError(t, err)
	ing, err := s.CreateIngredient(ctx, user.ID, "Bacon")
	require.NoError(t, err)

	recipe, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title:         "Soup",
		TimeMinutes:   25,
		Cost:          700,
		TagIDs:        []int{tag.ID, tag.ID},
		IngredientIDs: []int{ing.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, user.ID, recipe.UserID)
	assert.Equal(t, "Soup", recipe.Title)
	assert.Equal(t, models.Cost(700), recipe.Cost)
	assert.Equal(t, []int{tag.ID}, recipe.TagIDs)
	assert.Equal(t, []int{ing.ID}, recipe.IngredientIDs)

	detail, err := s.GetRecipeDetail(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Python", detail.Tags[0].Name)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "Bacon", detail.Ingredients[0].Name)
}

func TestCreateRecipeRejectsForeignTag(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")

	theirs, err := s.CreateTag(ctx, other.ID, "Secret")
	require.NoError(t, err)

	_, err = s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Soup", TimeMinutes: 25, Cost: 700, TagIDs: []int{theirs.ID},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tags", verr.Field)

	recipes, err := s.ListRecipes(ctx, user.ID, models.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestCreateRecipeRejectsBlankTitle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")

	_, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{Title: "", TimeMinutes: 5, Cost: 100})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)

	recipes, err := s.ListRecipes(ctx, user.ID, models.RecipeFilter{})
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestListRecipesNewestFirstAndScoped(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")

	first := sampleRecipe(t, s, user.ID, "First")
	sampleRecipe(t, s, other.ID, "Theirs")
	second := sampleRecipe(t, s, user.ID, "Second")

	recipes, err := s.ListRecipes(ctx, user.ID, models.RecipeFilter{})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, second.ID, recipes[0].ID)
	assert.Equal(t, first.ID, recipes[1].ID)
}

func TestListRecipesFilterByTagsAndIngredients(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")

	vegan, err := s.CreateTag(ctx, user.ID, "Vegan")
	require.NoError(t, err)
	feta, err := s.CreateIngredient(ctx, user.ID, "Feta")
	require.NoError(t, err)

	curry, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Curry", TimeMinutes: 30, Cost: 800, TagIDs: []int{vegan.ID},
	})
	require.NoError(t, err)
	salad, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Salad", TimeMinutes: 5, Cost: 400, IngredientIDs: []int{feta.ID},
	})
	require.NoError(t, err)
	sampleRecipe(t, s, user.ID, "Plain")

	byTag, err := s.ListRecipes(ctx, user.ID, models.RecipeFilter{TagIDs: []int{vegan.ID}})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, curry.ID, byTag[0].ID)

	byIngredient, err := s.ListRecipes(ctx, user.ID, models.RecipeFilter{IngredientIDs: []int{feta.ID}})
	require.NoError(t, err)
	require.Len(t, byIngredient, 1)
	assert.Equal(t, salad.ID, byIngredient[0].ID)
}

func TestGetRecipeScopedToOwner(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")
	recipe := sampleRecipe(t, s, user.ID, "Mine")

	_, err := s.GetRecipe(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetRecipeDetail(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceRecipeClearsOmittedTags(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")

	tag, err := s.CreateTag(ctx, user.ID, "Dessert")
	require.NoError(t, err)
	recipe, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Cake", TimeMinutes: 60, Cost: 1200, Link: "https://example.com/cake", TagIDs: []int{tag.ID},
	})
	require.NoError(t, err)

	replaced, err := s.ReplaceRecipe(ctx, user.ID, recipe.ID, models.RecipeFields{
		Title: "Spaghetti carbonara", TimeMinutes: 25, Cost: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, "Spaghetti carbonara", replaced.Title)
	assert.Equal(t, 25, replaced.TimeMinutes)
	assert.Equal(t, models.Cost(500), replaced.Cost)
	assert.Equal(t, "", replaced.Link)
	assert.Empty(t, replaced.TagIDs)
	assert.Equal(t, user.ID, replaced.UserID)
}

func TestPatchRecipeKeepsOmittedTags(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")

	tag, err := s.CreateTag(ctx, user.ID, "Dessert")
	require.NoError(t, err)
	recipe, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Cake", TimeMinutes: 60, Cost: 1200, TagIDs: []int{tag.ID},
	})
	require.NoError(t, err)

	title := "Chocolate cake"
	patched, err := s.PatchRecipe(ctx, user.ID, recipe.ID, models.RecipePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate cake", patched.Title)
	assert.Equal(t, 60, patched.TimeMinutes)
	assert.Equal(t, []int{tag.ID}, patched.TagIDs)

	curry, err := s.CreateTag(ctx, user.ID, "Curry")
	require.NoError(t, err)
	patched, err = s.PatchRecipe(ctx, user.ID, recipe.ID, models.RecipePatch{TagIDs: idsPtr(curry.ID)})
	require.NoError(t, err)
	assert.Equal(t, []int{curry.ID}, patched.TagIDs)

	patched, err = s.PatchRecipe(ctx, user.ID, recipe.ID, models.RecipePatch{TagIDs: idsPtr()})
	require.NoError(t, err)
	assert.Empty(t, patched.TagIDs)
}

func TestPatchRecipeValidatesAndScopes(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")
	recipe := sampleRecipe(t, s, user.ID, "Mine")

	_, err := s.PatchRecipe(ctx, user.ID, recipe.ID, models.RecipePatch{TimeMinutes: intPtr(0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = s.PatchRecipe(ctx, other.ID, recipe.ID, models.RecipePatch{TimeMinutes: intPtr(5)})
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.TimeMinutes)
}

func TestDeleteRecipe(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")

	tag, err := s.CreateTag(ctx, user.ID, "Quick")
	require.NoError(t, err)
	recipe, err := s.CreateRecipe(ctx, user.ID, models.RecipeFields{
		Title: "Toast", TimeMinutes: 3, Cost: 100, TagIDs: []int{tag.ID},
	})
	require.NoError(t, err)

	_, err = s.DeleteRecipe(ctx, other.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	deleted, err := s.DeleteRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, deleted.ID)

	_, err = s.GetRecipe(ctx, user.ID, recipe.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var links int
	require.NoError(t, s.db.Get(&links, "SELECT COUNT(*) FROM recipe_tags"))
	assert.Zero(t, links)

	tagsLeft, err := s.ListTags(ctx, user.ID, false)
	require.NoError(t, err)
	assert.Len(t, tagsLeft, 1)
}

func TestSetRecipeImage(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	user := mustUser(t, s, "test@recipe.com")
	other := mustUser(t, s, "test2@recipe.com")
	recipe := sampleRecipe(t, s, user.ID, "Pie")

	previous, err := s.SetRecipeImage(ctx, user.ID, recipe.ID, "uploads/recipe/a.png")
	require.NoError(t, err)
	assert.Equal(t, "", previous)

	previous, err = s.SetRecipeImage(ctx, user.ID, recipe.ID, "uploads/recipe/b.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/a.png", previous)

	_, err = s.SetRecipeImage(ctx, other.ID, recipe.ID, "uploads/recipe/c.png")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetRecipe(ctx, user.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/recipe/b.png", got.Image)
}
