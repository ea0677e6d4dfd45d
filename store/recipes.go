package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"recipe-service/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var recipeColumns = []string{
	"id", "user_id", "title", "time_minutes", "cost", "link", "image", "created_at", "updated_at",
}

// ListRecipes returns the owner's recipes, newest first.
// Non-empty filter lists keep recipes linked to any of the given ids.
func (s *Store) ListRecipes(ctx context.Context, owner int, filter models.RecipeFilter) ([]models.Recipe, error) {
	q := s.sb.Select(recipeColumns...).
		From("recipes").
		Where(sq.Eq{"user_id": owner}).
		OrderBy("id DESC")

	if len(filter.TagIDs) > 0 {
		q = q.Where(sq.Expr("id IN (SELECT recipe_id FROM recipe_tags WHERE tag_id IN ("+
			sq.Placeholders(len(filter.TagIDs))+"))", intArgs(filter.TagIDs)...))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where(sq.Expr("id IN (SELECT recipe_id FROM recipe_ingredients WHERE ingredient_id IN ("+
			sq.Placeholders(len(filter.IngredientIDs))+"))", intArgs(filter.IngredientIDs)...))
	}

	recipes := []models.Recipe{}
	if err := selectBuilt(ctx, s.db, &recipes, q); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if err := s.loadAssociations(ctx, s.db, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe loads one of the owner's recipes with its association ids
func (s *Store) GetRecipe(ctx context.Context, owner, id int) (models.Recipe, error) {
	return s.getRecipe(ctx, s.db, owner, id)
}

func (s *Store) getRecipe(ctx context.Context, q sqlx.QueryerContext, owner, id int) (models.Recipe, error) {
	var recipe models.Recipe
	err := getBuilt(ctx, q, &recipe, s.sb.Select(recipeColumns...).
		From("recipes").
		Where(sq.Eq{"id": id, "user_id": owner}))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Recipe{}, ErrNotFound
	}
	if err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe %d: %w", id, err)
	}

	recipes := []models.Recipe{recipe}
	if err := s.loadAssociations(ctx, q, recipes); err != nil {
		return models.Recipe{}, err
	}
	return recipes[0], nil
}

// GetRecipeDetail loads a recipe with its tags and ingredients expanded
func (s *Store) GetRecipeDetail(ctx context.Context, owner, id int) (models.RecipeDetail, error) {
	recipe, err := s.GetRecipe(ctx, owner, id)
	if err != nil {
		return models.RecipeDetail{}, err
	}

	tagRows, err := namedByIDs[models.Tag](ctx, s.db, s, tags, owner, recipe.TagIDs)
	if err != nil {
		return models.RecipeDetail{}, err
	}
	ingredientRows, err := namedByIDs[models.Ingredient](ctx, s.db, s, ingredients, owner, recipe.IngredientIDs)
	if err != nil {
		return models.RecipeDetail{}, err
	}
	return recipe.Detail(tagRows, ingredientRows), nil
}

// CreateRecipe stores a recipe owned by owner; every linked id must belong to owner too
func (s *Store) CreateRecipe(ctx context.Context, owner int, fields models.RecipeFields) (models.Recipe, error) {
	if err := checkFields(fields); err != nil {
		return models.Recipe{}, err
	}

	var recipe models.Recipe
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkAssociations(ctx, tx, owner, &fields.TagIDs, &fields.IngredientIDs); err != nil {
			return err
		}

		ts := now()
		id, err := insertBuilt(ctx, tx, s.sb.Insert("recipes").
			Columns("user_id", "title", "time_minutes", "cost", "link", "image", "created_at", "updated_at").
			Values(owner, strings.TrimSpace(fields.Title), fields.TimeMinutes, fields.Cost, fields.Link, "", ts, ts))
		if err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}

		if err := s.linkAll(ctx, tx, id, fields.TagIDs, fields.IngredientIDs); err != nil {
			return err
		}

		recipe, err = s.getRecipe(ctx, tx, owner, id)
		return err
	})
	return recipe, err
}

// ReplaceRecipe overwrites every mutable field. Nil association lists clear the links.
func (s *Store) ReplaceRecipe(ctx context.Context, owner, id int, fields models.RecipeFields) (models.Recipe, error) {
	if err := checkFields(fields); err != nil {
		return models.Recipe{}, err
	}

	var recipe models.Recipe
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkAssociations(ctx, tx, owner, &fields.TagIDs, &fields.IngredientIDs); err != nil {
			return err
		}

		affected, err := execBuilt(ctx, tx, s.sb.Update("recipes").
			SetMap(map[string]any{
				"title":        strings.TrimSpace(fields.Title),
				"time_minutes": fields.TimeMinutes,
				"cost":         fields.Cost,
				"link":         fields.Link,
				"updated_at":   now(),
			}).
			Where(sq.Eq{"id": id, "user_id": owner}))
		if err != nil {
			return fmt.Errorf("update recipe %d: %w", id, err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		if err := s.relink(ctx, tx, tags, id, fields.TagIDs); err != nil {
			return err
		}
		if err := s.relink(ctx, tx, ingredients, id, fields.IngredientIDs); err != nil {
			return err
		}

		recipe, err = s.getRecipe(ctx, tx, owner, id)
		return err
	})
	return recipe, err
}

// PatchRecipe changes only the fields present in patch; absent association lists are kept
func (s *Store) PatchRecipe(ctx context.Context, owner, id int, patch models.RecipePatch) (models.Recipe, error) {
	set := map[string]any{"updated_at": now()}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return models.Recipe{}, invalid("title", "may not be blank")
		}
		set["title"] = title
	}
	if patch.TimeMinutes != nil {
		if *patch.TimeMinutes <= 0 {
			return models.Recipe{}, invalid("time_minutes", "must be greater than 0")
		}
		set["time_minutes"] = *patch.TimeMinutes
	}
	if patch.Cost != nil {
		if *patch.Cost < 0 {
			return models.Recipe{}, invalid("cost", "must not be negative")
		}
		set["cost"] = *patch.Cost
	}
	if patch.Link != nil {
		set["link"] = *patch.Link
	}

	var recipe models.Recipe
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var tagIDs, ingredientIDs []int
		if patch.TagIDs != nil {
			tagIDs = *patch.TagIDs
		}
		if patch.IngredientIDs != nil {
			ingredientIDs = *patch.IngredientIDs
		}
		if err := s.checkAssociations(ctx, tx, owner, &tagIDs, &ingredientIDs); err != nil {
			return err
		}

		affected, err := execBuilt(ctx, tx, s.sb.Update("recipes").
			SetMap(set).
			Where(sq.Eq{"id": id, "user_id": owner}))
		if err != nil {
			return fmt.Errorf("update recipe %d: %w", id, err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		if patch.TagIDs != nil {
			if err := s.relink(ctx, tx, tags, id, tagIDs); err != nil {
				return err
			}
		}
		if patch.IngredientIDs != nil {
			if err := s.relink(ctx, tx, ingredients, id, ingredientIDs); err != nil {
				return err
			}
		}

		recipe, err = s.getRecipe(ctx, tx, owner, id)
		return err
	})
	return recipe, err
}

// DeleteRecipe removes the recipe and its links, returning the removed row
func (s *Store) DeleteRecipe(ctx context.Context, owner, id int) (models.Recipe, error) {
	var recipe models.Recipe
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		recipe, err = s.getRecipe(ctx, tx, owner, id)
		if err != nil {
			return err
		}

		for _, kind := range []taxonomy{tags, ingredients} {
			if _, err := execBuilt(ctx, tx, s.sb.Delete(kind.joinTable).Where(sq.Eq{"recipe_id": id})); err != nil {
				return fmt.Errorf("unlink recipe %d: %w", id, err)
			}
		}
		if _, err := execBuilt(ctx, tx, s.sb.Delete("recipes").Where(sq.Eq{"id": id, "user_id": owner})); err != nil {
			return fmt.Errorf("delete recipe %d: %w", id, err)
		}
		return nil
	})
	return recipe, err
}

// SetRecipeImage points the recipe at a stored image and returns the path it replaced
func (s *Store) SetRecipeImage(ctx context.Context, owner, id int, image string) (previous string, err error) {
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := getBuilt(ctx, tx, &previous, s.sb.Select("image").
			From("recipes").
			Where(sq.Eq{"id": id, "user_id": owner}))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get recipe image %d: %w", id, err)
		}

		_, err = execBuilt(ctx, tx, s.sb.Update("recipes").
			Set("image", image).
			Set("updated_at", now()).
			Where(sq.Eq{"id": id, "user_id": owner}))
		if err != nil {
			return fmt.Errorf("set recipe image %d: %w", id, err)
		}
		return nil
	})
	return previous, err
}

func checkFields(fields models.RecipeFields) error {
	if strings.TrimSpace(fields.Title) == "" {
		return invalid("title", "may not be blank")
	}
	if fields.TimeMinutes <= 0 {
		return invalid("time_minutes", "must be greater than 0")
	}
	if fields.Cost < 0 {
		return invalid("cost", "must not be negative")
	}
	return nil
}

// checkAssociations de-duplicates both id lists in place and verifies ownership
func (s *Store) checkAssociations(ctx context.Context, tx *sqlx.Tx, owner int, tagIDs, ingredientIDs *[]int) error {
	*tagIDs = uniqueIDs(*tagIDs)
	*ingredientIDs = uniqueIDs(*ingredientIDs)

	if err := s.checkOwned(ctx, tx, tags, owner, *tagIDs); err != nil {
		return err
	}
	return s.checkOwned(ctx, tx, ingredients, owner, *ingredientIDs)
}

func (s *Store) linkAll(ctx context.Context, tx *sqlx.Tx, recipeID int, tagIDs, ingredientIDs []int) error {
	if err := s.link(ctx, tx, tags, recipeID, tagIDs); err != nil {
		return err
	}
	return s.link(ctx, tx, ingredients, recipeID, ingredientIDs)
}

func (s *Store) link(ctx context.Context, tx *sqlx.Tx, kind taxonomy, recipeID int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	q := s.sb.Insert(kind.joinTable).Columns("recipe_id", kind.joinCol)
	for _, id := range ids {
		q = q.Values(recipeID, id)
	}
	if _, err := execBuilt(ctx, tx, q); err != nil {
		return fmt.Errorf("link %s to recipe %d: %w", kind.table, recipeID, err)
	}
	return nil
}

// relink replaces the recipe's links of one kind with ids
func (s *Store) relink(ctx context.Context, tx *sqlx.Tx, kind taxonomy, recipeID int, ids []int) error {
	if _, err := execBuilt(ctx, tx, s.sb.Delete(kind.joinTable).Where(sq.Eq{"recipe_id": recipeID})); err != nil {
		return fmt.Errorf("unlink %s from recipe %d: %w", kind.table, recipeID, err)
	}
	return s.link(ctx, tx, kind, recipeID, ids)
}

type linkRow struct {
	RecipeID int `db:"recipe_id"`
	TargetID int `db:"target_id"`
}

// loadAssociations fills TagIDs and IngredientIDs for every recipe in place
func (s *Store) loadAssociations(ctx context.Context, q sqlx.QueryerContext, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int, len(recipes))
	index := make(map[int]int, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		index[r.ID] = i
		recipes[i].TagIDs = []int{}
		recipes[i].IngredientIDs = []int{}
	}

	for _, kind := range []taxonomy{tags, ingredients} {
		var links []linkRow
		err := selectBuilt(ctx, q, &links, s.sb.Select("recipe_id", kind.joinCol+" AS target_id").
			From(kind.joinTable).
			Where(sq.Eq{"recipe_id": ids}).
			OrderBy("recipe_id", kind.joinCol))
		if err != nil {
			return fmt.Errorf("load %s links: %w", kind.table, err)
		}

		for _, l := range links {
			r := &recipes[index[l.RecipeID]]
			if kind == tags {
				r.TagIDs = append(r.TagIDs, l.TargetID)
			} else {
				r.IngredientIDs = append(r.IngredientIDs, l.TargetID)
			}
		}
	}
	return nil
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
