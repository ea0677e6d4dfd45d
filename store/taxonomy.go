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

// taxonomy describes one of the two name-only collections a recipe links to
type taxonomy struct {
	table     string
	joinTable string
	joinCol   string
	field     string // payload field that carries ids of this kind
}

var (
	tags = taxonomy{
		table:     "tags",
		joinTable: "recipe_tags",
		joinCol:   "tag_id",
		field:     "tags",
	}
	ingredients = taxonomy{
		table:     "ingredients",
		joinTable: "recipe_ingredients",
		joinCol:   "ingredient_id",
		field:     "ingredients",
	}
)

// ListTags returns the owner's tags by name, descending.
// With assignedOnly, only tags linked to at least one of the owner's recipes, each once.
func (s *Store) ListTags(ctx context.Context, owner int, assignedOnly bool) ([]models.Tag, error) {
	return listNamed[models.Tag](ctx, s, tags, owner, assignedOnly)
}

func (s *Store) GetTag(ctx context.Context, owner, id int) (models.Tag, error) {
	return getNamed[models.Tag](ctx, s.db, s, tags, owner, id)
}

func (s *Store) CreateTag(ctx context.Context, owner int, name string) (models.Tag, error) {
	return createNamed[models.Tag](ctx, s, tags, owner, name)
}

func (s *Store) RenameTag(ctx context.Context, owner, id int, name string) (models.Tag, error) {
	return renameNamed[models.Tag](ctx, s, tags, owner, id, name)
}

// DeleteTag removes the tag and unlinks it from every recipe
func (s *Store) DeleteTag(ctx context.Context, owner, id int) error {
	return s.deleteNamed(ctx, tags, owner, id)
}

// ListIngredients is ListTags for ingredients
func (s *Store) ListIngredients(ctx context.Context, owner int, assignedOnly bool) ([]models.Ingredient, error) {
	return listNamed[models.Ingredient](ctx, s, ingredients, owner, assignedOnly)
}

func (s *Store) GetIngredient(ctx context.Context, owner, id int) (models.Ingredient, error) {
	return getNamed[models.Ingredient](ctx, s.db, s, ingredients, owner, id)
}

func (s *Store) CreateIngredient(ctx context.Context, owner int, name string) (models.Ingredient, error) {
	return createNamed[models.Ingredient](ctx, s, ingredients, owner, name)
}

func (s *Store) RenameIngredient(ctx context.Context, owner, id int, name string) (models.Ingredient, error) {
	return renameNamed[models.Ingredient](ctx, s, ingredients, owner, id, name)
}

func (s *Store) DeleteIngredient(ctx context.Context, owner, id int) error {
	return s.deleteNamed(ctx, ingredients, owner, id)
}

func listNamed[T any](ctx context.Context, s *Store, kind taxonomy, owner int, assignedOnly bool) ([]T, error) {
	q := s.sb.Select("t.id", "t.name", "t.user_id").
		From(kind.table + " t").
		Where(sq.Eq{"t.user_id": owner}).
		OrderBy("t.name DESC", "t.id DESC")

	if assignedOnly {
		q = q.Distinct().
			Join(kind.joinTable + " j ON j." + kind.joinCol + " = t.id").
			Join("recipes r ON r.id = j.recipe_id").
			Where(sq.Eq{"r.user_id": owner})
	}

	items := []T{}
	if err := selectBuilt(ctx, s.db, &items, q); err != nil {
		return nil, fmt.Errorf("list %s: %w", kind.table, err)
	}
	return items, nil
}

func getNamed[T any](ctx context.Context, q sqlx.QueryerContext, s *Store, kind taxonomy, owner, id int) (T, error) {
	var item T
	err := getBuilt(ctx, q, &item, s.sb.Select("id", "name", "user_id").
		From(kind.table).
		Where(sq.Eq{"id": id, "user_id": owner}))
	if errors.Is(err, sql.ErrNoRows) {
		return item, ErrNotFound
	}
	if err != nil {
		return item, fmt.Errorf("get %s %d: %w", kind.table, id, err)
	}
	return item, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "may not be blank")
	}
	return name, nil
}

func createNamed[T any](ctx context.Context, s *Store, kind taxonomy, owner int, name string) (T, error) {
	var zero T
	name, err := cleanName(name)
	if err != nil {
		return zero, err
	}

	id, err := insertBuilt(ctx, s.db, s.sb.Insert(kind.table).
		Columns("user_id", "name").
		Values(owner, name))
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", kind.table, err)
	}
	return getNamed[T](ctx, s.db, s, kind, owner, id)
}

func renameNamed[T any](ctx context.Context, s *Store, kind taxonomy, owner, id int, name string) (T, error) {
	var zero T
	name, err := cleanName(name)
	if err != nil {
		return zero, err
	}

	affected, err := execBuilt(ctx, s.db, s.sb.Update(kind.table).
		Set("name", name).
		Where(sq.Eq{"id": id, "user_id": owner}))
	if err != nil {
		return zero, fmt.Errorf("update %s %d: %w", kind.table, id, err)
	}
	if affected == 0 {
		return zero, ErrNotFound
	}
	return getNamed[T](ctx, s.db, s, kind, owner, id)
}

func (s *Store) deleteNamed(ctx context.Context, kind taxonomy, owner, id int) error {
	return s.withTx(ctx, func(dbTx *sqlx.Tx) error {
		affected, err := execBuilt(ctx, dbTx, s.sb.Delete(kind.table).Where(sq.Eq{"id": id, "user_id": owner}))
		if err != nil {
			return fmt.Errorf("delete %s %d: %w", kind.table, id, err)
		}
		if affected == 0 {
			return ErrNotFound
		}

		if _, err := execBuilt(ctx, dbTx, s.sb.Delete(kind.joinTable).Where(sq.Eq{kind.joinCol: id})); err != nil {
			return fmt.Errorf("unlink %s %d: %w", kind.table, id, err)
		}
		return nil
	})
}

// namedByIDs loads the owner's rows with the given ids, ordered by id
func namedByIDs[T any](ctx context.Context, q sqlx.QueryerContext, s *Store, kind taxonomy, owner int, ids []int) ([]T, error) {
	items := []T{}
	if len(ids) == 0 {
		return items, nil
	}
	err := selectBuilt(ctx, q, &items, s.sb.Select("id", "name", "user_id").
		From(kind.table).
		Where(sq.Eq{"id": ids, "user_id": owner}).
		OrderBy("id"))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind.table, err)
	}
	return items, nil
}

// checkOwned rejects any id that is not one of the owner's rows
func (s *Store) checkOwned(ctx context.Context, q sqlx.QueryerContext, kind taxonomy, owner int, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	var found []int
	err := selectBuilt(ctx, q, &found, s.sb.Select("id").
		From(kind.table).
		Where(sq.Eq{"id": ids, "user_id": owner}))
	if err != nil {
		return fmt.Errorf("check %s: %w", kind.table, err)
	}

	owned := make(map[int]struct{}, len(found))
	for _, id := range found {
		owned[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return invalid(kind.field, "invalid pk %d - object does not exist", id)
		}
	}
	return nil
}
