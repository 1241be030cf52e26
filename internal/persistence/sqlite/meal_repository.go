package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// MealRepository implements persistence.MealRepository using SQLite.
type MealRepository struct {
	pool *ConnectionPool
}

// NewMealRepository creates a new SQLite meal repository.
func NewMealRepository(pool *ConnectionPool) *MealRepository {
	return &MealRepository{pool: pool}
}

// CreateMeal inserts a new catalog entry.
func (r *MealRepository) CreateMeal(ctx context.Context, meal persistence.Meal) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO meals (id, name, description, price, is_vegetarian, is_beef, calories, created_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.Name,
		nullString(meal.Description),
		nullFloat(meal.Price),
		meal.IsVegetarian,
		meal.IsBeef,
		nullInt(meal.Calories),
		meal.CreatedByID,
		meal.CreatedAt.Format(time.RFC3339),
	)
	return mapSQLError(err)
}

// UpdateMeal updates an existing catalog entry.
func (r *MealRepository) UpdateMeal(ctx context.Context, meal persistence.Meal) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE meals SET name = ?, description = ?, price = ?, is_vegetarian = ?, is_beef = ?, calories = ?
		WHERE id = ?`,
		meal.Name,
		nullString(meal.Description),
		nullFloat(meal.Price),
		meal.IsVegetarian,
		meal.IsBeef,
		nullInt(meal.Calories),
		meal.ID,
	)
	if err != nil {
		return mapSQLError(err)
	}
	return requireRowAffected(result)
}

// GetMeal retrieves a catalog entry by id.
func (r *MealRepository) GetMeal(ctx context.Context, id string) (persistence.Meal, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, is_vegetarian, is_beef, calories, created_by_id, created_at
		FROM meals WHERE id = ?`, id)
	return scanMeal(row)
}

// ListMeals returns a page of catalog entries ordered by name plus the total
// count.
func (r *MealRepository) ListMeals(ctx context.Context, page persistence.Page) ([]persistence.Meal, int, error) {
	page = page.Clamp()

	var count int
	if err := r.pool.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals`).Scan(&count); err != nil {
		return nil, 0, mapSQLError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, description, price, is_vegetarian, is_beef, calories, created_by_id, created_at
		FROM meals ORDER BY name, id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, mapSQLError(err)
	}
	defer rows.Close()

	meals := make([]persistence.Meal, 0)
	for rows.Next() {
		meal, err := scanMeal(rows)
		if err != nil {
			return nil, 0, err
		}
		meals = append(meals, meal)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapSQLError(err)
	}

	return meals, count, nil
}

// DeleteMeal removes a catalog entry. Meals referenced by an event meal
// option are protected by the foreign key and surface as ErrReferenced.
func (r *MealRepository) DeleteMeal(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM meals WHERE id = ?`, id).Scan(&exists); err != nil {
			return mapSQLError(err)
		}
		if exists == 0 {
			return persistence.ErrNotFound
		}

		var references int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM event_meal_options WHERE meal_id = ?`, id).Scan(&references); err != nil {
			return mapSQLError(err)
		}
		if references > 0 {
			return persistence.ErrReferenced
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
		return mapSQLError(err)
	})
}

func scanMeal(row rowScanner) (persistence.Meal, error) {
	var (
		meal        persistence.Meal
		description sql.NullString
		price       sql.NullFloat64
		calories    sql.NullInt64
		createdAt   string
	)
	err := row.Scan(
		&meal.ID,
		&meal.Name,
		&description,
		&price,
		&meal.IsVegetarian,
		&meal.IsBeef,
		&calories,
		&meal.CreatedByID,
		&createdAt,
	)
	if err != nil {
		return persistence.Meal{}, mapSQLError(err)
	}

	meal.Description = fromNullString(description)
	meal.Price = fromNullFloat(price)
	meal.Calories = fromNullInt(calories)
	meal.CreatedAt = parseTimestamp(createdAt)
	return meal, nil
}
