package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// MealService orchestrates the meal catalog.
type MealService struct {
	meals       persistence.MealRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMealService wires dependencies for the meal service.
func NewMealService(meals persistence.MealRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MealService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MealService{meals: meals, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// CreateMeal adds a catalog entry. Teachers and administrators only.
func (s *MealService) CreateMeal(ctx context.Context, principal Principal, input MealInput) (Meal, error) {
	if s == nil || s.meals == nil {
		return Meal{}, fmt.Errorf("meal service not configured")
	}
	if !principal.AtLeast(RoleTeacher) {
		return Meal{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "meal_service", "create_meal", slog.String("actor_id", principal.UserID))

	normalized, vErr := validateMealInput(input)
	if vErr.HasErrors() {
		return Meal{}, vErr
	}

	meal := Meal{
		ID:           s.idGenerator(),
		Name:         normalized.Name,
		Description:  normalized.Description,
		Price:        normalized.Price,
		IsVegetarian: normalized.IsVegetarian,
		IsBeef:       normalized.IsBeef,
		Calories:     normalized.Calories,
		CreatedByID:  principal.UserID,
		CreatedAt:    s.now(),
	}
	if err := s.meals.CreateMeal(ctx, meal); err != nil {
		logger.Warn("create rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Meal{}, mapRepositoryError(err)
	}
	logger.Info("meal created", slog.String("meal_id", meal.ID))
	return meal, nil
}

// GetMeal returns one catalog entry. Staff and above.
func (s *MealService) GetMeal(ctx context.Context, principal Principal, mealID string) (Meal, error) {
	if s == nil || s.meals == nil {
		return Meal{}, fmt.Errorf("meal service not configured")
	}
	if !principal.AtLeast(RoleStaff) {
		return Meal{}, ErrForbidden
	}
	meal, err := s.meals.GetMeal(ctx, mealID)
	if err != nil {
		return Meal{}, mapRepositoryError(err)
	}
	return meal, nil
}

// ListMeals returns a page of catalog entries. Staff and above.
func (s *MealService) ListMeals(ctx context.Context, principal Principal, page Page) ([]Meal, int, error) {
	if s == nil || s.meals == nil {
		return nil, 0, fmt.Errorf("meal service not configured")
	}
	if !principal.AtLeast(RoleStaff) {
		return nil, 0, ErrForbidden
	}
	meals, total, err := s.meals.ListMeals(ctx, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	return meals, total, nil
}

// UpdateMeal edits a catalog entry. Teachers and administrators only.
func (s *MealService) UpdateMeal(ctx context.Context, principal Principal, mealID string, input MealInput) (Meal, error) {
	if s == nil || s.meals == nil {
		return Meal{}, fmt.Errorf("meal service not configured")
	}
	if !principal.AtLeast(RoleTeacher) {
		return Meal{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "meal_service", "update_meal",
		slog.String("actor_id", principal.UserID), slog.String("meal_id", mealID))

	existing, err := s.meals.GetMeal(ctx, mealID)
	if err != nil {
		return Meal{}, mapRepositoryError(err)
	}

	normalized, vErr := validateMealInput(input)
	if vErr.HasErrors() {
		return Meal{}, vErr
	}

	existing.Name = normalized.Name
	existing.Description = normalized.Description
	existing.Price = normalized.Price
	existing.IsVegetarian = normalized.IsVegetarian
	existing.IsBeef = normalized.IsBeef
	existing.Calories = normalized.Calories

	if err := s.meals.UpdateMeal(ctx, existing); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Meal{}, mapRepositoryError(err)
	}
	logger.Info("meal updated")
	return existing, nil
}

// DeleteMeal removes a catalog entry. The delete is refused while any event
// meal option still references the entry.
func (s *MealService) DeleteMeal(ctx context.Context, principal Principal, mealID string) error {
	if s == nil || s.meals == nil {
		return fmt.Errorf("meal service not configured")
	}
	if !principal.AtLeast(RoleTeacher) {
		return ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "meal_service", "delete_meal",
		slog.String("actor_id", principal.UserID), slog.String("meal_id", mealID))

	if err := s.meals.DeleteMeal(ctx, mealID); err != nil {
		logger.Warn("delete rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return mapRepositoryError(err)
	}
	logger.Info("meal deleted")
	return nil
}

func validateMealInput(input MealInput) (MealInput, *ValidationError) {
	input.Name = strings.TrimSpace(input.Name)

	vErr := newValidationError()
	if input.Name == "" {
		vErr.add("name", "must not be empty")
	}
	if input.Price != nil && *input.Price < 0 {
		vErr.add("price", "must not be negative")
	}
	if input.Calories != nil && *input.Calories < 0 {
		vErr.add("calories", "must not be negative")
	}
	return input, vErr
}
