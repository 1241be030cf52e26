package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/camp-planner/internal/persistence"
	"github.com/example/camp-planner/internal/testfixtures"
)

func TestMealRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	price := 4.5
	calories := 620
	meal := testfixtures.NewMeal(teacher.ID)
	meal.Price = &price
	meal.Calories = &calories
	meal.IsVegetarian = true

	if err := harness.Meals.CreateMeal(ctx, meal); err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}

	fetched, err := harness.Meals.GetMeal(ctx, meal.ID)
	if err != nil {
		t.Fatalf("GetMeal failed: %v", err)
	}
	if fetched.Name != meal.Name || !fetched.IsVegetarian || fetched.IsBeef {
		t.Fatalf("unexpected meal retrieved: %#v", fetched)
	}
	if fetched.Price == nil || *fetched.Price != price {
		t.Fatalf("expected price preserved, got %#v", fetched.Price)
	}
	if fetched.Calories == nil || *fetched.Calories != calories {
		t.Fatalf("expected calories preserved, got %#v", fetched.Calories)
	}

	meal.Name = "Vegetable curry"
	meal.Price = nil
	if err := harness.Meals.UpdateMeal(ctx, meal); err != nil {
		t.Fatalf("UpdateMeal failed: %v", err)
	}

	fetched, err = harness.Meals.GetMeal(ctx, meal.ID)
	if err != nil {
		t.Fatalf("GetMeal after update failed: %v", err)
	}
	if fetched.Name != "Vegetable curry" || fetched.Price != nil {
		t.Fatalf("unexpected meal after update: %#v", fetched)
	}

	meals, total, err := harness.Meals.ListMeals(ctx, persistence.Page{})
	if err != nil {
		t.Fatalf("ListMeals failed: %v", err)
	}
	if total != 1 || len(meals) != 1 {
		t.Fatalf("expected one meal, got total=%d len=%d", total, len(meals))
	}

	if err := harness.Meals.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("DeleteMeal failed: %v", err)
	}
	if err := harness.Meals.DeleteMeal(ctx, meal.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMealRepository_DeleteBlockedWhileReferenced(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	meal := testfixtures.NewMeal(teacher.ID)
	if err := harness.Meals.CreateMeal(ctx, meal); err != nil {
		t.Fatalf("CreateMeal failed: %v", err)
	}

	event := testfixtures.NewEvent(teacher.ID,
		testfixtures.WithMealOption("option-meal-1", meal.ID, persistence.MealTypeBreakfast, 1, nil))
	if err := harness.Events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	if err := harness.Meals.DeleteMeal(ctx, meal.ID); !errors.Is(err, persistence.ErrReferenced) {
		t.Fatalf("expected ErrReferenced, got %v", err)
	}

	if err := harness.Events.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if err := harness.Meals.DeleteMeal(ctx, meal.ID); err != nil {
		t.Fatalf("DeleteMeal after release failed: %v", err)
	}
}
