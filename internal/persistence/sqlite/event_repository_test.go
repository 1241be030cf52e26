package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/camp-planner/internal/persistence"
	"github.com/example/camp-planner/internal/testfixtures"
)

func TestEventRepository_AggregateRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	equipment := testfixtures.NewEquipment(teacher.ID)
	if err := harness.Equipments.CreateEquipment(ctx, equipment); err != nil {
		t.Fatalf("failed to seed equipment: %v", err)
	}
	meal := testfixtures.NewMeal(teacher.ID)
	if err := harness.Meals.CreateMeal(ctx, meal); err != nil {
		t.Fatalf("failed to seed meal: %v", err)
	}

	maxQuantity := 10
	event := testfixtures.NewEvent(teacher.ID)
	event.PackingEquipments = []persistence.PackingEquipment{
		{ID: "packing-rt-1", EventID: event.ID, EquipmentID: equipment.ID, Quantity: 2, Required: true},
	}
	event.MealOptions = []persistence.EventMealOption{
		{ID: "option-rt-1", EventID: event.ID, MealID: meal.ID, MealType: persistence.MealTypeDinner, Day: 1, MaxQuantity: &maxQuantity},
	}

	if err := harness.Events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	fetched, err := harness.Events.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if fetched.Name != event.Name || fetched.StartDate != "2026-07-10" || fetched.EndDate != "2026-07-14" {
		t.Fatalf("unexpected event retrieved: %#v", fetched)
	}
	if len(fetched.PackingEquipments) != 1 {
		t.Fatalf("expected 1 packing entry, got %d", len(fetched.PackingEquipments))
	}
	entry := fetched.PackingEquipments[0]
	if entry.Quantity != 2 || !entry.Required {
		t.Fatalf("unexpected packing entry: %#v", entry)
	}
	if entry.Equipment.ID != equipment.ID || entry.Equipment.Title != equipment.Title {
		t.Fatalf("expected embedded equipment %s, got %#v", equipment.ID, entry.Equipment)
	}
	if len(fetched.MealOptions) != 1 {
		t.Fatalf("expected 1 meal option, got %d", len(fetched.MealOptions))
	}
	option := fetched.MealOptions[0]
	if option.MealID != meal.ID || option.MealType != persistence.MealTypeDinner || option.Day != 1 {
		t.Fatalf("unexpected meal option: %#v", option)
	}
	if option.MaxQuantity == nil || *option.MaxQuantity != 10 {
		t.Fatalf("expected max quantity 10, got %#v", option.MaxQuantity)
	}
}

func TestEventRepository_CreateEventMissingReferenceWritesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	event := testfixtures.NewEvent(teacher.ID,
		testfixtures.WithPacking("packing-miss-1", "missing-equipment", 1, true))

	err := harness.Events.CreateEvent(ctx, event)
	var missing *persistence.MissingReferenceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingReferenceError, got %v", err)
	}
	if missing.Entity != "equipment" || missing.ID != "missing-equipment" {
		t.Fatalf("unexpected missing reference: %#v", missing)
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected error to unwrap to ErrNotFound, got %v", err)
	}

	// The transaction must roll back the base row too.
	if _, err := harness.Events.GetEvent(ctx, event.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected no event persisted, got %v", err)
	}
}

func TestEventRepository_UpdateEventReplacesPacking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	first := testfixtures.NewEquipment(teacher.ID)
	second := testfixtures.NewEquipment(teacher.ID)
	for _, equipment := range []persistence.Equipment{first, second} {
		if err := harness.Equipments.CreateEquipment(ctx, equipment); err != nil {
			t.Fatalf("failed to seed equipment: %v", err)
		}
	}

	event := testfixtures.NewEvent(teacher.ID,
		testfixtures.WithPacking("packing-rep-1", first.ID, 1, true))
	if err := harness.Events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	// A base-row update leaves the packing list untouched.
	event.Name = "Renamed Camp"
	event.UpdatedAt = event.UpdatedAt.Add(time.Minute)
	if err := harness.Events.UpdateEvent(ctx, event, false); err != nil {
		t.Fatalf("UpdateEvent failed: %v", err)
	}
	fetched, err := harness.Events.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if fetched.Name != "Renamed Camp" {
		t.Fatalf("expected renamed event, got %q", fetched.Name)
	}
	if len(fetched.PackingEquipments) != 1 || fetched.PackingEquipments[0].EquipmentID != first.ID {
		t.Fatalf("expected packing list untouched, got %#v", fetched.PackingEquipments)
	}

	// Replacing swaps the whole list.
	event.PackingEquipments = []persistence.PackingEquipment{
		{ID: "packing-rep-2", EventID: event.ID, EquipmentID: second.ID, Quantity: 3, Required: false},
	}
	if err := harness.Events.UpdateEvent(ctx, event, true); err != nil {
		t.Fatalf("UpdateEvent with replace failed: %v", err)
	}
	fetched, err = harness.Events.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(fetched.PackingEquipments) != 1 || fetched.PackingEquipments[0].EquipmentID != second.ID {
		t.Fatalf("expected replaced packing list, got %#v", fetched.PackingEquipments)
	}
	if fetched.PackingEquipments[0].Quantity != 3 || fetched.PackingEquipments[0].Required {
		t.Fatalf("unexpected replacement entry: %#v", fetched.PackingEquipments[0])
	}

	// An empty replacement clears the list.
	event.PackingEquipments = nil
	if err := harness.Events.UpdateEvent(ctx, event, true); err != nil {
		t.Fatalf("UpdateEvent clearing packing failed: %v", err)
	}
	fetched, err = harness.Events.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if len(fetched.PackingEquipments) != 0 {
		t.Fatalf("expected empty packing list, got %#v", fetched.PackingEquipments)
	}
}

func TestEventRepository_DeleteEventCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	student := testfixtures.NewUser()
	for _, user := range []persistence.User{teacher, student} {
		if err := harness.Users.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	equipment := testfixtures.NewEquipment(teacher.ID)
	if err := harness.Equipments.CreateEquipment(ctx, equipment); err != nil {
		t.Fatalf("failed to seed equipment: %v", err)
	}
	meal := testfixtures.NewMeal(teacher.ID)
	if err := harness.Meals.CreateMeal(ctx, meal); err != nil {
		t.Fatalf("failed to seed meal: %v", err)
	}

	event := testfixtures.NewEvent(teacher.ID,
		testfixtures.WithPacking("packing-cas-1", equipment.ID, 1, true),
		testfixtures.WithMealOption("option-cas-1", meal.ID, persistence.MealTypeLunch, 1, nil))
	if err := harness.Events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	attendance := persistence.Attendance{ID: "attendance-cas-1", UserID: student.ID, EventID: event.ID, IsAttending: true}
	if err := harness.Attendances.CreateAttendance(ctx, attendance); err != nil {
		t.Fatalf("CreateAttendance failed: %v", err)
	}
	choice := persistence.MealChoice{
		ID:                "choice-cas-1",
		AttendanceID:      attendance.ID,
		EventMealOptionID: "option-cas-1",
		Quantity:          1,
		CreatedAt:         testfixtures.ReferenceTime(),
		UpdatedAt:         testfixtures.ReferenceTime(),
	}
	if err := harness.Attendances.CreateMealChoice(ctx, choice); err != nil {
		t.Fatalf("CreateMealChoice failed: %v", err)
	}

	if err := harness.Events.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	if _, err := harness.Events.GetEvent(ctx, event.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected event gone, got %v", err)
	}
	if _, err := harness.Attendances.GetAttendance(ctx, attendance.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected attendance gone, got %v", err)
	}
	if _, err := harness.Attendances.GetMealChoice(ctx, choice.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected meal choice gone, got %v", err)
	}
	entries, count, err := harness.Equipments.ListPackingForEvent(ctx, event.ID, persistence.Page{})
	if err != nil {
		t.Fatalf("ListPackingForEvent failed: %v", err)
	}
	if count != 0 || len(entries) != 0 {
		t.Fatalf("expected no packing rows left, got %d", count)
	}

	// The catalog entry survives the cascade.
	if _, err := harness.Equipments.GetEquipment(ctx, equipment.ID); err != nil {
		t.Fatalf("expected equipment to survive, got %v", err)
	}

	if err := harness.Events.DeleteEvent(ctx, event.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestEventRepository_ListEventsByIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	if err := harness.Users.CreateUser(ctx, teacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}

	first := testfixtures.NewEvent(teacher.ID)
	second := testfixtures.NewEvent(teacher.ID)
	third := testfixtures.NewEvent(teacher.ID)
	for _, event := range []persistence.Event{first, second, third} {
		if err := harness.Events.CreateEvent(ctx, event); err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
	}

	events, err := harness.Events.ListEventsByIDs(ctx, []string{first.ID, third.ID, "missing-event"})
	if err != nil {
		t.Fatalf("ListEventsByIDs failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	got := map[string]bool{}
	for _, event := range events {
		got[event.ID] = true
	}
	if !got[first.ID] || !got[third.ID] {
		t.Fatalf("unexpected events returned: %#v", got)
	}
}
