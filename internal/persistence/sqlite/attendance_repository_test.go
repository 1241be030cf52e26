package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/camp-planner/internal/persistence"
	"github.com/example/camp-planner/internal/testfixtures"
)

// attendanceFixture seeds a student attending an event that offers two meal
// options, one of them shared with a second attendee.
type attendanceFixture struct {
	harness    *testfixtures.SQLiteHarness
	student    persistence.User
	other      persistence.User
	event      persistence.Event
	attendance persistence.Attendance
}

func newAttendanceFixture(t *testing.T) attendanceFixture {
	t.Helper()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t)

	teacher := testfixtures.NewUser(testfixtures.WithUserRole(persistence.RoleTeacher))
	student := testfixtures.NewUser()
	other := testfixtures.NewUser()
	for _, user := range []persistence.User{teacher, student, other} {
		if err := harness.Users.CreateUser(ctx, user); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}

	meal := testfixtures.NewMeal(teacher.ID)
	if err := harness.Meals.CreateMeal(ctx, meal); err != nil {
		t.Fatalf("failed to seed meal: %v", err)
	}

	capacity := 5
	event := testfixtures.NewEvent(teacher.ID,
		testfixtures.WithMealOption("option-att-1", meal.ID, persistence.MealTypeDinner, 1, &capacity),
		testfixtures.WithMealOption("option-att-2", meal.ID, persistence.MealTypeLunch, 2, nil))
	if err := harness.Events.CreateEvent(ctx, event); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}

	attendance := persistence.Attendance{ID: "attendance-fix-1", UserID: student.ID, EventID: event.ID, IsAttending: true}
	if err := harness.Attendances.CreateAttendance(ctx, attendance); err != nil {
		t.Fatalf("failed to seed attendance: %v", err)
	}

	return attendanceFixture{
		harness:    harness,
		student:    student,
		other:      other,
		event:      event,
		attendance: attendance,
	}
}

func TestAttendanceRepository_DuplicateJoinRejected(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	duplicate := persistence.Attendance{ID: "attendance-dup-1", UserID: fix.student.ID, EventID: fix.event.ID, IsAttending: true}
	if err := fix.harness.Attendances.CreateAttendance(ctx, duplicate); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	fetched, err := fix.harness.Attendances.GetAttendanceByUserEvent(ctx, fix.student.ID, fix.event.ID)
	if err != nil {
		t.Fatalf("GetAttendanceByUserEvent failed: %v", err)
	}
	if fetched.ID != fix.attendance.ID {
		t.Fatalf("expected original attendance preserved, got %#v", fetched)
	}
}

func TestAttendanceRepository_UpdateAttendanceTogglesFlag(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	row := fix.attendance
	row.IsAttending = false
	if err := fix.harness.Attendances.UpdateAttendance(ctx, row); err != nil {
		t.Fatalf("UpdateAttendance failed: %v", err)
	}
	fetched, err := fix.harness.Attendances.GetAttendance(ctx, row.ID)
	if err != nil {
		t.Fatalf("GetAttendance failed: %v", err)
	}
	if fetched.IsAttending {
		t.Fatal("expected the flag to be turned off")
	}

	row.IsAttending = true
	if err := fix.harness.Attendances.UpdateAttendance(ctx, row); err != nil {
		t.Fatalf("UpdateAttendance failed: %v", err)
	}
	fetched, err = fix.harness.Attendances.GetAttendance(ctx, row.ID)
	if err != nil {
		t.Fatalf("GetAttendance failed: %v", err)
	}
	if !fetched.IsAttending {
		t.Fatal("expected the flag to be turned back on")
	}

	missing := persistence.Attendance{ID: "attendance-ghost", IsAttending: true}
	if err := fix.harness.Attendances.UpdateAttendance(ctx, missing); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown row, got %v", err)
	}
}

func TestAttendanceRepository_ListEventIDsForUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	// The other user's attendance must not leak into the student's list.
	foreign := persistence.Attendance{ID: "attendance-other-1", UserID: fix.other.ID, EventID: fix.event.ID, IsAttending: true}
	if err := fix.harness.Attendances.CreateAttendance(ctx, foreign); err != nil {
		t.Fatalf("CreateAttendance failed: %v", err)
	}

	ids, total, err := fix.harness.Attendances.ListEventIDsForUser(ctx, fix.student.ID, persistence.Page{})
	if err != nil {
		t.Fatalf("ListEventIDsForUser failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != fix.event.ID {
		t.Fatalf("unexpected event ids: %#v", ids)
	}
	if total != 1 {
		t.Fatalf("expected a total of 1, got %d", total)
	}

	ids, total, err = fix.harness.Attendances.ListEventIDsForUser(ctx, "unknown-user", persistence.Page{})
	if err != nil {
		t.Fatalf("ListEventIDsForUser for unknown user failed: %v", err)
	}
	if len(ids) != 0 || total != 0 {
		t.Fatalf("expected no event ids, got %#v with total %d", ids, total)
	}
}

func TestAttendanceRepository_ListEventIDsForUserCountsBeyondPage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	secondEvent := testfixtures.NewEvent(fix.event.CreatedByID)
	if err := fix.harness.Events.CreateEvent(ctx, secondEvent); err != nil {
		t.Fatalf("failed to seed second event: %v", err)
	}

	// A turned-off row must count neither toward the page nor the total.
	rows := []persistence.Attendance{
		{ID: "attendance-page-1", UserID: fix.other.ID, EventID: fix.event.ID, IsAttending: true},
		{ID: "attendance-page-2", UserID: fix.other.ID, EventID: secondEvent.ID, IsAttending: false},
	}
	for _, row := range rows {
		if err := fix.harness.Attendances.CreateAttendance(ctx, row); err != nil {
			t.Fatalf("CreateAttendance %s failed: %v", row.ID, err)
		}
	}

	ids, total, err := fix.harness.Attendances.ListEventIDsForUser(ctx, fix.other.ID, persistence.Page{Limit: 1})
	if err != nil {
		t.Fatalf("ListEventIDsForUser failed: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected a page of 1 id, got %#v", ids)
	}
	if total != 1 {
		t.Fatalf("expected a total of 1, got %d", total)
	}
}

func TestAttendanceRepository_DeleteAttendanceRemovesChoices(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	now := testfixtures.ReferenceTime()
	choice := persistence.MealChoice{
		ID:                "choice-del-1",
		AttendanceID:      fix.attendance.ID,
		EventMealOptionID: "option-att-1",
		Quantity:          1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := fix.harness.Attendances.CreateMealChoice(ctx, choice); err != nil {
		t.Fatalf("CreateMealChoice failed: %v", err)
	}

	if err := fix.harness.Attendances.DeleteAttendance(ctx, fix.attendance.ID); err != nil {
		t.Fatalf("DeleteAttendance failed: %v", err)
	}

	if _, err := fix.harness.Attendances.GetAttendance(ctx, fix.attendance.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected attendance gone, got %v", err)
	}
	if _, err := fix.harness.Attendances.GetMealChoice(ctx, choice.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected meal choice gone, got %v", err)
	}
	if err := fix.harness.Attendances.DeleteAttendance(ctx, fix.attendance.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAttendanceRepository_MealChoiceRoundtrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	now := testfixtures.ReferenceTime()
	notes := "no peanuts"
	choice := persistence.MealChoice{
		ID:                "choice-rt-1",
		AttendanceID:      fix.attendance.ID,
		EventMealOptionID: "option-att-1",
		Quantity:          2,
		Notes:             &notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := fix.harness.Attendances.CreateMealChoice(ctx, choice); err != nil {
		t.Fatalf("CreateMealChoice failed: %v", err)
	}

	fetched, err := fix.harness.Attendances.GetMealChoice(ctx, choice.ID)
	if err != nil {
		t.Fatalf("GetMealChoice failed: %v", err)
	}
	if fetched.Quantity != 2 || fetched.EventMealOptionID != "option-att-1" {
		t.Fatalf("unexpected meal choice: %#v", fetched)
	}
	if fetched.Notes == nil || *fetched.Notes != notes {
		t.Fatalf("expected notes preserved, got %#v", fetched.Notes)
	}

	choice.EventMealOptionID = "option-att-2"
	choice.Quantity = 1
	choice.Notes = nil
	choice.UpdatedAt = now.Add(time.Minute)
	if err := fix.harness.Attendances.UpdateMealChoice(ctx, choice); err != nil {
		t.Fatalf("UpdateMealChoice failed: %v", err)
	}

	fetched, err = fix.harness.Attendances.GetMealChoice(ctx, choice.ID)
	if err != nil {
		t.Fatalf("GetMealChoice after update failed: %v", err)
	}
	if fetched.EventMealOptionID != "option-att-2" || fetched.Quantity != 1 || fetched.Notes != nil {
		t.Fatalf("unexpected meal choice after update: %#v", fetched)
	}

	option, err := fix.harness.Attendances.GetEventMealOption(ctx, "option-att-1")
	if err != nil {
		t.Fatalf("GetEventMealOption failed: %v", err)
	}
	if option.EventID != fix.event.ID || option.MealType != persistence.MealTypeDinner {
		t.Fatalf("unexpected meal option: %#v", option)
	}
	if option.MaxQuantity == nil || *option.MaxQuantity != 5 {
		t.Fatalf("expected max quantity 5, got %#v", option.MaxQuantity)
	}

	if err := fix.harness.Attendances.DeleteMealChoice(ctx, choice.ID); err != nil {
		t.Fatalf("DeleteMealChoice failed: %v", err)
	}
	if err := fix.harness.Attendances.DeleteMealChoice(ctx, choice.ID); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestAttendanceRepository_ListMealChoicesForUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	foreign := persistence.Attendance{ID: "attendance-list-1", UserID: fix.other.ID, EventID: fix.event.ID, IsAttending: true}
	if err := fix.harness.Attendances.CreateAttendance(ctx, foreign); err != nil {
		t.Fatalf("CreateAttendance failed: %v", err)
	}

	now := testfixtures.ReferenceTime()
	choices := []persistence.MealChoice{
		{ID: "choice-list-1", AttendanceID: fix.attendance.ID, EventMealOptionID: "option-att-1", Quantity: 1, CreatedAt: now, UpdatedAt: now},
		{ID: "choice-list-2", AttendanceID: fix.attendance.ID, EventMealOptionID: "option-att-2", Quantity: 1, CreatedAt: now.Add(time.Minute), UpdatedAt: now.Add(time.Minute)},
		{ID: "choice-list-3", AttendanceID: foreign.ID, EventMealOptionID: "option-att-1", Quantity: 1, CreatedAt: now, UpdatedAt: now},
	}
	for _, choice := range choices {
		if err := fix.harness.Attendances.CreateMealChoice(ctx, choice); err != nil {
			t.Fatalf("CreateMealChoice failed: %v", err)
		}
	}

	mine, err := fix.harness.Attendances.ListMealChoicesForUser(ctx, fix.student.ID, "")
	if err != nil {
		t.Fatalf("ListMealChoicesForUser failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(mine))
	}
	if mine[0].ID != "choice-list-1" || mine[1].ID != "choice-list-2" {
		t.Fatalf("unexpected choice ordering: %#v", mine)
	}

	narrowed, err := fix.harness.Attendances.ListMealChoicesForUser(ctx, fix.student.ID, fix.attendance.ID)
	if err != nil {
		t.Fatalf("ListMealChoicesForUser narrowed failed: %v", err)
	}
	if len(narrowed) != 2 {
		t.Fatalf("expected 2 narrowed choices, got %d", len(narrowed))
	}

	// Narrowing to someone else's attendance yields nothing for this user.
	empty, err := fix.harness.Attendances.ListMealChoicesForUser(ctx, fix.student.ID, foreign.ID)
	if err != nil {
		t.Fatalf("ListMealChoicesForUser foreign failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no choices, got %#v", empty)
	}
}

func TestAttendanceRepository_SumChoiceQuantityForOption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fix := newAttendanceFixture(t)

	foreign := persistence.Attendance{ID: "attendance-sum-1", UserID: fix.other.ID, EventID: fix.event.ID, IsAttending: true}
	if err := fix.harness.Attendances.CreateAttendance(ctx, foreign); err != nil {
		t.Fatalf("CreateAttendance failed: %v", err)
	}

	now := testfixtures.ReferenceTime()
	choices := []persistence.MealChoice{
		{ID: "choice-sum-1", AttendanceID: fix.attendance.ID, EventMealOptionID: "option-att-1", Quantity: 2, CreatedAt: now, UpdatedAt: now},
		{ID: "choice-sum-2", AttendanceID: foreign.ID, EventMealOptionID: "option-att-1", Quantity: 3, CreatedAt: now, UpdatedAt: now},
		{ID: "choice-sum-3", AttendanceID: foreign.ID, EventMealOptionID: "option-att-2", Quantity: 4, CreatedAt: now, UpdatedAt: now},
	}
	for _, choice := range choices {
		if err := fix.harness.Attendances.CreateMealChoice(ctx, choice); err != nil {
			t.Fatalf("CreateMealChoice failed: %v", err)
		}
	}

	total, err := fix.harness.Attendances.SumChoiceQuantityForOption(ctx, "option-att-1", "")
	if err != nil {
		t.Fatalf("SumChoiceQuantityForOption failed: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}

	total, err = fix.harness.Attendances.SumChoiceQuantityForOption(ctx, "option-att-1", "choice-sum-1")
	if err != nil {
		t.Fatalf("SumChoiceQuantityForOption with exclusion failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3 excluding own choice, got %d", total)
	}

	total, err = fix.harness.Attendances.SumChoiceQuantityForOption(ctx, "option-unused", "")
	if err != nil {
		t.Fatalf("SumChoiceQuantityForOption for unused option failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected total 0, got %d", total)
	}
}
