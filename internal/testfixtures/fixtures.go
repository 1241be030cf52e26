package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

var (
	userCounter      uint64
	eventCounter     uint64
	equipmentCounter uint64
	mealCounter      uint64
)

var referenceTime = time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// UserOption configures a generated user fixture.
type UserOption func(*persistence.User)

// NewUser returns a deterministic user record with optional overrides.
func NewUser(opts ...UserOption) persistence.User {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	user := persistence.User{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		FullName:     fmt.Sprintf("User %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		Role:         persistence.RoleStudent,
		RoleCode:     "student_default",
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&user)
	}
	return user
}

// WithUserID overrides the generated user id.
func WithUserID(id string) UserOption {
	return func(u *persistence.User) { u.ID = id }
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(u *persistence.User) { u.Email = email }
}

// WithUserRole overrides the generated role and applies the matching default
// role code.
func WithUserRole(role persistence.Role) UserOption {
	return func(u *persistence.User) {
		u.Role = role
		switch role {
		case persistence.RoleAdmin:
			u.RoleCode = "admin_default"
		case persistence.RoleTeacher:
			u.RoleCode = "teacher_default"
		case persistence.RoleStaff:
			u.RoleCode = "staff_default"
		default:
			u.RoleCode = "student_default"
		}
	}
}

// EventOption configures a generated event fixture.
type EventOption func(*persistence.Event)

// NewEvent returns a deterministic event record with optional overrides. The
// dependent collections start out empty.
func NewEvent(createdByID string, opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	event := persistence.Event{
		ID:          fmt.Sprintf("event-%03d", idx),
		Name:        fmt.Sprintf("Event %03d", idx),
		StartDate:   "2026-07-10",
		EndDate:     "2026-07-14",
		CreatedByID: createdByID,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event id.
func WithEventID(id string) EventOption {
	return func(e *persistence.Event) { e.ID = id }
}

// WithPacking appends a packing row to the event aggregate.
func WithPacking(id, equipmentID string, quantity int, required bool) EventOption {
	return func(e *persistence.Event) {
		e.PackingEquipments = append(e.PackingEquipments, persistence.PackingEquipment{
			ID:          id,
			EventID:     e.ID,
			EquipmentID: equipmentID,
			Quantity:    quantity,
			Required:    required,
		})
	}
}

// WithMealOption appends a meal option to the event aggregate.
func WithMealOption(id, mealID string, mealType persistence.MealType, day int, maxQuantity *int) EventOption {
	return func(e *persistence.Event) {
		e.MealOptions = append(e.MealOptions, persistence.EventMealOption{
			ID:          id,
			EventID:     e.ID,
			MealID:      mealID,
			MealType:    mealType,
			Day:         day,
			MaxQuantity: maxQuantity,
		})
	}
}

// NewEquipment returns a deterministic equipment catalog record.
func NewEquipment(ownerID string) persistence.Equipment {
	idx := atomic.AddUint64(&equipmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	return persistence.Equipment{
		ID:        fmt.Sprintf("equipment-%03d", idx),
		Title:     fmt.Sprintf("Equipment %03d", idx),
		OwnerID:   ownerID,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// NewMeal returns a deterministic meal catalog record.
func NewMeal(createdByID string) persistence.Meal {
	idx := atomic.AddUint64(&mealCounter, 1)
	return persistence.Meal{
		ID:          fmt.Sprintf("meal-%03d", idx),
		Name:        fmt.Sprintf("Meal %03d", idx),
		CreatedByID: createdByID,
		CreatedAt:   referenceTime.Add(time.Duration(idx) * time.Minute),
	}
}
