// Package persistence declares the storage models and repository contracts
// consumed by the application services. The sqlite subpackage provides the
// concrete implementation.
package persistence

import "context"

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context, page Page) ([]User, int, error)
	DeleteUser(ctx context.Context, id string) error
}

// EventRepository stores event aggregates. Create, Update and Delete are
// atomic over the event row and all dependent collections: either every row
// involved is written (or removed), or none is.
type EventRepository interface {
	// CreateEvent validates every equipment and meal reference named by the
	// aggregate inside the same transaction that inserts, returning a
	// *MissingReferenceError and writing nothing when one is absent.
	CreateEvent(ctx context.Context, event Event) error
	// UpdateEvent patches the base row. When replacePacking is true the
	// event's packing rows are deleted and recreated from event's
	// PackingEquipments in the same transaction (full replace).
	UpdateEvent(ctx context.Context, event Event, replacePacking bool) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, page Page) ([]Event, int, error)
	ListEventsByIDs(ctx context.Context, ids []string) ([]Event, error)
	// DeleteEvent removes the event with its packing rows, meal options,
	// attendances and, transitively, meal choices.
	DeleteEvent(ctx context.Context, id string) error
}

// EquipmentRepository exposes catalog CRUD for equipment entries plus the
// packing-list operations that reference them.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, equipment Equipment) error
	UpdateEquipment(ctx context.Context, equipment Equipment) error
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	ListEquipments(ctx context.Context, page Page) ([]Equipment, int, error)
	// DeleteEquipment fails with ErrReferenced while any packing row still
	// points at the entry.
	DeleteEquipment(ctx context.Context, id string) error

	CreatePackingEquipment(ctx context.Context, packing PackingEquipment) error
	ListPackingForEvent(ctx context.Context, eventID string, page Page) ([]PackingEquipment, int, error)
}

// MealRepository exposes catalog CRUD for meals.
type MealRepository interface {
	CreateMeal(ctx context.Context, meal Meal) error
	UpdateMeal(ctx context.Context, meal Meal) error
	GetMeal(ctx context.Context, id string) (Meal, error)
	ListMeals(ctx context.Context, page Page) ([]Meal, int, error)
	DeleteMeal(ctx context.Context, id string) error
}

// AttendanceRepository stores attendance rows and the meal choices hanging
// off them.
type AttendanceRepository interface {
	// CreateAttendance inserts a new row; the unique (user, event) index
	// turns concurrent duplicate joins into ErrDuplicate.
	CreateAttendance(ctx context.Context, attendance Attendance) error
	UpdateAttendance(ctx context.Context, attendance Attendance) error
	GetAttendance(ctx context.Context, id string) (Attendance, error)
	GetAttendanceByUserEvent(ctx context.Context, userID, eventID string) (Attendance, error)
	ListEventIDsForUser(ctx context.Context, userID string, page Page) ([]string, int, error)
	DeleteAttendance(ctx context.Context, id string) error

	GetEventMealOption(ctx context.Context, id string) (EventMealOption, error)

	CreateMealChoice(ctx context.Context, choice MealChoice) error
	UpdateMealChoice(ctx context.Context, choice MealChoice) error
	GetMealChoice(ctx context.Context, id string) (MealChoice, error)
	ListMealChoicesForUser(ctx context.Context, userID string, attendanceID string) ([]MealChoice, error)
	DeleteMealChoice(ctx context.Context, id string) error
	// SumChoiceQuantityForOption totals the quantity already selected against
	// an option, excluding the choice named by excludeChoiceID when non-empty.
	SumChoiceQuantityForOption(ctx context.Context, optionID, excludeChoiceID string) (int, error)
}
