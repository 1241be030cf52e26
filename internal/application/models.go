package application

import "github.com/example/camp-planner/internal/persistence"

// Entity types are shared with the persistence layer; services validate and
// authorize, repositories store. Aliases keep the service API surface in one
// package without duplicating the structs.
type (
	User             = persistence.User
	Event            = persistence.Event
	Equipment        = persistence.Equipment
	PackingEquipment = persistence.PackingEquipment
	Meal             = persistence.Meal
	EventMealOption  = persistence.EventMealOption
	Attendance       = persistence.Attendance
	MealChoice       = persistence.MealChoice
	MealType         = persistence.MealType
	Page             = persistence.Page
)

// Meal type values re-exported for validation and tests.
const (
	MealTypeBreakfast = persistence.MealTypeBreakfast
	MealTypeLunch     = persistence.MealTypeLunch
	MealTypeDinner    = persistence.MealTypeDinner
	MealTypeSnack     = persistence.MealTypeSnack
	MealTypeLateNight = persistence.MealTypeLateNight
)

// SignupInput captures open-registration fields. The role is always forced
// to student.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// UserInput captures administrator supplied user attributes.
type UserInput struct {
	Email    string
	Password string
	FullName string
	Role     Role
	RoleCode string
	IsActive bool
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update a user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserInput
}

// UpdateProfileInput captures the self-service profile fields. Nil fields
// are left untouched.
type UpdateProfileInput struct {
	Email    *string
	FullName *string
}

// PackingEntryInput captures one packing list entry in an event payload.
type PackingEntryInput struct {
	EquipmentID string
	Quantity    int
	Required    bool
	Notes       *string
}

// MealOptionInput captures one meal option in an event payload.
type MealOptionInput struct {
	MealID      string
	MealType    MealType
	Day         int
	MaxQuantity *int
}

// EventInput captures caller provided event fields for creation.
type EventInput struct {
	Name              string
	Description       *string
	StartDate         string
	EndDate           string
	PackingEquipments []PackingEntryInput
	MealOptions       []MealOptionInput
}

// EventPatch captures a partial event update. Nil base fields are left
// untouched; a non-nil PackingEquipments slice replaces the entire packing
// list, including an empty slice which clears it.
type EventPatch struct {
	Name              *string
	Description       *string
	StartDate         *string
	EndDate           *string
	PackingEquipments *[]PackingEntryInput
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// UpdateEventParams wraps the data required to update an event.
type UpdateEventParams struct {
	Principal Principal
	EventID   string
	Patch     EventPatch
}

// EquipmentInput captures caller provided equipment catalog fields.
type EquipmentInput struct {
	Title       string
	Description *string
	Category    *string
}

// MealInput captures caller provided meal catalog fields.
type MealInput struct {
	Name         string
	Description  *string
	Price        *float64
	IsVegetarian bool
	IsBeef       bool
	Calories     *int
}

// MealChoiceInput captures the fields of a new meal choice.
type MealChoiceInput struct {
	AttendanceID      string
	EventMealOptionID string
	Quantity          int
	Notes             *string
}

// MealChoicePatch captures a partial meal choice update.
type MealChoicePatch struct {
	EventMealOptionID *string
	Quantity          *int
	Notes             *string
}

// JoinResult reports the outcome of an idempotent join or leave call.
type JoinResult struct {
	Changed bool
	Message string
}

// PackingList is an event's packing list shaped for response projection.
type PackingList struct {
	EventID   string
	EventName string
	Entries   []PackingEquipment
	Count     int
}
