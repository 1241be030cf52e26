package persistence

import "time"

// Role is the access level assigned to a user. Levels form a strict
// hierarchy: student < staff < teacher < admin.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// MealType identifies the slot an event meal option fills on a given day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
	MealTypeLateNight MealType = "late_night"
)

// User represents an account stored in the database.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	RoleCode     string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Event represents an event aggregate root. PackingEquipments and
// MealOptions are the dependent collections owned by the event; repositories
// load and store them together with the row itself.
type Event struct {
	ID          string
	Name        string
	Description *string
	StartDate   string // YYYY-MM-DD
	EndDate     string // YYYY-MM-DD
	CreatedByID string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	PackingEquipments []PackingEquipment
	MealOptions       []EventMealOption
}

// Equipment is a catalog entry referenced, not owned, by events.
type Equipment struct {
	ID          string
	Title       string
	Description *string
	Category    *string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PackingEquipment binds one event to one equipment entry with packing
// details. At most one binding may exist per (event, equipment) pair.
type PackingEquipment struct {
	ID          string
	EventID     string
	EquipmentID string
	Quantity    int
	Required    bool
	Notes       *string

	// Equipment is populated on reads for response projection.
	Equipment Equipment
}

// Meal is a catalog entry with dietary metadata.
type Meal struct {
	ID           string
	Name         string
	Description  *string
	Price        *float64
	IsVegetarian bool
	IsBeef       bool
	Calories     *int
	CreatedByID  string
	CreatedAt    time.Time
}

// EventMealOption binds a meal to an event for a specific day and meal type.
type EventMealOption struct {
	ID          string
	EventID     string
	MealID      string
	MealType    MealType
	Day         int
	MaxQuantity *int
}

// Attendance binds a user to an event. At most one row may exist per
// (user, event) pair; leaving an event deletes the row rather than flipping
// IsAttending off.
type Attendance struct {
	ID          string
	UserID      string
	EventID     string
	IsAttending bool
}

// MealChoice binds an attendance to an event meal option.
type MealChoice struct {
	ID                string
	AttendanceID      string
	EventMealOptionID string
	Quantity          int
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Page bounds list queries.
type Page struct {
	Skip  int
	Limit int
}

// Clamp normalises a page so storage code never sees negative offsets or an
// unbounded limit.
func (p Page) Clamp() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 100
	}
	return p
}
