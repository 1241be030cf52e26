package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

const dateLayout = "2006-01-02"

// EventService orchestrates validation, authorization, and persistence for
// event aggregates.
type EventService struct {
	events      persistence.EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for the event service.
func NewEventService(events persistence.EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{events: events, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// CreateEvent persists a new event with its packing list and meal options in
// a single transaction. Teachers and administrators only.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event service not configured")
	}
	if !params.Principal.AtLeast(RoleTeacher) {
		return Event{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "event_service", "create_event", slog.String("actor_id", params.Principal.UserID))

	input := params.Input
	input.Name = strings.TrimSpace(input.Name)

	vErr := newValidationError()
	if input.Name == "" {
		vErr.add("name", "must not be empty")
	}
	start := validateDate(vErr, "start_date", input.StartDate)
	end := validateDate(vErr, "end_date", input.EndDate)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		vErr.add("end_date", "must not be before start_date")
	}
	validatePackingEntries(vErr, input.PackingEquipments)
	validateMealOptions(vErr, input.MealOptions)
	if vErr.HasErrors() {
		return Event{}, vErr
	}

	createdAt := s.now()
	event := Event{
		ID:          s.idGenerator(),
		Name:        input.Name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedByID: params.Principal.UserID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	for _, entry := range input.PackingEquipments {
		event.PackingEquipments = append(event.PackingEquipments, persistence.PackingEquipment{
			ID:          s.idGenerator(),
			EventID:     event.ID,
			EquipmentID: entry.EquipmentID,
			Quantity:    entry.Quantity,
			Required:    entry.Required,
			Notes:       entry.Notes,
		})
	}
	for _, option := range input.MealOptions {
		event.MealOptions = append(event.MealOptions, persistence.EventMealOption{
			ID:          s.idGenerator(),
			EventID:     event.ID,
			MealID:      option.MealID,
			MealType:    option.MealType,
			Day:         option.Day,
			MaxQuantity: option.MaxQuantity,
		})
	}

	if err := s.events.CreateEvent(ctx, event); err != nil {
		logger.Warn("create rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Event{}, mapRepositoryError(err)
	}

	persisted, err := s.events.GetEvent(ctx, event.ID)
	if err != nil {
		return Event{}, mapRepositoryError(err)
	}
	logger.Info("event created", slog.String("event_id", event.ID))
	return persisted, nil
}

// GetEvent returns one event aggregate. Visible to every authenticated user.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event service not configured")
	}
	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapRepositoryError(err)
	}
	return event, nil
}

// ListEvents returns a page of events. Visible to every authenticated user.
func (s *EventService) ListEvents(ctx context.Context, page Page) ([]Event, int, error) {
	if s == nil || s.events == nil {
		return nil, 0, fmt.Errorf("event service not configured")
	}
	events, total, err := s.events.ListEvents(ctx, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// UpdateEvent applies a partial edit. Only the creator or an administrator
// may change an event. A present packing list replaces the stored one
// entirely, an empty list clears it.
func (s *EventService) UpdateEvent(ctx context.Context, params UpdateEventParams) (Event, error) {
	if s == nil || s.events == nil {
		return Event{}, fmt.Errorf("event service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "event_service", "update_event",
		slog.String("actor_id", params.Principal.UserID), slog.String("event_id", params.EventID))

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		return Event{}, mapRepositoryError(err)
	}
	if !canManageEvent(params.Principal, existing) {
		return Event{}, ErrForbidden
	}

	patch := params.Patch
	vErr := newValidationError()
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			vErr.add("name", "must not be empty")
		}
		existing.Name = name
	}
	if patch.Description != nil {
		existing.Description = patch.Description
	}
	if patch.StartDate != nil {
		validateDate(vErr, "start_date", *patch.StartDate)
		existing.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		validateDate(vErr, "end_date", *patch.EndDate)
		existing.EndDate = *patch.EndDate
	}
	if !vErr.HasErrors() {
		start, _ := time.Parse(dateLayout, existing.StartDate)
		end, _ := time.Parse(dateLayout, existing.EndDate)
		if end.Before(start) {
			vErr.add("end_date", "must not be before start_date")
		}
	}

	replacePacking := patch.PackingEquipments != nil
	if replacePacking {
		validatePackingEntries(vErr, *patch.PackingEquipments)
	}
	if vErr.HasErrors() {
		return Event{}, vErr
	}

	if replacePacking {
		existing.PackingEquipments = nil
		for _, entry := range *patch.PackingEquipments {
			existing.PackingEquipments = append(existing.PackingEquipments, persistence.PackingEquipment{
				ID:          s.idGenerator(),
				EventID:     existing.ID,
				EquipmentID: entry.EquipmentID,
				Quantity:    entry.Quantity,
				Required:    entry.Required,
				Notes:       entry.Notes,
			})
		}
	}
	existing.UpdatedAt = s.now()

	if err := s.events.UpdateEvent(ctx, existing, replacePacking); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Event{}, mapRepositoryError(err)
	}

	persisted, err := s.events.GetEvent(ctx, existing.ID)
	if err != nil {
		return Event{}, mapRepositoryError(err)
	}
	logger.Info("event updated")
	return persisted, nil
}

// DeleteEvent removes an event with everything hanging off it. Only the
// creator or an administrator may delete.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	if s == nil || s.events == nil {
		return fmt.Errorf("event service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "event_service", "delete_event",
		slog.String("actor_id", principal.UserID), slog.String("event_id", eventID))

	existing, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !canManageEvent(principal, existing) {
		return ErrForbidden
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return mapRepositoryError(err)
	}
	logger.Info("event deleted")
	return nil
}

func canManageEvent(principal Principal, event Event) bool {
	return principal.IsAdmin() || principal.UserID == event.CreatedByID
}

// validateDate records an issue when the value is not a calendar date in
// YYYY-MM-DD form, returning the parsed date otherwise.
func validateDate(vErr *ValidationError, field, value string) time.Time {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		vErr.add(field, "must be a date in YYYY-MM-DD format")
		return time.Time{}
	}
	return parsed
}

func validatePackingEntries(vErr *ValidationError, entries []PackingEntryInput) {
	seen := make(map[string]bool, len(entries))
	for i, entry := range entries {
		field := fmt.Sprintf("packing_equipments.%d", i)
		if entry.EquipmentID == "" {
			vErr.add(field+".equipment_id", "must not be empty")
			continue
		}
		if seen[entry.EquipmentID] {
			vErr.add(field+".equipment_id", "equipment listed more than once")
		}
		seen[entry.EquipmentID] = true
		if entry.Quantity < 1 {
			vErr.add(field+".quantity", "must be at least 1")
		}
	}
}

func validateMealOptions(vErr *ValidationError, options []MealOptionInput) {
	for i, option := range options {
		field := fmt.Sprintf("meal_options.%d", i)
		if option.MealID == "" {
			vErr.add(field+".meal_id", "must not be empty")
		}
		if !validMealType(option.MealType) {
			vErr.add(field+".meal_type", "must be one of breakfast, lunch, dinner, snack, late_night")
		}
		if option.Day < 1 {
			vErr.add(field+".day", "must be at least 1")
		}
		if option.MaxQuantity != nil && *option.MaxQuantity < 1 {
			vErr.add(field+".max_quantity", "must be at least 1 when set")
		}
	}
}

func validMealType(mealType MealType) bool {
	switch mealType {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack, MealTypeLateNight:
		return true
	}
	return false
}
