package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// MealChoiceService orchestrates the meal selections attendees make against
// an event's meal options.
type MealChoiceService struct {
	attendances persistence.AttendanceRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewMealChoiceService wires dependencies for the meal choice service.
func NewMealChoiceService(attendances persistence.AttendanceRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MealChoiceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MealChoiceService{attendances: attendances, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// CreateMealChoice records a selection against one of the caller's
// attendances. Another user's attendance, an unknown option, and an option
// belonging to a different event all read as not found so nothing leaks
// about rows the caller does not own.
func (s *MealChoiceService) CreateMealChoice(ctx context.Context, principal Principal, input MealChoiceInput) (MealChoice, error) {
	if s == nil || s.attendances == nil {
		return MealChoice{}, fmt.Errorf("meal choice service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "meal_choice_service", "create_meal_choice",
		slog.String("user_id", principal.UserID))

	vErr := newValidationError()
	if input.AttendanceID == "" {
		vErr.add("attendance_id", "must not be empty")
	}
	if input.EventMealOptionID == "" {
		vErr.add("event_meal_option_id", "must not be empty")
	}
	if input.Quantity < 1 {
		vErr.add("quantity", "must be at least 1")
	}
	if vErr.HasErrors() {
		return MealChoice{}, vErr
	}

	attendance, err := s.attendances.GetAttendance(ctx, input.AttendanceID)
	if err != nil {
		return MealChoice{}, mapRepositoryError(err)
	}
	if attendance.UserID != principal.UserID {
		return MealChoice{}, ErrNotFound
	}

	option, err := s.attendances.GetEventMealOption(ctx, input.EventMealOptionID)
	if err != nil {
		return MealChoice{}, mapRepositoryError(err)
	}
	if option.EventID != attendance.EventID {
		return MealChoice{}, ErrNotFound
	}

	if err := s.checkQuantityCap(ctx, option, input.Quantity, ""); err != nil {
		return MealChoice{}, err
	}

	createdAt := s.now()
	choice := MealChoice{
		ID:                s.idGenerator(),
		AttendanceID:      attendance.ID,
		EventMealOptionID: option.ID,
		Quantity:          input.Quantity,
		Notes:             input.Notes,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
	if err := s.attendances.CreateMealChoice(ctx, choice); err != nil {
		logger.Warn("create rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return MealChoice{}, mapRepositoryError(err)
	}
	logger.Info("meal choice created", slog.String("meal_choice_id", choice.ID))
	return choice, nil
}

// GetMealChoice returns one selection. Only the attendee behind it or an
// administrator may read it.
func (s *MealChoiceService) GetMealChoice(ctx context.Context, principal Principal, choiceID string) (MealChoice, error) {
	if s == nil || s.attendances == nil {
		return MealChoice{}, fmt.Errorf("meal choice service not configured")
	}
	choice, _, err := s.ownedChoice(ctx, principal, choiceID)
	if err != nil {
		return MealChoice{}, err
	}
	return choice, nil
}

// ListMealChoices returns the caller's selections, optionally narrowed to a
// single attendance. Asking for another user's attendance reads as not
// found.
func (s *MealChoiceService) ListMealChoices(ctx context.Context, principal Principal, attendanceID string) ([]MealChoice, error) {
	if s == nil || s.attendances == nil {
		return nil, fmt.Errorf("meal choice service not configured")
	}

	if attendanceID != "" {
		attendance, err := s.attendances.GetAttendance(ctx, attendanceID)
		if err != nil {
			return nil, mapRepositoryError(err)
		}
		if attendance.UserID != principal.UserID {
			return nil, ErrNotFound
		}
	}

	choices, err := s.attendances.ListMealChoicesForUser(ctx, principal.UserID, attendanceID)
	if err != nil {
		return nil, err
	}
	return choices, nil
}

// UpdateMealChoice edits a selection. Only the attendee behind it or an
// administrator may change it, and a new option must belong to the same
// event as the attendance.
func (s *MealChoiceService) UpdateMealChoice(ctx context.Context, principal Principal, choiceID string, patch MealChoicePatch) (MealChoice, error) {
	if s == nil || s.attendances == nil {
		return MealChoice{}, fmt.Errorf("meal choice service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "meal_choice_service", "update_meal_choice",
		slog.String("user_id", principal.UserID), slog.String("meal_choice_id", choiceID))

	choice, attendance, err := s.ownedChoice(ctx, principal, choiceID)
	if err != nil {
		return MealChoice{}, err
	}

	if patch.EventMealOptionID != nil && *patch.EventMealOptionID != choice.EventMealOptionID {
		option, err := s.attendances.GetEventMealOption(ctx, *patch.EventMealOptionID)
		if err != nil {
			return MealChoice{}, mapRepositoryError(err)
		}
		if option.EventID != attendance.EventID {
			return MealChoice{}, ErrNotFound
		}
		choice.EventMealOptionID = option.ID
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 1 {
			vErr := newValidationError()
			vErr.add("quantity", "must be at least 1")
			return MealChoice{}, vErr
		}
		choice.Quantity = *patch.Quantity
	}
	if patch.Notes != nil {
		choice.Notes = patch.Notes
	}

	option, err := s.attendances.GetEventMealOption(ctx, choice.EventMealOptionID)
	if err != nil {
		return MealChoice{}, mapRepositoryError(err)
	}
	if err := s.checkQuantityCap(ctx, option, choice.Quantity, choice.ID); err != nil {
		return MealChoice{}, err
	}

	choice.UpdatedAt = s.now()
	if err := s.attendances.UpdateMealChoice(ctx, choice); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return MealChoice{}, mapRepositoryError(err)
	}
	logger.Info("meal choice updated")
	return choice, nil
}

// DeleteMealChoice removes a selection. Only the attendee behind it or an
// administrator may delete it.
func (s *MealChoiceService) DeleteMealChoice(ctx context.Context, principal Principal, choiceID string) error {
	if s == nil || s.attendances == nil {
		return fmt.Errorf("meal choice service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "meal_choice_service", "delete_meal_choice",
		slog.String("user_id", principal.UserID), slog.String("meal_choice_id", choiceID))

	choice, _, err := s.ownedChoice(ctx, principal, choiceID)
	if err != nil {
		return err
	}

	if err := s.attendances.DeleteMealChoice(ctx, choice.ID); err != nil {
		return mapRepositoryError(err)
	}
	logger.Info("meal choice deleted")
	return nil
}

// ownedChoice loads a choice and the attendance behind it, refusing callers
// who are neither the attendee nor an administrator.
func (s *MealChoiceService) ownedChoice(ctx context.Context, principal Principal, choiceID string) (MealChoice, Attendance, error) {
	choice, err := s.attendances.GetMealChoice(ctx, choiceID)
	if err != nil {
		return MealChoice{}, Attendance{}, mapRepositoryError(err)
	}
	attendance, err := s.attendances.GetAttendance(ctx, choice.AttendanceID)
	if err != nil {
		return MealChoice{}, Attendance{}, mapRepositoryError(err)
	}
	if attendance.UserID != principal.UserID && !principal.IsAdmin() {
		return MealChoice{}, Attendance{}, ErrForbidden
	}
	return choice, attendance, nil
}

// checkQuantityCap enforces an option's max quantity across all choices for
// that option, leaving the row being rewritten out of the running total.
func (s *MealChoiceService) checkQuantityCap(ctx context.Context, option EventMealOption, quantity int, excludeChoiceID string) error {
	if option.MaxQuantity == nil {
		return nil
	}
	taken, err := s.attendances.SumChoiceQuantityForOption(ctx, option.ID, excludeChoiceID)
	if err != nil {
		return err
	}
	if taken+quantity > *option.MaxQuantity {
		vErr := newValidationError()
		vErr.add("quantity", fmt.Sprintf("only %d of %d remaining for this option", *option.MaxQuantity-taken, *option.MaxQuantity))
		return vErr
	}
	return nil
}
