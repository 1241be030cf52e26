package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// AttendanceService orchestrates joining and leaving events and the packing
// list views derived from attendance.
type AttendanceService struct {
	attendances persistence.AttendanceRepository
	events      persistence.EventRepository
	equipments  persistence.EquipmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAttendanceService wires dependencies for the attendance service.
func NewAttendanceService(attendances persistence.AttendanceRepository, events persistence.EventRepository, equipments persistence.EquipmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AttendanceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AttendanceService{
		attendances: attendances,
		events:      events,
		equipments:  equipments,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// Join records the caller's attendance at an event. Joining twice is not an
// error, the second call reports that nothing changed.
func (s *AttendanceService) Join(ctx context.Context, principal Principal, eventID string) (JoinResult, error) {
	if s == nil || s.attendances == nil || s.events == nil {
		return JoinResult{}, fmt.Errorf("attendance service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "attendance_service", "join",
		slog.String("user_id", principal.UserID), slog.String("event_id", eventID))

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return JoinResult{}, mapRepositoryError(err)
	}

	existing, err := s.attendances.GetAttendanceByUserEvent(ctx, principal.UserID, eventID)
	if err == nil {
		if existing.IsAttending {
			return JoinResult{Changed: false, Message: "already attending"}, nil
		}
		// A row with is_attending unset is a past leave. Flip it back on
		// instead of inserting a second row for the same pair.
		existing.IsAttending = true
		if err := s.attendances.UpdateAttendance(ctx, existing); err != nil {
			logger.Error("join failed", slog.String("error", err.Error()))
			return JoinResult{}, mapRepositoryError(err)
		}
		logger.Info("attendance recorded")
		return JoinResult{Changed: true, Message: "attending"}, nil
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return JoinResult{}, err
	}

	attendance := Attendance{
		ID:          s.idGenerator(),
		UserID:      principal.UserID,
		EventID:     eventID,
		IsAttending: true,
	}
	err = s.attendances.CreateAttendance(ctx, attendance)
	if errors.Is(err, persistence.ErrDuplicate) {
		// Lost a race against a concurrent join by the same user. The row
		// exists, which is all the caller asked for.
		return JoinResult{Changed: false, Message: "already attending"}, nil
	}
	if err != nil {
		logger.Error("join failed", slog.String("error", err.Error()))
		return JoinResult{}, mapRepositoryError(err)
	}

	logger.Info("attendance recorded")
	return JoinResult{Changed: true, Message: "attending"}, nil
}

// Leave removes the caller's attendance and every meal choice made under
// it. Leaving an event the caller is not attending is not an error.
func (s *AttendanceService) Leave(ctx context.Context, principal Principal, eventID string) (JoinResult, error) {
	if s == nil || s.attendances == nil || s.events == nil {
		return JoinResult{}, fmt.Errorf("attendance service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "attendance_service", "leave",
		slog.String("user_id", principal.UserID), slog.String("event_id", eventID))

	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return JoinResult{}, mapRepositoryError(err)
	}

	attendance, err := s.attendances.GetAttendanceByUserEvent(ctx, principal.UserID, eventID)
	if errors.Is(err, persistence.ErrNotFound) {
		return JoinResult{Changed: false, Message: "not attending"}, nil
	}
	if err != nil {
		return JoinResult{}, err
	}

	if err := s.attendances.DeleteAttendance(ctx, attendance.ID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return JoinResult{Changed: false, Message: "not attending"}, nil
		}
		logger.Error("leave failed", slog.String("error", err.Error()))
		return JoinResult{}, err
	}

	logger.Info("attendance removed")
	return JoinResult{Changed: true, Message: "left event"}, nil
}

// MyEvents returns a page of events the caller is attending plus the total
// count of attended events.
func (s *AttendanceService) MyEvents(ctx context.Context, principal Principal, page Page) ([]Event, int, error) {
	if s == nil || s.attendances == nil || s.events == nil {
		return nil, 0, fmt.Errorf("attendance service not configured")
	}

	eventIDs, total, err := s.attendances.ListEventIDsForUser(ctx, principal.UserID, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	if len(eventIDs) == 0 {
		return []Event{}, total, nil
	}

	events, err := s.events.ListEventsByIDs(ctx, eventIDs)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// PackingList returns an event's packing list for an attendee. Callers who
// are not attending the event are refused.
func (s *AttendanceService) PackingList(ctx context.Context, principal Principal, eventID string, page Page) (PackingList, error) {
	if s == nil || s.attendances == nil || s.events == nil || s.equipments == nil {
		return PackingList{}, fmt.Errorf("attendance service not configured")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return PackingList{}, mapRepositoryError(err)
	}

	if _, err := s.attendances.GetAttendanceByUserEvent(ctx, principal.UserID, eventID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return PackingList{}, ErrForbidden
		}
		return PackingList{}, err
	}

	entries, total, err := s.equipments.ListPackingForEvent(ctx, eventID, page.Clamp())
	if err != nil {
		return PackingList{}, err
	}
	return PackingList{EventID: event.ID, EventName: event.Name, Entries: entries, Count: total}, nil
}

// MyPackingLists returns one packing list per event the caller attends plus
// the total count of attended events.
func (s *AttendanceService) MyPackingLists(ctx context.Context, principal Principal) ([]PackingList, int, error) {
	if s == nil || s.attendances == nil || s.events == nil || s.equipments == nil {
		return nil, 0, fmt.Errorf("attendance service not configured")
	}

	eventIDs, total, err := s.attendances.ListEventIDsForUser(ctx, principal.UserID, Page{}.Clamp())
	if err != nil {
		return nil, 0, err
	}

	lists := make([]PackingList, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		list, err := s.PackingList(ctx, principal, eventID, Page{})
		if err != nil {
			// The attendance row can vanish between the two queries; skip the
			// event instead of failing the whole view.
			if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
				total--
				continue
			}
			return nil, 0, err
		}
		lists = append(lists, list)
	}
	return lists, total, nil
}
