package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/camp-planner/internal/persistence"
)

// EquipmentService orchestrates the equipment catalog and the packing rows
// that bind catalog entries to events.
type EquipmentService struct {
	equipments  persistence.EquipmentRepository
	events      persistence.EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEquipmentService wires dependencies for the equipment service.
func NewEquipmentService(equipments persistence.EquipmentRepository, events persistence.EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EquipmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EquipmentService{equipments: equipments, events: events, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// CreateEquipment adds a catalog entry. Staff and above.
func (s *EquipmentService) CreateEquipment(ctx context.Context, principal Principal, input EquipmentInput) (Equipment, error) {
	if s == nil || s.equipments == nil {
		return Equipment{}, fmt.Errorf("equipment service not configured")
	}
	if !principal.AtLeast(RoleStaff) {
		return Equipment{}, ErrForbidden
	}
	logger := serviceLogger(ctx, s.logger, "equipment_service", "create_equipment", slog.String("actor_id", principal.UserID))

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		vErr := newValidationError()
		vErr.add("title", "must not be empty")
		return Equipment{}, vErr
	}

	createdAt := s.now()
	equipment := Equipment{
		ID:          s.idGenerator(),
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		OwnerID:     principal.UserID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := s.equipments.CreateEquipment(ctx, equipment); err != nil {
		logger.Warn("create rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Equipment{}, mapRepositoryError(err)
	}
	logger.Info("equipment created", slog.String("equipment_id", equipment.ID))
	return equipment, nil
}

// GetEquipment returns one catalog entry. Visible to every authenticated
// user.
func (s *EquipmentService) GetEquipment(ctx context.Context, equipmentID string) (Equipment, error) {
	if s == nil || s.equipments == nil {
		return Equipment{}, fmt.Errorf("equipment service not configured")
	}
	equipment, err := s.equipments.GetEquipment(ctx, equipmentID)
	if err != nil {
		return Equipment{}, mapRepositoryError(err)
	}
	return equipment, nil
}

// ListEquipments returns a page of catalog entries.
func (s *EquipmentService) ListEquipments(ctx context.Context, page Page) ([]Equipment, int, error) {
	if s == nil || s.equipments == nil {
		return nil, 0, fmt.Errorf("equipment service not configured")
	}
	equipments, total, err := s.equipments.ListEquipments(ctx, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	return equipments, total, nil
}

// UpdateEquipment edits a catalog entry. Only the owner or an administrator
// may change it.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, principal Principal, equipmentID string, input EquipmentInput) (Equipment, error) {
	if s == nil || s.equipments == nil {
		return Equipment{}, fmt.Errorf("equipment service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "equipment_service", "update_equipment",
		slog.String("actor_id", principal.UserID), slog.String("equipment_id", equipmentID))

	existing, err := s.equipments.GetEquipment(ctx, equipmentID)
	if err != nil {
		return Equipment{}, mapRepositoryError(err)
	}
	if !principal.IsAdmin() && principal.UserID != existing.OwnerID {
		return Equipment{}, ErrForbidden
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		vErr := newValidationError()
		vErr.add("title", "must not be empty")
		return Equipment{}, vErr
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Category = input.Category
	existing.UpdatedAt = s.now()

	if err := s.equipments.UpdateEquipment(ctx, existing); err != nil {
		logger.Warn("update rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return Equipment{}, mapRepositoryError(err)
	}
	logger.Info("equipment updated")
	return existing, nil
}

// DeleteEquipment removes a catalog entry. The delete is refused while any
// event packing list still references the entry.
func (s *EquipmentService) DeleteEquipment(ctx context.Context, principal Principal, equipmentID string) error {
	if s == nil || s.equipments == nil {
		return fmt.Errorf("equipment service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "equipment_service", "delete_equipment",
		slog.String("actor_id", principal.UserID), slog.String("equipment_id", equipmentID))

	existing, err := s.equipments.GetEquipment(ctx, equipmentID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if !principal.IsAdmin() && principal.UserID != existing.OwnerID {
		return ErrForbidden
	}

	if err := s.equipments.DeleteEquipment(ctx, equipmentID); err != nil {
		logger.Warn("delete rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return mapRepositoryError(err)
	}
	logger.Info("equipment deleted")
	return nil
}

// AddPacking appends one packing row to an event's list. Only the event
// creator or an administrator may extend the list, and each equipment entry
// may appear at most once per event.
func (s *EquipmentService) AddPacking(ctx context.Context, principal Principal, eventID string, entry PackingEntryInput) (PackingEquipment, error) {
	if s == nil || s.equipments == nil || s.events == nil {
		return PackingEquipment{}, fmt.Errorf("equipment service not configured")
	}
	logger := serviceLogger(ctx, s.logger, "equipment_service", "add_packing",
		slog.String("actor_id", principal.UserID), slog.String("event_id", eventID))

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return PackingEquipment{}, mapRepositoryError(err)
	}
	if !canManageEvent(principal, event) {
		return PackingEquipment{}, ErrForbidden
	}

	vErr := newValidationError()
	validatePackingEntries(vErr, []PackingEntryInput{entry})
	if vErr.HasErrors() {
		return PackingEquipment{}, vErr
	}

	packing := PackingEquipment{
		ID:          s.idGenerator(),
		EventID:     eventID,
		EquipmentID: entry.EquipmentID,
		Quantity:    entry.Quantity,
		Required:    entry.Required,
		Notes:       entry.Notes,
	}
	if err := s.equipments.CreatePackingEquipment(ctx, packing); err != nil {
		logger.Warn("add rejected", slog.String("error_kind", ErrorKind(mapRepositoryError(err))))
		return PackingEquipment{}, mapRepositoryError(err)
	}

	equipment, err := s.equipments.GetEquipment(ctx, entry.EquipmentID)
	if err == nil {
		packing.Equipment = equipment
	}
	logger.Info("packing entry added", slog.String("equipment_id", entry.EquipmentID))
	return packing, nil
}

// ListPacking returns a page of an event's packing list.
func (s *EquipmentService) ListPacking(ctx context.Context, eventID string, page Page) ([]PackingEquipment, int, error) {
	if s == nil || s.equipments == nil || s.events == nil {
		return nil, 0, fmt.Errorf("equipment service not configured")
	}
	if _, err := s.events.GetEvent(ctx, eventID); err != nil {
		return nil, 0, mapRepositoryError(err)
	}
	entries, total, err := s.equipments.ListPackingForEvent(ctx, eventID, page.Clamp())
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
