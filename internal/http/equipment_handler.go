package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/camp-planner/internal/application"
)

type equipmentService interface {
	CreateEquipment(ctx context.Context, principal application.Principal, input application.EquipmentInput) (application.Equipment, error)
	GetEquipment(ctx context.Context, equipmentID string) (application.Equipment, error)
	ListEquipments(ctx context.Context, page application.Page) ([]application.Equipment, int, error)
	UpdateEquipment(ctx context.Context, principal application.Principal, equipmentID string, input application.EquipmentInput) (application.Equipment, error)
	DeleteEquipment(ctx context.Context, principal application.Principal, equipmentID string) error
	AddPacking(ctx context.Context, principal application.Principal, eventID string, entry application.PackingEntryInput) (application.PackingEquipment, error)
	ListPacking(ctx context.Context, eventID string, page application.Page) ([]application.PackingEquipment, int, error)
}

type EquipmentHandler struct {
	service   equipmentService
	responder responder
	logger    *slog.Logger
}

func NewEquipmentHandler(service equipmentService, logger *slog.Logger) *EquipmentHandler {
	base := defaultLogger(logger)
	return &EquipmentHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EquipmentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EquipmentHandler", operation, attrs...)
}

type equipmentRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

func (req equipmentRequest) toInput() application.EquipmentInput {
	return application.EquipmentInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
	}
}

type equipmentDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toEquipmentDTO(equipment application.Equipment) equipmentDTO {
	return equipmentDTO{
		ID:          equipment.ID,
		Title:       equipment.Title,
		Description: equipment.Description,
		Category:    equipment.Category,
		OwnerID:     equipment.OwnerID,
		CreatedAt:   equipment.CreatedAt,
		UpdatedAt:   equipment.UpdatedAt,
	}
}

func toEquipmentDTOs(equipments []application.Equipment) []equipmentDTO {
	out := make([]equipmentDTO, 0, len(equipments))
	for _, equipment := range equipments {
		out = append(out, toEquipmentDTO(equipment))
	}
	return out
}

// Create adds a catalog entry.
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode equipment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	equipment, err := h.service.CreateEquipment(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("equipment_id", equipment.ID).InfoContext(r.Context(), "equipment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEquipmentDTO(equipment))
}

// Get returns one catalog entry.
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID := pathParam(r, "id")
	if equipmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	equipment, err := h.service.GetEquipment(r.Context(), equipmentID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEquipmentDTO(equipment))
}

// List returns a page of catalog entries.
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipments, total, err := h.service.ListEquipments(r.Context(), pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(toEquipmentDTOs(equipments), total))
}

// Update edits a catalog entry.
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID := pathParam(r, "id")
	if equipmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req equipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "equipment_id", equipmentID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode equipment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "equipment_id", equipmentID)

	equipment, err := h.service.UpdateEquipment(r.Context(), principal, equipmentID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "equipment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "equipment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEquipmentDTO(equipment))
}

// Delete removes a catalog entry when nothing references it.
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	equipmentID := pathParam(r, "id")
	if equipmentID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "equipment_id", equipmentID)

	if err := h.service.DeleteEquipment(r.Context(), principal, equipmentID); err != nil {
		logger.ErrorContext(r.Context(), "equipment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "equipment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// AddPacking appends one entry to an event's packing list.
func (h *EquipmentHandler) AddPacking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := pathParam(r, "event_id")
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req packingEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddPacking", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode packing request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddPacking", "principal_id", principal.UserID, "event_id", eventID)

	packing, err := h.service.AddPacking(r.Context(), principal, eventID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "packing entry creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "packing entry added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPackingEquipmentDTO(packing))
}

// ListPacking returns a page of an event's packing list.
func (h *EquipmentHandler) ListPacking(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := pathParam(r, "event_id")
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	entries, total, err := h.service.ListPacking(r.Context(), eventID, pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(toPackingEquipmentDTOs(entries), total))
}
