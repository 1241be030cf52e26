package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/camp-planner/internal/application"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	GetEvent(ctx context.Context, eventID string) (application.Event, error)
	ListEvents(ctx context.Context, page application.Page) ([]application.Event, int, error)
	UpdateEvent(ctx context.Context, params application.UpdateEventParams) (application.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

type packingEntryRequest struct {
	EquipmentID string  `json:"equipment_id"`
	Quantity    int     `json:"quantity"`
	Required    bool    `json:"required"`
	Notes       *string `json:"notes"`
}

func (req packingEntryRequest) toInput() application.PackingEntryInput {
	return application.PackingEntryInput{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		Required:    req.Required,
		Notes:       req.Notes,
	}
}

type mealOptionRequest struct {
	MealID      string `json:"meal_id"`
	MealType    string `json:"meal_type"`
	Day         int    `json:"day"`
	MaxQuantity *int   `json:"max_quantity"`
}

type eventRequest struct {
	Name              string                `json:"name"`
	Description       *string               `json:"description"`
	StartDate         string                `json:"start_date"`
	EndDate           string                `json:"end_date"`
	PackingEquipments []packingEntryRequest `json:"packing_equipments"`
	MealOptions       []mealOptionRequest   `json:"meal_options"`
}

func (req eventRequest) toInput() application.EventInput {
	input := application.EventInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	for _, entry := range req.PackingEquipments {
		input.PackingEquipments = append(input.PackingEquipments, entry.toInput())
	}
	for _, option := range req.MealOptions {
		input.MealOptions = append(input.MealOptions, application.MealOptionInput{
			MealID:      option.MealID,
			MealType:    application.MealType(option.MealType),
			Day:         option.Day,
			MaxQuantity: option.MaxQuantity,
		})
	}
	return input
}

type eventPatchRequest struct {
	Name              *string                `json:"name"`
	Description       *string                `json:"description"`
	StartDate         *string                `json:"start_date"`
	EndDate           *string                `json:"end_date"`
	PackingEquipments *[]packingEntryRequest `json:"packing_equipments"`
}

func (req eventPatchRequest) toPatch() application.EventPatch {
	patch := application.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.PackingEquipments != nil {
		entries := make([]application.PackingEntryInput, 0, len(*req.PackingEquipments))
		for _, entry := range *req.PackingEquipments {
			entries = append(entries, entry.toInput())
		}
		patch.PackingEquipments = &entries
	}
	return patch
}

type packingEquipmentDTO struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event_id"`
	EquipmentID string        `json:"equipment_id"`
	Quantity    int           `json:"quantity"`
	Required    bool          `json:"required"`
	Notes       *string       `json:"notes,omitempty"`
	Equipment   *equipmentDTO `json:"equipment,omitempty"`
}

func toPackingEquipmentDTO(packing application.PackingEquipment) packingEquipmentDTO {
	dto := packingEquipmentDTO{
		ID:          packing.ID,
		EventID:     packing.EventID,
		EquipmentID: packing.EquipmentID,
		Quantity:    packing.Quantity,
		Required:    packing.Required,
		Notes:       packing.Notes,
	}
	if packing.Equipment.ID != "" {
		equipment := toEquipmentDTO(packing.Equipment)
		dto.Equipment = &equipment
	}
	return dto
}

func toPackingEquipmentDTOs(entries []application.PackingEquipment) []packingEquipmentDTO {
	out := make([]packingEquipmentDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toPackingEquipmentDTO(entry))
	}
	return out
}

type mealOptionDTO struct {
	ID          string `json:"id"`
	EventID     string `json:"event_id"`
	MealID      string `json:"meal_id"`
	MealType    string `json:"meal_type"`
	Day         int    `json:"day"`
	MaxQuantity *int   `json:"max_quantity,omitempty"`
}

type eventDTO struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Description       *string               `json:"description,omitempty"`
	StartDate         string                `json:"start_date"`
	EndDate           string                `json:"end_date"`
	CreatedByID       string                `json:"created_by_id"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	PackingEquipments []packingEquipmentDTO `json:"packing_equipments"`
	MealOptions       []mealOptionDTO       `json:"meal_options"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:                event.ID,
		Name:              event.Name,
		Description:       event.Description,
		StartDate:         event.StartDate,
		EndDate:           event.EndDate,
		CreatedByID:       event.CreatedByID,
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
		PackingEquipments: toPackingEquipmentDTOs(event.PackingEquipments),
		MealOptions:       make([]mealOptionDTO, 0, len(event.MealOptions)),
	}
	for _, option := range event.MealOptions {
		dto.MealOptions = append(dto.MealOptions, mealOptionDTO{
			ID:          option.ID,
			EventID:     option.EventID,
			MealID:      option.MealID,
			MealType:    string(option.MealType),
			Day:         option.Day,
			MaxQuantity: option.MaxQuantity,
		})
	}
	return dto
}

func toEventDTOs(events []application.Event) []eventDTO {
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

// Create handles event creation.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

// Get returns one event aggregate.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := pathParam(r, "id")
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

// List returns a page of events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, total, err := h.service.ListEvents(r.Context(), pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(toEventDTOs(events), total))
}

// Update applies a partial edit to an event.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := pathParam(r, "id")
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req eventPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode event patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "event_id", eventID)

	event, err := h.service.UpdateEvent(r.Context(), application.UpdateEventParams{
		Principal: principal,
		EventID:   eventID,
		Patch:     req.toPatch(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

// Delete removes an event.
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := pathParam(r, "id")
	if eventID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "event_id", eventID)

	if err := h.service.DeleteEvent(r.Context(), principal, eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
