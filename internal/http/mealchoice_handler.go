package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/camp-planner/internal/application"
)

type mealChoiceService interface {
	CreateMealChoice(ctx context.Context, principal application.Principal, input application.MealChoiceInput) (application.MealChoice, error)
	GetMealChoice(ctx context.Context, principal application.Principal, choiceID string) (application.MealChoice, error)
	ListMealChoices(ctx context.Context, principal application.Principal, attendanceID string) ([]application.MealChoice, error)
	UpdateMealChoice(ctx context.Context, principal application.Principal, choiceID string, patch application.MealChoicePatch) (application.MealChoice, error)
	DeleteMealChoice(ctx context.Context, principal application.Principal, choiceID string) error
}

type MealChoiceHandler struct {
	service   mealChoiceService
	responder responder
	logger    *slog.Logger
}

func NewMealChoiceHandler(service mealChoiceService, logger *slog.Logger) *MealChoiceHandler {
	base := defaultLogger(logger)
	return &MealChoiceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MealChoiceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MealChoiceHandler", operation, attrs...)
}

type mealChoiceRequest struct {
	AttendanceID      string  `json:"attendance_id"`
	EventMealOptionID string  `json:"event_meal_option_id"`
	Quantity          int     `json:"quantity"`
	Notes             *string `json:"notes"`
}

type mealChoicePatchRequest struct {
	EventMealOptionID *string `json:"event_meal_option_id"`
	Quantity          *int    `json:"quantity"`
	Notes             *string `json:"notes"`
}

type mealChoiceDTO struct {
	ID                string    `json:"id"`
	AttendanceID      string    `json:"attendance_id"`
	EventMealOptionID string    `json:"event_meal_option_id"`
	Quantity          int       `json:"quantity"`
	Notes             *string   `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toMealChoiceDTO(choice application.MealChoice) mealChoiceDTO {
	return mealChoiceDTO{
		ID:                choice.ID,
		AttendanceID:      choice.AttendanceID,
		EventMealOptionID: choice.EventMealOptionID,
		Quantity:          choice.Quantity,
		Notes:             choice.Notes,
		CreatedAt:         choice.CreatedAt,
		UpdatedAt:         choice.UpdatedAt,
	}
}

// Create records a meal selection for one of the caller's attendances.
func (h *MealChoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req mealChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode meal choice request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	choice, err := h.service.CreateMealChoice(r.Context(), principal, application.MealChoiceInput{
		AttendanceID:      req.AttendanceID,
		EventMealOptionID: req.EventMealOptionID,
		Quantity:          req.Quantity,
		Notes:             req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meal choice creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("meal_choice_id", choice.ID).InfoContext(r.Context(), "meal choice created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMealChoiceDTO(choice))
}

// Get returns one of the caller's selections.
func (h *MealChoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	choiceID := pathParam(r, "id")
	if choiceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	choice, err := h.service.GetMealChoice(r.Context(), principal, choiceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMealChoiceDTO(choice))
}

// List returns the caller's selections, optionally narrowed by the
// attendance_id query parameter.
func (h *MealChoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	choices, err := h.service.ListMealChoices(r.Context(), principal, r.URL.Query().Get("attendance_id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]mealChoiceDTO, 0, len(choices))
	for _, choice := range choices {
		out = append(out, toMealChoiceDTO(choice))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(out, len(out)))
}

// Update edits one of the caller's selections.
func (h *MealChoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	choiceID := pathParam(r, "id")
	if choiceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req mealChoicePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "meal_choice_id", choiceID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode meal choice patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "meal_choice_id", choiceID)

	choice, err := h.service.UpdateMealChoice(r.Context(), principal, choiceID, application.MealChoicePatch{
		EventMealOptionID: req.EventMealOptionID,
		Quantity:          req.Quantity,
		Notes:             req.Notes,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "meal choice update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meal choice updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMealChoiceDTO(choice))
}

// Delete removes one of the caller's selections.
func (h *MealChoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	choiceID := pathParam(r, "id")
	if choiceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "meal_choice_id", choiceID)

	if err := h.service.DeleteMealChoice(r.Context(), principal, choiceID); err != nil {
		logger.ErrorContext(r.Context(), "meal choice delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meal choice deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
