package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/camp-planner/internal/application"
)

type mealService interface {
	CreateMeal(ctx context.Context, principal application.Principal, input application.MealInput) (application.Meal, error)
	GetMeal(ctx context.Context, principal application.Principal, mealID string) (application.Meal, error)
	ListMeals(ctx context.Context, principal application.Principal, page application.Page) ([]application.Meal, int, error)
	UpdateMeal(ctx context.Context, principal application.Principal, mealID string, input application.MealInput) (application.Meal, error)
	DeleteMeal(ctx context.Context, principal application.Principal, mealID string) error
}

type MealHandler struct {
	service   mealService
	responder responder
	logger    *slog.Logger
}

func NewMealHandler(service mealService, logger *slog.Logger) *MealHandler {
	base := defaultLogger(logger)
	return &MealHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MealHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MealHandler", operation, attrs...)
}

type mealRequest struct {
	Name         string   `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	IsVegetarian bool     `json:"is_vegetarian"`
	IsBeef       bool     `json:"is_beef"`
	Calories     *int     `json:"calories"`
}

func (req mealRequest) toInput() application.MealInput {
	return application.MealInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		IsVegetarian: req.IsVegetarian,
		IsBeef:       req.IsBeef,
		Calories:     req.Calories,
	}
}

type mealDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	IsVegetarian bool      `json:"is_vegetarian"`
	IsBeef       bool      `json:"is_beef"`
	Calories     *int      `json:"calories,omitempty"`
	CreatedByID  string    `json:"created_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func toMealDTO(meal application.Meal) mealDTO {
	return mealDTO{
		ID:           meal.ID,
		Name:         meal.Name,
		Description:  meal.Description,
		Price:        meal.Price,
		IsVegetarian: meal.IsVegetarian,
		IsBeef:       meal.IsBeef,
		Calories:     meal.Calories,
		CreatedByID:  meal.CreatedByID,
		CreatedAt:    meal.CreatedAt,
	}
}

func toMealDTOs(meals []application.Meal) []mealDTO {
	out := make([]mealDTO, 0, len(meals))
	for _, meal := range meals {
		out = append(out, toMealDTO(meal))
	}
	return out
}

// Create adds a catalog entry.
func (h *MealHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode meal request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	meal, err := h.service.CreateMeal(r.Context(), principal, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "meal creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("meal_id", meal.ID).InfoContext(r.Context(), "meal created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMealDTO(meal))
}

// Get returns one catalog entry.
func (h *MealHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mealID := pathParam(r, "id")
	if mealID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	meal, err := h.service.GetMeal(r.Context(), principal, mealID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMealDTO(meal))
}

// List returns a page of catalog entries.
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	meals, total, err := h.service.ListMeals(r.Context(), principal, pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(toMealDTOs(meals), total))
}

// Update edits a catalog entry.
func (h *MealHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mealID := pathParam(r, "id")
	if mealID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req mealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "meal_id", mealID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode meal update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "meal_id", mealID)

	meal, err := h.service.UpdateMeal(r.Context(), principal, mealID, req.toInput())
	if err != nil {
		logger.ErrorContext(r.Context(), "meal update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meal updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMealDTO(meal))
}

// Delete removes a catalog entry when nothing references it.
func (h *MealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mealID := pathParam(r, "id")
	if mealID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "meal_id", mealID)

	if err := h.service.DeleteMeal(r.Context(), principal, mealID); err != nil {
		logger.ErrorContext(r.Context(), "meal delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meal deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
