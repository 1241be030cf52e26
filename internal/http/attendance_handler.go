package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/camp-planner/internal/application"
)

type attendanceService interface {
	Join(ctx context.Context, principal application.Principal, eventID string) (application.JoinResult, error)
	Leave(ctx context.Context, principal application.Principal, eventID string) (application.JoinResult, error)
	MyEvents(ctx context.Context, principal application.Principal, page application.Page) ([]application.Event, int, error)
	PackingList(ctx context.Context, principal application.Principal, eventID string, page application.Page) (application.PackingList, error)
	MyPackingLists(ctx context.Context, principal application.Principal) ([]application.PackingList, int, error)
}

type AttendanceHandler struct {
	service   attendanceService
	responder responder
	logger    *slog.Logger
}

func NewAttendanceHandler(service attendanceService, logger *slog.Logger) *AttendanceHandler {
	base := defaultLogger(logger)
	return &AttendanceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttendanceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttendanceHandler", operation, attrs...)
}

type joinResponse struct {
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}

type packingListDTO struct {
	EventID   string                `json:"event_id"`
	EventName string                `json:"event_name"`
	Entries   []packingEquipmentDTO `json:"entries"`
	Count     int                   `json:"count"`
}

func toPackingListDTO(list application.PackingList) packingListDTO {
	return packingListDTO{
		EventID:   list.EventID,
		EventName: list.EventName,
		Entries:   toPackingEquipmentDTOs(list.Entries),
		Count:     list.Count,
	}
}

// Join records the caller's attendance at an event.
func (h *AttendanceHandler) Join(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "Join", "principal_id", principal.UserID, "event_id", eventID)

	result, err := h.service.Join(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "join handled", "changed", result.Changed)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, joinResponse{Changed: result.Changed, Message: result.Message})
}

// Leave removes the caller's attendance at an event.
func (h *AttendanceHandler) Leave(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "Leave", "principal_id", principal.UserID, "event_id", eventID)

	result, err := h.service.Leave(r.Context(), principal, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "leave failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "leave handled", "changed", result.Changed)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, joinResponse{Changed: result.Changed, Message: result.Message})
}

// MyEvents returns the events the caller attends.
func (h *AttendanceHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	events, total, err := h.service.MyEvents(r.Context(), principal, pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(toEventDTOs(events), total))
}

// PackingList returns an event's packing list for an attendee.
func (h *AttendanceHandler) PackingList(w http.ResponseWriter, r *http.Request) {
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

	list, err := h.service.PackingList(r.Context(), principal, eventID, pageFromQuery(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPackingListDTO(list))
}

// MyPackingLists returns one packing list per attended event.
func (h *AttendanceHandler) MyPackingLists(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	lists, total, err := h.service.MyPackingLists(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]packingListDTO, 0, len(lists))
	for _, list := range lists {
		out = append(out, toPackingListDTO(list))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newListResponse(out, total))
}
