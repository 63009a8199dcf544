package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"posteventcalendar/internal/delivery/http/helpers"
	"posteventcalendar/internal/delivery/http/middleware"
	"posteventcalendar/internal/domain"
)

// Attendee list query parameter defaults and limits.
const (
	defaultAttendeesLimit = 10
	maxAttendeesLimit     = 100
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	Posts   domain.PostProvider
}

func NewEventController(logger *slog.Logger, svc domain.EventService, posts domain.PostProvider) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
		Posts:   posts,
	}
}

// EventSuccessResponse is the success envelope for event endpoints.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RefreshEvent godoc
// @Summary Re-derive the event from a post's current text
// @Description Parses the post's raw text and creates, updates, or deletes its attached event accordingly. Returns the resulting event, or null data when the post carries none.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param postID path int true "Post ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /posts/{postID}/event [put]
func (c *EventController) RefreshEvent(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseID(w, r, "postID")
	if !ok {
		return
	}
	post, err := c.Posts.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "post not found")
			return
		}
		c.Logger.Error("get post", "post_id", postID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	event, err := c.Service.UpdateFromPost(r.Context(), post)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, vErr.Error())
			return
		}
		c.Logger.Error("update event from post", "post_id", postID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// AttendeesSuccessResponse is the success envelope for GET /events/{eventID}/attendees.
type AttendeesSuccessResponse struct {
	Data  []*domain.Invitee `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetAttendees godoc
// @Summary List the most likely attendees of an event
// @Description Returns a bounded preview of attendance entries: the requesting user when they may attend, the post author, then stored invitees ordered by status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID (= post ID)"
// @Param limit query int false "Maximum entries (default 10, max 100)"
// @Success 200 {object} controllers.AttendeesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *EventController) GetAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	limit := defaultAttendeesLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid limit")
			return
		}
		limit = v
		if limit > maxAttendeesLimit {
			limit = maxAttendeesLimit
		}
	}

	event, err := c.Service.GetByPostID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.Error("get event", "event_id", eventID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	entries, err := c.Service.MostLikelyGoing(r.Context(), event, userID, limit)
	if err != nil {
		c.Logger.Error("list likely attendees", "event_id", eventID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// UpdateAttendanceRequest is the request body for PUT /events/{eventID}/attendance.
// swagger:model UpdateAttendanceRequest
type UpdateAttendanceRequest struct {
	Status string `json:"status"`
}

// Validate implements helpers.Validator.
func (req *UpdateAttendanceRequest) Validate() []string {
	if _, err := domain.ParseInviteeStatus(req.Status); err != nil {
		return []string{"status must be one of: going, interested, not_going"}
	}
	return nil
}

// AttendanceSuccessResponse is the success envelope for PUT /events/{eventID}/attendance.
type AttendanceSuccessResponse struct {
	Data  *domain.Invitee   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateAttendance godoc
// @Summary Self-register attendance for an event
// @Description Records the authenticated user's attendance status. Rejected when the event is expired, the user is the post author, or a private event's roster does not include them.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path int true "Event ID (= post ID)"
// @Param body body controllers.UpdateAttendanceRequest true "Attendance status"
// @Success 200 {object} controllers.AttendanceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendance [put]
func (c *EventController) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseID(w, r, "eventID")
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateAttendanceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	status, _ := domain.ParseInviteeStatus(req.Status)

	event, err := c.Service.GetByPostID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.Error("get event", "event_id", eventID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	inv, err := c.Service.UpdateAttendance(r.Context(), event, userID, status)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "attendance updates are not allowed for this event")
			return
		}
		c.Logger.Error("update attendance", "event_id", eventID, "user_id", userID, "error", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, inv)
}

// parseID reads a positive int64 path value; on failure it writes a 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing "+name)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
