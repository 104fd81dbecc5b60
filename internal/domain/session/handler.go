package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gdmcare/gdm/internal/domain/gestation"
	"github.com/gdmcare/gdm/internal/domain/glucose"
	"github.com/gdmcare/gdm/internal/domain/profile"
	"github.com/gdmcare/gdm/internal/domain/validation"
	"github.com/gdmcare/gdm/internal/platform/auth"
)

type Handler struct {
	sessions *Manager
	tokens   *auth.Tokens
}

func NewHandler(sessions *Manager, tokens *auth.Tokens) *Handler {
	return &Handler{sessions: sessions, tokens: tokens}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/sessions", h.CreateSession)

	// Read endpoints: patient and clinician tokens
	sess := api.Group("/session", auth.SessionMiddleware(h.tokens))
	sess.GET("/state", h.GetState)
	sess.GET("/screen", h.GetScreen)
	sess.GET("/profile", h.GetProfile)
	sess.GET("/readings", h.ListReadings)
	sess.GET("/stats", h.GetStats)

	// Write endpoints: patient token only
	patient := auth.RequireRole(auth.RolePatient)
	sess.DELETE("", h.EndSession, patient)
	sess.PUT("/week", h.SetWeek, patient)
	sess.PUT("/view", h.SelectView, patient)
	sess.POST("/modals/log/open", h.OpenLogModal, patient)
	sess.POST("/modals/log/cancel", h.CancelLogModal, patient)
	sess.POST("/modals/log/submit", h.SubmitLog, patient)
	sess.POST("/modals/profile/open", h.OpenProfileModal, patient)
	sess.POST("/modals/profile/cancel", h.CancelProfileModal, patient)
	sess.POST("/modals/profile/submit", h.SubmitProfile, patient)
	sess.POST("/profile/bmi-preview", h.PreviewBMI, patient)
	sess.DELETE("/readings", h.ClearReadings, patient)
	sess.POST("/share", h.Share, patient)
}

type tokenResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	Role      auth.Role `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type stateResponse struct {
	State State             `json:"state"`
	Phase gestation.Summary `json:"phase"`
	Weeks WeekRange         `json:"weeks"`
}

func newStateResponse(c *Controller, st State) stateResponse {
	return stateResponse{State: st, Phase: gestation.Summarize(st.Week), Weeks: c.Weeks()}
}

type weekRequest struct {
	Week *int `json:"week"`
}

type viewRequest struct {
	Mode ViewMode `json:"mode"`
}

// -- Session lifecycle --

func (h *Handler) CreateSession(c echo.Context) error {
	ctrl, err := h.sessions.Create(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	resp, err := h.issue(ctrl.ID(), auth.RolePatient)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"session": resp,
		"state":   newStateResponse(ctrl, ctrl.State()),
	})
}

func (h *Handler) EndSession(c echo.Context) error {
	ctx := c.Request().Context()
	if err := h.sessions.End(ctx, auth.SessionIDFromContext(ctx)); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Share issues a read-only clinician token for the caller's session.
func (h *Handler) Share(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	resp, err := h.issue(ctrl.ID(), auth.RoleClinician)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *Handler) issue(sid uuid.UUID, role auth.Role) (tokenResponse, error) {
	token, exp, err := h.tokens.Issue(sid, role)
	if err != nil {
		return tokenResponse{}, err
	}
	return tokenResponse{SessionID: sid, Token: token, Role: role, ExpiresAt: exp}, nil
}

// -- View state --

func (h *Handler) GetState(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newStateResponse(ctrl, ctrl.State()))
}

func (h *Handler) GetScreen(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	scr, err := ctrl.Screen(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, scr)
}

func (h *Handler) SetWeek(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	var req weekRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	if req.Week == nil {
		return mapError(validation.Missing("week"))
	}
	st, err := ctrl.SetWeek(*req.Week)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, newStateResponse(ctrl, st))
}

func (h *Handler) SelectView(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	var req viewRequest
	if err := decodeStrict(c, &req); err != nil {
		return err
	}
	st, err := ctrl.SelectView(req.Mode)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, newStateResponse(ctrl, st))
}

// -- Modals --

func (h *Handler) OpenLogModal(c echo.Context) error {
	return h.modal(c, (*Controller).OpenLogModal)
}

func (h *Handler) CancelLogModal(c echo.Context) error {
	return h.modal(c, (*Controller).CancelLogModal)
}

func (h *Handler) OpenProfileModal(c echo.Context) error {
	return h.modal(c, (*Controller).OpenProfileModal)
}

func (h *Handler) CancelProfileModal(c echo.Context) error {
	return h.modal(c, (*Controller).CancelProfileModal)
}

func (h *Handler) modal(c echo.Context, action func(*Controller) State) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newStateResponse(ctrl, action(ctrl)))
}

func (h *Handler) SubmitLog(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	var entry glucose.Entry
	if err := decodeStrict(c, &entry); err != nil {
		return err
	}
	r, err := ctrl.SubmitLog(c.Request().Context(), entry)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"reading": r,
		"state":   newStateResponse(ctrl, ctrl.State()),
	})
}

func (h *Handler) SubmitProfile(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	var form profile.Form
	if err := decodeStrict(c, &form); err != nil {
		return err
	}
	p, err := ctrl.SubmitProfile(c.Request().Context(), form)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile": p,
		"state":   newStateResponse(ctrl, ctrl.State()),
	})
}

func (h *Handler) PreviewBMI(c echo.Context) error {
	if _, err := h.controller(c); err != nil {
		return err
	}
	var form profile.Form
	if err := decodeStrict(c, &form); err != nil {
		return err
	}
	res, err := profile.PreviewBMI(form)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// -- Data --

func (h *Handler) GetProfile(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	p, err := ctrl.Profile(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListReadings(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	items, err := ctrl.History(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  items,
		"total": len(items),
	})
}

func (h *Handler) ClearReadings(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	if err := ctrl.ClearHistory(c.Request().Context()); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetStats(c echo.Context) error {
	ctrl, err := h.controller(c)
	if err != nil {
		return err
	}
	sum, err := ctrl.Summary(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, sum)
}

// -- helpers --

func (h *Handler) controller(c echo.Context) (*Controller, error) {
	ctx := c.Request().Context()
	sid := auth.SessionIDFromContext(ctx)
	if sid == uuid.Nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	ctrl, err := h.sessions.Get(ctx, sid)
	if err != nil {
		return nil, mapError(err)
	}
	return ctrl, nil
}

// decodeStrict decodes a JSON body, rejecting unknown fields and trailing
// data. An empty body decodes to the zero value. A well-formed body with a
// wrongly typed field is an input error, not a malformed request.
func decodeStrict(c echo.Context, v interface{}) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return mapError(validation.Invalid("%s must be a %s", typeErr.Field, typeErr.Type))
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: "+err.Error())
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body: trailing data")
	}
	return nil
}

func mapError(err error) error {
	switch {
	case validation.IsInputError(err):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrModalNotOpen):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}
