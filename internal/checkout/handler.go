package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/softlink/pharmacy-pos/internal/platform/draft"
)

// Handler exposes the till over HTTP. The dialog sequence a cashier
// would see on a terminal is flattened into one request: the client
// sends its answers up front (approve_requested, pharmacist_pin) and
// the gate replays them where the dialogs would appear. A blocked
// decision tells the client which answer to collect and resend.
type Handler struct {
	staff    StaffDirectory
	patients PatientDirectory
	drafts   *draft.Store
	settings Settings
	pay      PaymentFunc
}

func NewHandler(staff StaffDirectory, patients PatientDirectory, drafts *draft.Store, settings Settings, pay PaymentFunc) *Handler {
	return &Handler{staff: staff, patients: patients, drafts: drafts, settings: settings, pay: pay}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/checkout/validate", h.Validate)
	api.POST("/checkout/pay", h.Pay)
	api.POST("/checkout/patient", h.SelectPatient)
	api.GET("/checkout/drafts", h.ListDrafts)
	api.GET("/checkout/drafts/:uid", h.LoadDraft)
	api.PUT("/checkout/drafts/:uid", h.SaveDraft)
	api.DELETE("/checkout/drafts/:uid", h.DeleteDraft)
}

type CheckoutRequest struct {
	Order *Order `json:"order"`
	// ApproveRequested is the operator's answer to the approval
	// confirm dialog.
	ApproveRequested bool   `json:"approve_requested"`
	PharmacistPIN    string `json:"pharmacist_pin,omitempty"`
}

type CheckoutResponse struct {
	Decision Decision `json:"decision"`
	Prompts  []string `json:"prompts,omitempty"`
	Order    *Order   `json:"order"`
}

// requestPrompter answers dialogs from the request instead of a
// screen, and records what would have been shown.
type requestPrompter struct {
	approve bool
	prompts []string
}

func (p *requestPrompter) Confirm(ctx context.Context, title, body string) (bool, error) {
	p.prompts = append(p.prompts, title+": "+body)
	return p.approve, nil
}

func (p *requestPrompter) Info(ctx context.Context, title, body string) error {
	p.prompts = append(p.prompts, title+": "+body)
	return nil
}

// requestPIN offers the submitted PIN exactly once, then dismisses.
// A wrong PIN therefore comes back as a block rather than a re-prompt
// loop; the client collects a new PIN and repeats the request.
type requestPIN struct {
	pin  string
	used bool
}

func (p *requestPIN) PromptPIN(ctx context.Context, message string) (string, bool, error) {
	if p.used || p.pin == "" {
		return "", false, nil
	}
	p.used = true
	return p.pin, true, nil
}

func (h *Handler) runGate(c echo.Context, pay PaymentFunc) error {
	var req CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Order == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "order is required")
	}

	prompter := &requestPrompter{approve: req.ApproveRequested}
	approval := NewInteractiveApproval(h.staff, &requestPIN{pin: req.PharmacistPIN})
	gate := NewGate(prompter, approval, h.settings, pay)

	decision, err := gate.Run(c.Request().Context(), req.Order)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, CheckoutResponse{
		Decision: decision,
		Prompts:  prompter.prompts,
		Order:    req.Order,
	})
}

// Validate runs every pre-payment check without paying. The till
// calls this to surface blocks early, before tendering.
func (h *Handler) Validate(c echo.Context) error {
	return h.runGate(c, func(ctx context.Context, o *Order) error { return nil })
}

// Pay runs the checks and, when they pass, the payment flow.
func (h *Handler) Pay(c echo.Context) error {
	return h.runGate(c, h.pay)
}

type PatientSelectRequest struct {
	Order      *Order      `json:"order"`
	PatientID  *int64      `json:"patient_id,omitempty"`
	NewPatient *NewPatient `json:"new_patient,omitempty"`
	Clear      bool        `json:"clear,omitempty"`
}

type PatientSelectResponse struct {
	Order   *Order       `json:"order"`
	Patient *PatientInfo `json:"patient,omitempty"`
}

// SelectPatient links an existing or freshly registered patient to
// the order, or clears the link.
func (h *Handler) SelectPatient(c echo.Context) error {
	var req PatientSelectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Order == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "order is required")
	}

	if req.Clear {
		req.Order.SetPatient(nil)
		return c.JSON(http.StatusOK, PatientSelectResponse{Order: req.Order})
	}

	flow := NewPatientSelectionFlow(h.patients, req.Order)
	ctx := c.Request().Context()
	switch {
	case req.PatientID != nil:
		info, err := h.patients.Get(ctx, *req.PatientID)
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		flow.Select(info)
	case req.NewPatient != nil:
		if _, err := flow.Create(ctx, *req.NewPatient); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id, new_patient or clear is required")
	}

	selected, err := flow.Confirm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, PatientSelectResponse{Order: req.Order, Patient: selected})
}

func sessionParam(c echo.Context) (string, error) {
	session := c.QueryParam("session")
	if session == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "session query parameter is required")
	}
	return session, nil
}

// SaveDraft parks the order so the till can serve the next customer.
func (h *Handler) SaveDraft(c echo.Context) error {
	session, err := sessionParam(c)
	if err != nil {
		return err
	}
	var o Order
	if err := c.Bind(&o); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order body")
	}
	uid := c.Param("uid")
	if o.UID != "" && o.UID != uid {
		return echo.NewHTTPError(http.StatusBadRequest, "order uid does not match path")
	}
	o.UID = uid
	data, err := o.Export()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.drafts.Save(c.Request().Context(), session, uid, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) LoadDraft(c echo.Context) error {
	session, err := sessionParam(c)
	if err != nil {
		return err
	}
	data, err := h.drafts.Load(c.Request().Context(), session, c.Param("uid"))
	if err != nil {
		if errors.Is(err, draft.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "draft not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	o, err := Import(data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("corrupt draft: %v", err))
	}
	return c.JSON(http.StatusOK, o)
}

func (h *Handler) ListDrafts(c echo.Context) error {
	session, err := sessionParam(c)
	if err != nil {
		return err
	}
	uids, err := h.drafts.List(c.Request().Context(), session)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string][]string{"drafts": uids})
}

func (h *Handler) DeleteDraft(c echo.Context) error {
	session, err := sessionParam(c)
	if err != nil {
		return err
	}
	if err := h.drafts.Delete(c.Request().Context(), session, c.Param("uid")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
