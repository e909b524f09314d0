package http

import (
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/weatherlookup/backend/internal/domain"
	"github.com/weatherlookup/backend/internal/service"
	"github.com/weatherlookup/backend/pkg/utils"
)

// Handler contains all HTTP handlers
type Handler struct {
	lookupLog *service.LookupLog
}

// NewHandler creates a new handler
func NewHandler(lookupLog *service.LookupLog) *Handler {
	return &Handler{
		lookupLog: lookupLog,
	}
}

// LookupData is the JSON form of a session's lookup state
type LookupData struct {
	Query   string              `json:"query"`
	State   domain.OutcomeState `json:"state"`
	Weather *domain.WeatherView `json:"weather,omitempty"`
	Image   string              `json:"image,omitempty"`
	Alert   bool                `json:"alert"`
	Stale   bool                `json:"stale"`
}

// LookupResponse wraps lookup data with metadata
type LookupResponse struct {
	Data    LookupData `json:"data"`
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
}

type queryRequest struct {
	Query *string `json:"query"`
}

func newLookupResponse(res service.Result) LookupResponse {
	data := LookupData{
		Query: res.Query,
		State: res.Outcome.State(),
		Alert: res.Alert,
		Stale: res.Stale,
	}
	if view, ok := res.Outcome.Weather(); ok {
		data.Weather = &view
		data.Image = ConditionImage(view.Condition)
	}
	resp := LookupResponse{Data: data, Success: !res.Alert}
	if res.Alert {
		resp.Message = alertMessage
	}
	return resp
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	storage := "ok"
	if err := h.lookupLog.Health(c.UserContext()); err != nil {
		storage = "unavailable"
	}

	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "weather-lookup",
		"version": "1.0.0",
		"storage": storage,
	})
}

// Index renders the page for the session's current state
func (h *Handler) Index(c *fiber.Ctx) error {
	return h.render(c, service.Result{Snapshot: lookupFrom(c).Snapshot()})
}

// SubmitForm handles the search form: it stores the typed query and looks it up
func (h *Handler) SubmitForm(c *fiber.Ctx) error {
	lookup := lookupFrom(c)
	// FormValue aliases the request buffer, the query outlives the request
	lookup.UpdateQuery(fiberutils.CopyString(c.FormValue("q")))
	return h.render(c, lookup.Submit(c.UserContext()))
}

func (h *Handler) render(c *fiber.Ctx, res service.Result) error {
	body, err := renderPage(res.Snapshot, res.Alert)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render page")
	}
	c.Type("html", "utf-8")
	return c.Send(body)
}

// GetLookup returns the session's current state
func (h *Handler) GetLookup(c *fiber.Ctx) error {
	return c.JSON(newLookupResponse(service.Result{Snapshot: lookupFrom(c).Snapshot()}))
}

// UpdateQuery replaces the session's query without looking it up
func (h *Handler) UpdateQuery(c *fiber.Ctx) error {
	var req queryRequest
	if err := c.BodyParser(&req); err != nil || req.Query == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	lookup := lookupFrom(c)
	lookup.UpdateQuery(*req.Query)

	return c.JSON(newLookupResponse(service.Result{Snapshot: lookup.Snapshot()}))
}

// SubmitLookup looks up the session's query, optionally replacing it first
func (h *Handler) SubmitLookup(c *fiber.Ctx) error {
	var req queryRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}

	lookup := lookupFrom(c)
	if req.Query != nil {
		lookup.UpdateQuery(*req.Query)
	}

	return c.JSON(newLookupResponse(lookup.Submit(c.UserContext())))
}

// GetRecentLookups returns the newest entries of the lookup log
func (h *Handler) GetRecentLookups(c *fiber.Ctx) error {
	ctx := c.UserContext()

	limit := utils.Clamp(c.QueryInt("limit", 20), 1, 100)

	data, err := h.lookupLog.Recent(ctx, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch lookup log")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"count":   len(data),
	})
}
