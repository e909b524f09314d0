package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weatherlookup/backend/internal/domain"
	"github.com/weatherlookup/backend/internal/repository/postgres"
	"github.com/weatherlookup/backend/internal/service"
)

const londonBody = `{
	"weather": [{"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
	"main": {"temp": 15.2, "feels_like": 14.6, "temp_min": 13.9, "temp_max": 16.1, "humidity": 72},
	"wind": {"speed": 3.6},
	"name": "London",
	"sys": {"country": "GB"}
}`

// fakeOpenWeather serves London, one body per condition tag, 404 for Atlantis,
// broken JSON for Broken and 500 for anything else
func fakeOpenWeather(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		q := r.URL.Query().Get("q")
		switch q {
		case "London":
			fmt.Fprint(w, londonBody)
		case "Atlantis":
			w.WriteHeader(nethttp.StatusNotFound)
			fmt.Fprint(w, `{"cod":"404","message":"city not found"}`)
		case "Broken":
			fmt.Fprint(w, `{"weather": [`)
		default:
			if _, err := domain.ParseCondition(q); err == nil {
				fmt.Fprintf(w, `{"weather":[{"main":%q,"description":"d"}],"main":{"temp":1,"humidity":1},"wind":{"speed":1}}`, q)
				return
			}
			w.WriteHeader(nethttp.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T) (*fiber.App, *service.LookupLog) {
	t.Helper()
	provider := fakeOpenWeather(t)
	weatherSvc := service.NewWeatherService("test-key", provider.URL, 2*time.Second)
	lookupLog := service.NewLookupLog(postgres.NewMockRepository())
	registry := service.NewSessionRegistry(weatherSvc, lookupLog, time.Minute, 100)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	SetupRoutes(app, registry, lookupLog, time.Minute)
	return app, lookupLog
}

// client carries the session cookie between requests
type client struct {
	t       *testing.T
	app     *fiber.App
	session *nethttp.Cookie
}

func (c *client) do(req *nethttp.Request) (*nethttp.Response, string) {
	c.t.Helper()
	if c.session != nil {
		req.AddCookie(c.session)
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		if ck.Name == SessionCookie {
			c.session = ck
		}
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	resp.Body.Close()
	return resp, string(body)
}

func (c *client) submitForm(query string) (*nethttp.Response, string) {
	req := httptest.NewRequest(nethttp.MethodPost, "/", strings.NewReader("q="+query))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) getPage() string {
	_, body := c.do(httptest.NewRequest(nethttp.MethodGet, "/", nil))
	return body
}

func (c *client) json(method, path, body string, out interface{}) *nethttp.Response {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, raw := c.do(req)
	if out != nil {
		require.NoError(c.t, json.Unmarshal([]byte(raw), out), raw)
	}
	return resp
}

func newClient(t *testing.T) *client {
	app, _ := newTestApp(t)
	return &client{t: t, app: app}
}

func TestIndexIdle(t *testing.T) {
	c := newClient(t)
	resp, body := c.do(httptest.NewRequest(nethttp.MethodGet, "/", nil))

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, `name="q"`)
	assert.NotContains(t, body, "Humidade")
	assert.NotContains(t, body, notFoundMessage)
	assert.NotContains(t, body, "alert(")
	require.NotNil(t, c.session, "a session cookie is issued")
	assert.True(t, c.session.HttpOnly)
}

func TestSubmitFormLondon(t *testing.T) {
	c := newClient(t)
	resp, body := c.submitForm("London")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "15<span>°C</span>")
	assert.Contains(t, body, "overcast clouds")
	assert.Contains(t, body, "72% Humidade")
	assert.Contains(t, body, "3.6Km/h Velocidade")
	assert.Contains(t, body, `src="/static/img/cloud.svg"`)
	assert.Contains(t, body, `value="London"`)
	assert.NotContains(t, body, notFoundMessage)
	assert.NotContains(t, body, "alert(")
}

func TestSubmitFormConditionImages(t *testing.T) {
	want := map[domain.Condition]string{
		domain.ConditionClear:  "/static/img/clear.svg",
		domain.ConditionClouds: "/static/img/cloud.svg",
		domain.ConditionMist:   "/static/img/mist.svg",
		domain.ConditionRain:   "/static/img/rain.svg",
		domain.ConditionSnow:   "/static/img/snow.svg",
	}
	require.Len(t, want, len(domain.Conditions))

	for _, cond := range domain.Conditions {
		t.Run(string(cond), func(t *testing.T) {
			assert.Equal(t, want[cond], ConditionImage(cond))

			c := newClient(t)
			_, body := c.submitForm(string(cond))
			assert.Contains(t, body, `src="`+want[cond]+`"`)
		})
	}
}

func TestSubmitFormNotFound(t *testing.T) {
	c := newClient(t)
	c.submitForm("London")

	_, body := c.submitForm("Atlantis")

	assert.Contains(t, body, notFoundMessage)
	assert.Contains(t, body, notFoundImage)
	assert.NotContains(t, body, "Humidade")
	assert.NotContains(t, body, "overcast clouds")
	assert.NotContains(t, body, "alert(")

	// state survives a reload
	page := c.getPage()
	assert.Contains(t, page, notFoundMessage)
}

func TestSubmitFormGenericError(t *testing.T) {
	for _, query := range []string{"Broken", "Somewhere"} {
		t.Run(query, func(t *testing.T) {
			c := newClient(t)
			c.submitForm("London")

			resp, body := c.submitForm(query)

			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, 1, strings.Count(body, "alert("))
			assert.Contains(t, body, alertMessage)
			assert.NotContains(t, body, "Humidade")
			assert.NotContains(t, body, notFoundMessage)

			page := c.getPage()
			assert.NotContains(t, page, "alert(", "the notification is shown once")
			assert.NotContains(t, page, "Humidade")
		})
	}
}

func TestSubmitFormIdempotent(t *testing.T) {
	c := newClient(t)
	_, first := c.submitForm("London")
	_, second := c.submitForm("London")
	assert.Equal(t, first, second)
}

func TestSessionsAreIsolated(t *testing.T) {
	app, _ := newTestApp(t)
	a := &client{t: t, app: app}
	b := &client{t: t, app: app}

	a.submitForm("London")
	b.getPage()

	assert.NotEqual(t, a.session.Value, b.session.Value)
	assert.NotContains(t, b.getPage(), "Humidade")
	assert.Contains(t, a.getPage(), "Humidade")
}

func TestAPIUpdateQueryKeepsOutcome(t *testing.T) {
	c := newClient(t)

	var res LookupResponse
	c.json(nethttp.MethodPost, "/api/v1/lookup", `{"query":"London"}`, &res)
	require.True(t, res.Success)
	require.Equal(t, domain.StateFound, res.Data.State)

	resp := c.json(nethttp.MethodPut, "/api/v1/lookup/query", `{"query":"Atlantis"}`, &res)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Atlantis", res.Data.Query)
	assert.Equal(t, domain.StateFound, res.Data.State)
	require.NotNil(t, res.Data.Weather)
	assert.Equal(t, 15, res.Data.Weather.Temperature.Temp)

	c.json(nethttp.MethodGet, "/api/v1/lookup", "", &res)
	assert.Equal(t, domain.StateFound, res.Data.State)

	// submit without a body uses the stored query
	res = LookupResponse{}
	c.json(nethttp.MethodPost, "/api/v1/lookup", "", &res)
	assert.Equal(t, domain.StateNotFound, res.Data.State)
	assert.Nil(t, res.Data.Weather)
	assert.False(t, res.Data.Alert)
}

func TestAPISubmitFailure(t *testing.T) {
	c := newClient(t)

	var res LookupResponse
	c.json(nethttp.MethodPost, "/api/v1/lookup", `{"query":"London"}`, &res)
	assert.Equal(t, "/static/img/cloud.svg", res.Data.Image)

	res = LookupResponse{}
	c.json(nethttp.MethodPost, "/api/v1/lookup", `{"query":"Broken"}`, &res)
	assert.False(t, res.Success)
	assert.True(t, res.Data.Alert)
	assert.Equal(t, alertMessage, res.Message)
	assert.Equal(t, domain.StateIdle, res.Data.State)
	assert.Nil(t, res.Data.Weather)
}

func TestAPIUpdateQueryRejectsBadBody(t *testing.T) {
	c := newClient(t)

	var errBody map[string]interface{}
	resp := c.json(nethttp.MethodPut, "/api/v1/lookup/query", `{}`, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, true, errBody["error"])
}

func TestRecentLookups(t *testing.T) {
	app, lookupLog := newTestApp(t)
	c := &client{t: t, app: app}

	c.submitForm("London")
	c.submitForm("Atlantis")
	c.submitForm("Broken")
	lookupLog.WaitBackground()

	var res struct {
		Success bool                  `json:"success"`
		Count   int                   `json:"count"`
		Data    []domain.LookupRecord `json:"data"`
	}
	c.json(nethttp.MethodGet, "/api/v1/history?limit=10", "", &res)

	assert.True(t, res.Success)
	require.Equal(t, 2, res.Count)
	queries := []string{res.Data[0].Query, res.Data[1].Query}
	assert.ElementsMatch(t, []string{"London", "Atlantis"}, queries, "failed lookups are not logged")
}

func TestHealthAndStatic(t *testing.T) {
	c := newClient(t)

	var health map[string]interface{}
	resp := c.json(nethttp.MethodGet, "/health", "", &health)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["storage"])

	resp, body := c.do(httptest.NewRequest(nethttp.MethodGet, "/static/img/cloud.svg", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<svg")
}

func TestSubmitFormQueryOutlivesRequest(t *testing.T) {
	app, lookupLog := newTestApp(t)
	a := &client{t: t, app: app}
	b := &client{t: t, app: app}

	a.submitForm("London")
	b.submitForm("Atlantis")
	b.submitForm("Somewhere else entirely")
	lookupLog.WaitBackground()

	var res LookupResponse
	a.json(nethttp.MethodGet, "/api/v1/lookup", "", &res)
	assert.Equal(t, "London", res.Data.Query)
	assert.Equal(t, domain.StateFound, res.Data.State)
	assert.Contains(t, a.getPage(), `value="London"`)

	// resubmitting the stored query still finds London
	res = LookupResponse{}
	a.json(nethttp.MethodPost, "/api/v1/lookup", "", &res)
	assert.Equal(t, "London", res.Data.Query)
	assert.Equal(t, domain.StateFound, res.Data.State)
	lookupLog.WaitBackground()

	recent, err := lookupLog.Recent(context.Background(), 10)
	require.NoError(t, err)
	var queries []string
	for _, rec := range recent {
		queries = append(queries, rec.Query)
	}
	assert.ElementsMatch(t, []string{"London", "Atlantis", "London"}, queries)
}
