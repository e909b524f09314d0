package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/weatherlookup/backend/internal/domain"
	"github.com/weatherlookup/backend/internal/service"
	"github.com/weatherlookup/backend/pkg/utils"
)

//go:embed web
var webFS embed.FS

const (
	notFoundMessage = "Ooops! Localização não encontrada 😕"
	alertMessage    = "Ocorreu um erro!"
	notFoundImage   = "/static/img/404.svg"
)

var conditionImages = map[domain.Condition]string{
	domain.ConditionClear:  "/static/img/clear.svg",
	domain.ConditionClouds: "/static/img/cloud.svg",
	domain.ConditionMist:   "/static/img/mist.svg",
	domain.ConditionRain:   "/static/img/rain.svg",
	domain.ConditionSnow:   "/static/img/snow.svg",
}

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html.tmpl"))

// ConditionImage returns the fixed image for a condition category
func ConditionImage(c domain.Condition) string {
	return conditionImages[c]
}

// weatherPanel is the rendered form of a WeatherView
type weatherPanel struct {
	Image       string
	Temp        int
	Description string
	Humidity    int
	WindSpeed   string
}

type pageData struct {
	Query           string
	NotFound        bool
	NotFoundImage   string
	NotFoundMessage string
	Weather         *weatherPanel
	Alert           bool
	AlertMessage    string
}

func newPageData(snap service.Snapshot, alert bool) pageData {
	data := pageData{
		Query:           snap.Query,
		NotFound:        snap.Outcome.IsNotFound(),
		NotFoundImage:   notFoundImage,
		NotFoundMessage: notFoundMessage,
		Alert:           alert,
		AlertMessage:    alertMessage,
	}
	if view, ok := snap.Outcome.Weather(); ok {
		data.Weather = &weatherPanel{
			Image:       ConditionImage(view.Condition),
			Temp:        view.Temperature.Temp,
			Description: view.Description,
			Humidity:    view.Humidity,
			WindSpeed:   utils.FormatDecimal(view.WindSpeed, 2),
		}
	}
	return data
}

func renderPage(snap service.Snapshot, alert bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(snap, alert)); err != nil {
		return nil, fmt.Errorf("page: failed to render: %w", err)
	}
	return buf.Bytes(), nil
}
