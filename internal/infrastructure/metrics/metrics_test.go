package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chordcraft/core/internal/domain/entities"
	"github.com/chordcraft/core/internal/ports"
)

func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matches(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matches(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestDocumentLoaded(t *testing.T) {
	m := New()

	m.DocumentLoaded(entities.LoadOK)
	m.DocumentLoaded(entities.LoadOK)
	m.DocumentLoaded(entities.LoadRecovered)

	assert.Equal(t, 2.0, counterValue(t, m, "chordcraft_document_loads_total", map[string]string{"outcome": "loaded"}))
	assert.Equal(t, 1.0, counterValue(t, m, "chordcraft_document_loads_total", map[string]string{"outcome": "recovered"}))
}

func TestDocumentRepaired(t *testing.T) {
	m := New()

	m.DocumentRepaired(ports.NormalizeReport{
		CreatedCollections: []entities.Kind{entities.KindProgression},
		ReassignedIDs: []ports.IDChange{
			{Kind: entities.KindShape, Index: 0, Current: "shape-a"},
			{Kind: entities.KindShape, Index: 3, Current: "shape-b"},
		},
		RepairedFields: []ports.FieldRepair{{Kind: entities.KindShape, ID: "shape-a", Field: "chord"}},
	})

	metric := "chordcraft_document_repairs_total"
	assert.Equal(t, 1.0, counterValue(t, m, metric, map[string]string{"collection": "progressions", "repair": "collection_created"}))
	assert.Equal(t, 2.0, counterValue(t, m, metric, map[string]string{"collection": "shapes", "repair": "id_reassigned"}))
	assert.Equal(t, 1.0, counterValue(t, m, metric, map[string]string{"collection": "shapes", "repair": "chord_repaired"}))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/shapes/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "nope")
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	for _, id := range []string{"a", "b", "missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/shapes/"+id, nil))
	}

	assert.Equal(t, 2.0, counterValue(t, m, "http_requests_total", map[string]string{"path": "/api/shapes/:id", "status": "200"}))
	assert.Equal(t, 1.0, counterValue(t, m, "http_requests_total", map[string]string{"path": "/api/shapes/:id", "status": "404"}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_request_duration_seconds"))
}
