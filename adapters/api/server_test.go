package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/app"
	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/internal/pipeline"
	"hacplanner/internal/testkit"
	"hacplanner/internal/validation"
)

func newTestServer(t *testing.T, gen *testkit.CannedGenerator) (*Server, *testkit.TestKit) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	kit := testkit.NewTestKit()
	planner := app.NewPlannerService(
		archetype.NewDefaultResolver(nil),
		pipeline.NewExecutor(gen, nil),
		validation.NewCoupler(validation.DefaultQualityThreshold),
		kit.Plans,
		validation.FailActionWarn,
		nil,
	)
	bulk := app.NewBulkService(planner, kit.Roster, 2, nil)
	interrogation := app.NewInterrogationService(kit.Plans, gen, nil)
	return NewServer(planner, bulk, interrogation, gin.TestMode, nil), kit
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &testkit.CannedGenerator{})
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePlanEndpoint(t *testing.T) {
	srv, kit := newTestServer(t, &testkit.CannedGenerator{})

	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{
		"concern":   "clabsi",
		"narrative": "Central line placed day 2, culture positive day 6.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result app.PlanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, core.ConcernID("CLABSI"), result.Plan.Metadata.Concern)
	assert.Equal(t, 1, kit.Plans.Count())
}

func TestCreatePlanRejectsMissingNarrative(t *testing.T) {
	srv, _ := newTestServer(t, &testkit.CannedGenerator{})
	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{"concern": "clabsi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlanEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &testkit.CannedGenerator{})

	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{
		"concern":   "cauti",
		"narrative": "Catheter placed on admission, urine culture positive day 4.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created app.PlanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Plan.Metadata.PlanningID

	rec = doJSON(t, srv, http.MethodGet, "/plans/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/plans/"+core.NewID().String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportEndpointFormats(t *testing.T) {
	srv, _ := newTestServer(t, &testkit.CannedGenerator{})

	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{
		"concern":   "ssi",
		"narrative": "Colectomy day 1, purulent drainage day 5.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created app.PlanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Plan.Metadata.PlanningID.String()

	rec = doJSON(t, srv, http.MethodGet, "/plans/"+id+"/report", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Surveillance Plan: SSI")

	rec = doJSON(t, srv, http.MethodGet, "/plans/"+id+"/report?format=html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestInterrogateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &testkit.CannedGenerator{})

	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{
		"concern":   "clabsi",
		"narrative": "Line placed day 2, culture positive day 6.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created app.PlanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Plan.Metadata.PlanningID.String()

	rec = doJSON(t, srv, http.MethodPost, "/plans/"+id+"/interrogate", map[string]interface{}{
		"mode": "summarize",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result app.InterrogationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Answer)
}

func TestBulkEndpoint(t *testing.T) {
	srv, kit := newTestServer(t, &testkit.CannedGenerator{})
	kit.Roster.Concerns = []string{"CLABSI"}

	rec := doJSON(t, srv, http.MethodPost, "/bulk", map[string]interface{}{
		"narratives": map[string]string{"CLABSI": "Line placed day 2, culture positive day 6."},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result app.BulkResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Succeeded)
}

func TestGenerationFailureMapsToBadGateway(t *testing.T) {
	gen := &testkit.CannedGenerator{Err: core.ErrGenerationTransport}
	srv, _ := newTestServer(t, gen)

	rec := doJSON(t, srv, http.MethodPost, "/plans", map[string]interface{}{
		"concern":   "clabsi",
		"narrative": "Line placed day 2.",
		"strict":    true,
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
