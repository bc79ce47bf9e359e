package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/treaty-engine/cashflow"
	"github.com/warp/treaty-engine/treaty"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// assertAmount compares a wire decimal against an expectation with the
// engine's 1e-6 relative tolerance (allocation shares carry division drift).
func assertAmount(t *testing.T, expected, wire string) {
	t.Helper()
	e := dec(expected)
	a, err := decimal.NewFromString(wire)
	require.NoError(t, err)
	limit := decimal.New(1, -6)
	if scaled := limit.Mul(e.Abs()); scaled.GreaterThan(limit) {
		limit = scaled
	}
	assert.True(t, e.Sub(a).Abs().LessThanOrEqual(limit), "expected %s, got %s", expected, wire)
}

func testBook() cashflow.Inputs {
	e := treaty.Treaty{
		ID:                  "E",
		Effective:           treaty.NewMonth(2021, time.March),
		Expiration:          treaty.NewMonth(2022, time.March),
		PolicyLengthMonths:  12,
		TotalSubjectPremium: dec("1200000"),
		TargetParticipation: dec("0.5"),
	}
	return cashflow.Inputs{
		Treaties: []treaty.Treaty{e},
		Factors: []treaty.DevelopmentFactor{
			{TreatyID: e.ID, LagMonths: 1, PaidPercent: dec("0.05"), ReportedPercent: dec("0.20")},
			{TreatyID: e.ID, LagMonths: 25, PaidPercent: dec("1"), ReportedPercent: dec("1")},
		},
		Experience: []treaty.ExperienceRow{{
			TreatyID:       e.ID,
			Month:          treaty.NewMonth(2021, time.May),
			WrittenPremium: cashflow.Present(dec("62000")),
		}},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := NewHandler(cashflow.NewEngine(), testBook())
	srv := httptest.NewServer(NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func postJSON(t *testing.T, url string, body, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// =============================================================================
// HEALTH AND TREATIES
// =============================================================================

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/api/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestListTreaties(t *testing.T) {
	srv := newTestServer(t)

	var dtos []TreatyDTO
	resp := getJSON(t, srv.URL+"/api/treaties", &dtos)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, dtos, 1)

	assert.Equal(t, "E", dtos[0].ID)
	assert.Equal(t, 202103, dtos[0].Effective)
	assert.Equal(t, 12, dtos[0].TreatyLengthMonths)
	assert.Equal(t, "600000", dtos[0].WrittenTotal)
	assert.False(t, dtos[0].LOD)
}

// =============================================================================
// PROJECTIONS
// =============================================================================

func TestRunProjection(t *testing.T) {
	srv := newTestServer(t)

	var run RunResponse
	resp := postJSON(t, srv.URL+"/api/projections", nil, &run)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, run.Treaties, 1)
	assert.Equal(t, "E", run.Treaties[0].ID)
	assert.Equal(t, "600000", run.Treaties[0].WrittenTotal)
	require.NotEmpty(t, run.Checks)
	for _, c := range run.Checks {
		assert.True(t, c.Pass, "check %s for %s", c.Name, c.Treaty)
	}
}

func TestRunProjection_ValuationCutoff(t *testing.T) {
	srv := newTestServer(t)

	// The reported 62,000 for 2021-05 is after the valuation month, so the
	// pure 50,000 allocation survives.
	resp := postJSON(t, srv.URL+"/api/projections", RunRequest{ValuationMonth: 202104}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cells []CellDTO
	getJSON(t, srv.URL+"/api/projections/cells?treaty=E&from=202105&to=202105", &cells)
	require.Len(t, cells, 1)
	assertAmount(t, "50000", cells[0].WrittenMonthly)
	require.NotNil(t, cells[0].ReportedWritten)
	assert.Equal(t, "62000", *cells[0].ReportedWritten)
}

func TestRunProjection_InvalidValuationMonth(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/projections", RunRequest{ValuationMonth: 202113}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunProjection_DataQualityMapsTo422(t *testing.T) {
	// A book whose treaty has no development curve fails validation.
	book := testBook()
	book.Factors = nil
	h := NewHandler(cashflow.NewEngine(), book)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	var errBody ErrorResponse
	resp := postJSON(t, srv.URL+"/api/projections", nil, &errBody)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, errBody.Details)
}

// =============================================================================
// CELLS
// =============================================================================

func TestGetCells_RequiresCompletedRun(t *testing.T) {
	srv := newTestServer(t)

	resp := getJSON(t, srv.URL+"/api/projections/cells?treaty=E", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetCells_MonthBounds(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/projections", nil, nil)

	var cells []CellDTO
	resp := getJSON(t, srv.URL+"/api/projections/cells?treaty=E&from=202103&to=202202", &cells)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, cells, 12)

	assert.Equal(t, 202103, cells[0].Month)
	assert.Equal(t, 202202, cells[11].Month)
	assertAmount(t, "50000", cells[0].WrittenMonthly)
	assert.Nil(t, cells[0].ReportedWritten, "absent experience serializes as null")

	// 2021-05 carries the substituted reported value.
	assert.Equal(t, "62000", cells[2].WrittenMonthly)
	require.NotNil(t, cells[2].ReportedWritten)
}

func TestGetCells_UnknownTreaty(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/projections", nil, nil)

	resp := getJSON(t, srv.URL+"/api/projections/cells?treaty=GHOST", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCells_InvalidBound(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/projections", nil, nil)

	resp := getJSON(t, srv.URL+"/api/projections/cells?treaty=E&from=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
