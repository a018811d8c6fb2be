/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Entry CRUD, date conflicts and breakdown validation
- Monthly summary over stored breakdowns
- Settings merge and validation
- Net / gross-from-net endpoints
- Holidays and health
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bzrenis/workt-sub001/factory"
	"github.com/bzrenis/workt-sub001/monthly"
	"github.com/bzrenis/workt-sub001/store/memory"
	"github.com/bzrenis/workt-sub001/summary"
	"github.com/bzrenis/workt-sub001/tax"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type testServer struct {
	handler *Handler
	router  http.Handler
	store   *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	svc := summary.NewService(store, monthly.NewAggregator(monthly.StoredProvider{}, zap.NewNop()), tax.Default, zap.NewNop())
	h := NewHandler(store, svc, zap.NewNop())
	return &testServer{handler: h, router: NewRouter(h, RouterOptions{Metrics: true}), store: store}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const dayBreakdown = `{
	"totalEarnings": 124.19,
	"ordinary": {"total": 109.19, "hours": {"lavoro_giornaliera": 8}, "earnings": {"giornaliera": 109.19}},
	"allowances": {"travel": 15}
}`

func entryRequest(date string) map[string]any {
	return map[string]any{
		"date":               date,
		"site_name":          "Cantiere Nord",
		"travel_allowance":   true,
		"meal_lunch_voucher": true,
		"breakdown":          json.RawMessage(dayBreakdown),
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

func TestCreateEntry_ThenGetAndList(t *testing.T) {
	// GIVEN: An empty store
	s := newTestServer(t)

	// WHEN: Creating an entry
	rec := s.do(t, http.MethodPost, "/api/entries", entryRequest("2025-03-03"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[EntryDTO](t, rec)

	// THEN: It can be fetched and listed
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2025-03-03", created.Date)

	rec = s.do(t, http.MethodGet, "/api/entries/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[EntryDTO](t, rec)
	assert.Equal(t, "Cantiere Nord", got.SiteName)
	assert.True(t, got.TravelAllowance)

	rec = s.do(t, http.MethodGet, "/api/entries?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]EntryDTO](t, rec), 1)
}

func TestCreateEntry_DuplicateDateConflicts(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/entries", entryRequest("2025-03-03")).Code)

	rec := s.do(t, http.MethodPost, "/api/entries", entryRequest("2025-03-03"))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateEntry_RejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	tests := map[string]any{
		"bad date":           map[string]any{"date": "03/03/2025"},
		"negative breakdown": map[string]any{"date": "2025-03-03", "breakdown": json.RawMessage(`{"ordinary":{"hours":{"lavoro_extra":-1}}}`)},
		"negative meal cash": map[string]any{"date": "2025-03-03", "meal_dinner_cash": -5},
		"not json":           "{",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/entries", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	s := newTestServer(t)
	created := decode[EntryDTO](t, s.do(t, http.MethodPost, "/api/entries", entryRequest("2025-03-03")))

	req := entryRequest("2025-03-04")
	req["notes"] = "spostato"
	rec := s.do(t, http.MethodPut, "/api/entries/"+created.ID, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[EntryDTO](t, rec)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2025-03-04", updated.Date)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/entries/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/entries/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPut, "/api/entries/"+created.ID, req).Code)
}

func TestListEntries_RequiresRange(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/entries", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/entries?from=2025-03-31&to=2025-03-01", nil).Code)
}

// =============================================================================
// MONTH SUMMARY
// =============================================================================

func TestGetMonth_SummarizesStoredBreakdowns(t *testing.T) {
	// GIVEN: Two March days with a 15 euro travel allowance each
	s := newTestServer(t)
	for _, date := range []string{"2025-03-03", "2025-03-04"} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/entries", entryRequest(date)).Code)
	}

	// WHEN: Requesting the month
	rec := s.do(t, http.MethodGet, "/api/months/2025/3", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sum := decode[MonthSummaryDTO](t, rec)

	// THEN: Totals and display strings reflect both days
	assert.Equal(t, 2, sum.DaysWorked)
	assert.InDelta(t, 248.38, sum.TotalEarnings, 0.001)
	assert.InDelta(t, 16, sum.TotalHours, 0.001)
	assert.Equal(t, 2, sum.Aggregate.Allowances.TravelByPercent.Full.Days)
	assert.Equal(t, "248,38 €", sum.Display.TotalEarnings)
	assert.Equal(t, "irpef", sum.Net.Method)
	assert.Less(t, sum.Net.Net, sum.TotalEarnings)
	assert.Empty(t, sum.Skipped)
}

func TestGetMonth_EmptyMonthHasUndefinedRate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/months/2025/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[MonthSummaryDTO](t, rec)

	assert.Equal(t, 0, sum.DaysWorked)
	assert.Nil(t, sum.Net.DeductionRate)
	assert.Equal(t, "n/d", sum.Display.DeductionRate)
}

func TestGetMonth_InvalidMonth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/months/2025/13", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/months/2025/marzo", nil).Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSettings_PartialUpdateMergesOverCurrent(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/settings", `{"netCalculation": {"method": "CUSTOM", "customDeductionRate": 30}, "patronSaint": "06-24"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := s.store.LoadSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tax.MethodCustom, got.NetCalculation.Method)
	assert.Equal(t, "06-24", got.PatronSaint)
	assert.True(t, factory.DefaultSettings().Contract.DailyRate.Equal(got.Contract.DailyRate))

	rec = s.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[factory.SettingsJSON](t, rec)
	require.NotNil(t, doc.NetCalculation)
	assert.Equal(t, "custom", *doc.NetCalculation.Method)
}

func TestSettings_InvalidRejected(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/settings", `{"netCalculation": {"customDeductionRate": 120}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// TAX
// =============================================================================

func TestCalculateNet_CustomOverride(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/net", `{"gross": 1000, "method": "custom", "custom_deduction_rate": 30}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	net := decode[NetDTO](t, rec)

	assert.Equal(t, "custom", net.Method)
	assert.InDelta(t, 700, net.Net, 0.001)
	require.NotNil(t, net.DeductionRate)
	assert.InDelta(t, 0.30, *net.DeductionRate, 0.0001)
	assert.InDelta(t, 300, net.Breakdown["custom"], 0.001)
}

func TestGrossFromNet_RoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/gross-from-net", `{"net": 1800}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	inv := decode[GrossFromNetDTO](t, rec)
	require.True(t, inv.Converged)

	rec = s.do(t, http.MethodPost, "/api/net", map[string]any{"gross": inv.Gross})
	net := decode[NetDTO](t, rec)
	assert.InDelta(t, 1800, net.Net, 0.02)
}

func TestGrossFromNet_RejectsNegative(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/gross-from-net", `{"net": -1}`).Code)
}

// =============================================================================
// HOLIDAYS / HEALTH / METRICS
// =============================================================================

func TestListHolidays_IncludesEasterMondayAndPatron(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/settings", `{"patronSaint": "06-24"}`).Code)

	rec := s.do(t, http.MethodGet, "/api/holidays/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	holidays := decode[[]HolidayDTO](t, rec)

	dates := make(map[string]string)
	for _, h := range holidays {
		dates[h.Date] = h.Name
	}
	assert.Contains(t, dates, "2025-04-21") // Easter Monday
	assert.Contains(t, dates, "2025-06-24")
	assert.Len(t, holidays, 12)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", nil).Code)
	rec := s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "worktime_")
}
