package server

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/san-kum/pidsim/internal/pid"
)

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ptr(v float64) *float64 { return &v }

func TestCreateAndUpdate(t *testing.T) {
	s := New(WithLogger(zap.NewNop()))

	rec := do(t, s, http.MethodPost, "/controllers", CreateRequest{Name: "oven", Kp: 2, Ki: 3, Kd: 5, Origin: ptr(0)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/controllers/oven/update", UpdateRequest{Error: 4, Timestamp: ptr(2)})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42.0, float64(resp.Correction))

	rec = do(t, s, http.MethodGet, "/controllers/oven", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view ControllerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, pid.Gains{Kp: 2, Ki: 3, Kd: 5}, view.Gains.Gains())
	assert.Equal(t, pid.State{Proportional: 8, Integral: 8, Derivative: 2, PreviousTime: 2, PreviousError: 4}, view.State.State())
}

func TestRejectedUpdateLooksLikeZero(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("fan", pid.Gains{Kp: 1, Ki: 1, Kd: 1}, ptr(10)))

	before, err := s.Describe("fan")
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/controllers/fan/update", UpdateRequest{Error: 7, Timestamp: ptr(5)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"correction": 0}`, rec.Body.String())

	after, err := s.Describe("fan")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateReadsServerClock(t *testing.T) {
	now := 0.0
	s := New(WithClock(func() float64 { return now }))
	require.NoError(t, s.Create("pump", pid.Gains{Kp: 1}, nil))

	now = 3
	u, err := s.Update("pump", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 2.0, u)

	view, err := s.Describe("pump")
	require.NoError(t, err)
	assert.Equal(t, 3.0, view.State.State().PreviousTime)
}

func TestOverflowedCorrectionIsEncoded(t *testing.T) {
	s := New()

	rec := do(t, s, http.MethodPost, "/controllers", CreateRequest{Name: "boiler", Kp: 10, Origin: ptr(0)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, s, http.MethodPost, "/controllers/boiler/update", UpdateRequest{Error: 1e308, Timestamp: ptr(1)})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"correction": "+Inf"}`, rec.Body.String())

	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, math.IsInf(float64(resp.Correction), 1))

	rec = do(t, s, http.MethodGet, "/controllers/boiler", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Body.String())

	var view ControllerView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.True(t, math.IsInf(view.State.State().Proportional, 1))
	assert.Equal(t, 1e308, view.State.State().Derivative)
}

func TestNaNErrorIsEncoded(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("sensor", pid.Gains{Kp: 1}, ptr(0)))

	nan := math.NaN()
	u, err := s.Update("sensor", nan, ptr(1))
	require.NoError(t, err)
	require.True(t, math.IsNaN(u))

	rec := do(t, s, http.MethodGet, "/controllers/sensor", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"proportional":"NaN"`)
}

func TestWriteJSONFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"bad": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "encode response")
}

func TestErrors(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("a", pid.Gains{}, ptr(0)))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		code   int
	}{
		{"duplicate", http.MethodPost, "/controllers", CreateRequest{Name: "a"}, http.StatusConflict},
		{"missing name", http.MethodPost, "/controllers", CreateRequest{}, http.StatusBadRequest},
		{"unknown get", http.MethodGet, "/controllers/b", nil, http.StatusNotFound},
		{"unknown update", http.MethodPost, "/controllers/b/update", UpdateRequest{Error: 1}, http.StatusNotFound},
		{"unknown delete", http.MethodDelete, "/controllers/b", nil, http.StatusNotFound},
		{"wrong method", http.MethodPut, "/controllers/a", nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}

func TestBadJSON(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("a", pid.Gains{}, ptr(0)))

	for _, path := range []string{"/controllers", "/controllers/a/update"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestListAndDelete(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("b", pid.Gains{}, ptr(0)))
	require.NoError(t, s.Create("a", pid.Gains{}, ptr(0)))

	rec := do(t, s, http.MethodGet, "/controllers", nil)
	assert.JSONEq(t, `{"controllers": ["a", "b"]}`, rec.Body.String())

	rec = do(t, s, http.MethodDelete, "/controllers/a", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"b"}, s.Names())
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	s := New()
	require.NoError(t, s.Create("shared", pid.Gains{Ki: 1}, ptr(0)))

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(1)
		go func(ts float64) {
			defer wg.Done()
			_, _ = s.Update("shared", 1, &ts)
		}(float64(i))
	}
	wg.Wait()

	view, err := s.Describe("shared")
	require.NoError(t, err)
	// Whatever order the updates land in, accepted ones advance time and
	// integrate error 1 over the elapsed span, so the integral equals the
	// last accepted timestamp.
	assert.Equal(t, view.State.PreviousTime, view.State.Integral)
}
