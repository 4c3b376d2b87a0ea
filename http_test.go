package metrics

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFacade(t *testing.T) (*Registry, http.Handler) {
	t.Helper()
	r := NewRegistry()
	t.Cleanup(r.Shutdown)
	return r, NewHTTPHandler(r, nil)
}

func doRequest(handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHTTPFacade_NamesEmpty(t *testing.T) {
	_, handler := newTestFacade(t)
	rec := doRequest(handler, http.MethodGet, DefaultBasePath+"/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Empty(t, names)
}

func TestHTTPFacade_PutThenGet(t *testing.T) {
	_, handler := newTestFacade(t)

	putRec := doRequest(handler, http.MethodPut, DefaultBasePath+"/requests", map[string]string{"type": "counter"})
	assert.Equal(t, http.StatusOK, putRec.Code)

	getRec := doRequest(handler, http.MethodGet, DefaultBasePath+"/requests", nil)
	assert.Equal(t, http.StatusOK, getRec.Code)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &snap))
	assert.Equal(t, "counter", snap["kind"])
}

func TestHTTPFacade_GetUnknownIs404(t *testing.T) {
	_, handler := newTestFacade(t)
	rec := doRequest(handler, http.MethodGet, DefaultBasePath+"/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPFacade_PutUnknownTypeIs400(t *testing.T) {
	_, handler := newTestFacade(t)
	rec := doRequest(handler, http.MethodPut, DefaultBasePath+"/x", map[string]string{"type": "nonsense"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPFacade_PostNotifiesAndMissingValueIs400(t *testing.T) {
	r, handler := newTestFacade(t)
	_, err := r.RegisterCounter("hits")
	require.NoError(t, err)

	okRec := doRequest(handler, http.MethodPost, DefaultBasePath+"/hits", map[string]interface{}{"value": 5})
	assert.Equal(t, http.StatusOK, okRec.Code)

	snap, err := r.Get("hits")
	require.NoError(t, err)
	assert.Equal(t, int64(5), snap["value"])

	badRec := doRequest(handler, http.MethodPost, DefaultBasePath+"/hits", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, badRec.Code)
}

func TestHTTPFacade_PostUnknownNameIs404(t *testing.T) {
	_, handler := newTestFacade(t)
	rec := doRequest(handler, http.MethodPost, DefaultBasePath+"/missing", map[string]interface{}{"value": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPFacade_DeleteReportsOutcome(t *testing.T) {
	r, handler := newTestFacade(t)
	_, err := r.RegisterCounter("temp")
	require.NoError(t, err)

	first := doRequest(handler, http.MethodDelete, DefaultBasePath+"/temp", nil)
	var firstBody string
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstBody))
	assert.Equal(t, "deleted", firstBody)

	second := doRequest(handler, http.MethodDelete, DefaultBasePath+"/temp", nil)
	var secondBody string
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondBody))
	assert.Equal(t, "not deleted", secondBody)
}

func TestHTTPFacade_WrongContentTypeIs415(t *testing.T) {
	_, handler := newTestFacade(t)

	req := httptest.NewRequest(http.MethodPut, DefaultBasePath+"/x", bytes.NewReader([]byte(`{"type":"counter"}`)))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHTTPFacade_MissingContentTypeIs415(t *testing.T) {
	_, handler := newTestFacade(t)

	req := httptest.NewRequest(http.MethodPut, DefaultBasePath+"/x", bytes.NewReader([]byte(`{"type":"counter"}`)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHTTPFacade_PutHistogramFlattensReservoirParams(t *testing.T) {
	r, handler := newTestFacade(t)

	rec := doRequest(handler, http.MethodPut, DefaultBasePath+"/latency", map[string]interface{}{
		"type":           "histogram",
		"reservoir_type": "uniform",
		"capacity":       50,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	inst, err := r.Lookup("latency")
	require.NoError(t, err)
	h, ok := inst.(*Histogram)
	require.True(t, ok)
	assert.Equal(t, float64(50), h.Reservoir().Descriptor().Params["capacity"])
}

func TestHTTPFacade_ForwardsOutsideBasePath(t *testing.T) {
	r := NewRegistry()
	t.Cleanup(r.Shutdown)

	forwarded := false
	next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		forwarded = true
		w.WriteHeader(http.StatusTeapot)
	})
	handler := NewHTTPHandler(r, next)

	rec := doRequest(handler, http.MethodGet, "/unrelated", nil)
	assert.True(t, forwarded)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
