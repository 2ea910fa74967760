package devnet

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilianohg/spbuadmin/internal/logging"
)

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerRoundTrip(t *testing.T) {
	c := newTestContract(t)
	h := NewHandler(c, logging.Discard())

	rec := post(t, h, "/v1/write", CallRequest{Function: "createUnit", Args: []any{"Liter", "L"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tx struct {
		Hash  string `json:"hash"`
		Block uint64 `json:"block"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tx))
	assert.Equal(t, uint64(1), tx.Block)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = post(t, h, "/v1/read", CallRequest{Function: "getUnits", Args: []any{0, 10}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out struct {
		Result []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Result, 1)
	assert.Equal(t, "Liter", out.Result[0]["name"])
	assert.Equal(t, float64(1), out.Result[0]["id"])

	rec = post(t, h, "/v1/simulate", CallRequest{Function: "deleteUnit", Args: []any{1}})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerErrors(t *testing.T) {
	c := newTestContract(t)
	h := NewHandler(c, logging.Discard())

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		code   string
	}{
		{"revert", "/v1/write", CallRequest{Function: "deleteUnit", Args: []any{42}}, http.StatusUnprocessableEntity, CodeReverted},
		{"simulate revert", "/v1/simulate", CallRequest{Function: "deleteUnit", Args: []any{42}}, http.StatusUnprocessableEntity, CodeReverted},
		{"unknown", "/v1/read", CallRequest{Function: "getNothing"}, http.StatusNotFound, CodeUnknownFunction},
		{"missing function", "/v1/read", map[string]any{"args": []any{}}, http.StatusBadRequest, CodeBadRequest},
		{"bad args", "/v1/write", CallRequest{Function: "createUnit", Args: []any{"Liter"}}, http.StatusBadRequest, CodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
			var e ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestHealthAndTransactions(t *testing.T) {
	c := newTestContract(t)
	h := NewHandler(c, logging.Discard())
	post(t, h, "/v1/write", CallRequest{Function: "createTag", Args: []any{"promo"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","head":1}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/transactions?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var txs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
	assert.Equal(t, "createTag", txs[0]["function"])
}
