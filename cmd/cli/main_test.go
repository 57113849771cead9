package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method string
	path   string
	body   map[string]any
}

func newTestAPI(t *testing.T, status int, response string) (*httptest.Server, *recordedRequest) {
	t.Helper()

	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.RequestURI()
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestWalletCreate(t *testing.T) {
	srv, rec := newTestAPI(t, http.StatusCreated, `{"data":{"id":"w-1","name":"Main","value":"250"}}`)

	out, err := execute(t, "--url", srv.URL, "wallet", "create", "--name", "Main", "--value", "250")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/wallets", rec.path)
	assert.Equal(t, "Main", rec.body["name"])
	assert.Equal(t, "250", rec.body["value"])
	assert.Contains(t, out, "\"id\": \"w-1\"")
}

func TestWalletItemsBuildsQuery(t *testing.T) {
	srv, rec := newTestAPI(t, http.StatusOK, `{"data":{"items":[],"total":0}}`)

	_, err := execute(t, "--url", srv.URL, "wallet", "items", "w-1", "--start", "2024-01-01", "--end", "2024-01-31", "--page", "2")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/wallets/w-1/items?start=2024-01-01&end=2024-01-31&page=2&size=20", rec.path)
}

func TestWalletReconcileRepairUsesPost(t *testing.T) {
	srv, rec := newTestAPI(t, http.StatusOK, `{"data":{"is_reconciled":true}}`)

	_, err := execute(t, "--url", srv.URL, "wallet", "reconcile", "w-1", "--repair")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/wallets/w-1/reconcile", rec.path)
}

func TestItemAddReportsValidationErrors(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusBadRequest, `{"errors":["value is required","type is required"]}`)

	_, err := execute(t, "--url", srv.URL, "item", "add", "--wallet", "w-1", "--description", "Coffee")
	require.Error(t, err)

	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "value is required; type is required")
}

func TestItemDeleteNoContent(t *testing.T) {
	srv, rec := newTestAPI(t, http.StatusNoContent, "")

	out, err := execute(t, "--url", srv.URL, "item", "delete", "i-1")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "OK\n", out)
}

func TestWalletGetRequiresID(t *testing.T) {
	_, err := execute(t, "wallet", "get")
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, json.RawMessage(`{"a":1}`)))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
