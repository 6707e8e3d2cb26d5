package suppliers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/supplier-service/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, *memorySupplierRepo) {
	t.Helper()
	repo := newMemorySupplierRepo()
	handler := NewHandler(nil, NewService(repo, ServiceConfig{}))
	r := chi.NewRouter()
	r.Route("/suppliers", handler.MountRoutes)
	r.Route("/api/suppliers", handler.MountRoutes)
	return r, repo
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSupplier(t *testing.T, rec *httptest.ResponseRecorder) supplierResponse {
	t.Helper()
	var out supplierResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpx.ErrorBody {
	t.Helper()
	var out httpx.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	assert.Equal(t, rec.Code, out.StatusCode)
	return out
}

const tomBody = `{"name":"TOM","email":"tom@gmail.com","products":[123,102]}`

func TestHandlerCreate(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/suppliers", tomBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decodeSupplier(t, rec)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "TOM", got.Name)
	assert.Equal(t, "tom@gmail.com", *got.Email)
	assert.Nil(t, got.Address)
	assert.Equal(t, "[102, 123]", got.Products)
}

func TestHandlerCreateValidation(t *testing.T) {
	h, repo := newTestRouter(t)

	cases := []struct {
		name string
		body string
		code Code
	}{
		{"bad email", `{"name":"TOM","email":"tom@"}`, CodeInvalidFormat},
		{"no contact", `{"name":"TOM"}`, CodeMissingInfo},
		{"missing name", `{"address":"NYC"}`, CodeMissingInfo},
		{"name type", `{"name":5,"address":"NYC"}`, CodeWrongArgType},
		{"product range", `{"name":"TOM","address":"NYC","products":[0]}`, CodeOutOfRange},
		{"malformed", `{"name":`, CodeInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/suppliers", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, string(tc.code), decodeError(t, rec).ErrorCode)
		})
	}
	assert.Zero(t, repo.count())

	rec := doRequest(t, h, http.MethodPost, "/suppliers", `{"name":"TOM","address":"NYC","products":[5,1,5]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "[1, 5]", decodeSupplier(t, rec).Products)
}

func TestHandlerRejectsNonJSONBody(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(tomBody))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "UnsupportedMediaType", decodeError(t, rec).ErrorCode)

	req = httptest.NewRequest(http.MethodPost, "/suppliers", strings.NewReader(tomBody))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlerGetAndList(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/suppliers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	doRequest(t, h, http.MethodPost, "/suppliers", tomBody)
	doRequest(t, h, http.MethodPost, "/suppliers", `{"name":"JERRY","address":"NYC"}`)

	rec = doRequest(t, h, http.MethodGet, "/api/suppliers/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":2,"name":"JERRY","email":null,"address":"NYC","products":"[]"}`, rec.Body.String())

	rec = doRequest(t, h, http.MethodGet, "/suppliers?name=TOM&products=102,123", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []supplierResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ID)

	rec = doRequest(t, h, http.MethodGet, "/suppliers?name=SPIKE", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(CodeNotFound), decodeError(t, rec).ErrorCode)

	rec = doRequest(t, h, http.MethodGet, "/suppliers/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerBadArguments(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := doRequest(t, h, http.MethodGet, "/suppliers/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(CodeWrongArgType), decodeError(t, rec).ErrorCode)

	rec = doRequest(t, h, http.MethodGet, "/suppliers?id=x", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(CodeWrongArgType), decodeError(t, rec).ErrorCode)

	rec = doRequest(t, h, http.MethodGet, "/suppliers?products=1,a", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(CodeInvalidFormat), decodeError(t, rec).ErrorCode)
}

func TestHandlerUpdateKeepsOmittedFields(t *testing.T) {
	h, _ := newTestRouter(t)
	doRequest(t, h, http.MethodPost, "/suppliers", tomBody)

	rec := doRequest(t, h, http.MethodPut, "/suppliers/1", `{"name":"","address":"NYC","products":[]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeSupplier(t, rec)
	assert.Equal(t, "TOM", got.Name)
	assert.Equal(t, "NYC", *got.Address)
	assert.Equal(t, "tom@gmail.com", *got.Email)
	assert.Equal(t, "[102, 123]", got.Products)

	rec = doRequest(t, h, http.MethodPut, "/suppliers/1", `{"email":"broken"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(CodeInvalidFormat), decodeError(t, rec).ErrorCode)

	rec = doRequest(t, h, http.MethodPut, "/suppliers/9", `{"name":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerAddProducts(t *testing.T) {
	h, repo := newTestRouter(t)
	doRequest(t, h, http.MethodPost, "/suppliers", tomBody)

	rec := doRequest(t, h, http.MethodPost, "/suppliers/1/products", `{"products":[102]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, string(CodeDuplicateProduct), body.ErrorCode)
	assert.Contains(t, body.Message, "102")

	rec = doRequest(t, h, http.MethodPost, "/suppliers/1/products", `{"products":[145,1776]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "[102, 123, 145, 1776]", decodeSupplier(t, rec).Products)

	stored, err := NewService(repo, ServiceConfig{}).Get(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, ProductIDs{102, 123, 145, 1776}, stored.Products)
}

func TestHandlerAddProductsErrors(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/suppliers/7/products", `{}`)
	require.Equal(t, http.StatusNotFound, rec.Code, "unknown supplier reported before body checks")

	doRequest(t, h, http.MethodPost, "/suppliers", tomBody)

	cases := []struct {
		name string
		body string
		code Code
	}{
		{"missing key", `{}`, CodeMissingInfo},
		{"null", `{"products":null}`, CodeMissingInfo},
		{"spaced null", `{"products" : null }`, CodeMissingInfo},
		{"int64 overflow", `{"products":[99999999999999999999]}`, CodeOutOfRange},
		{"not a list", `{"products":5}`, CodeWrongArgType},
		{"string element", `{"products":["1"]}`, CodeWrongArgType},
		{"out of range", `{"products":[1000000000000000]}`, CodeOutOfRange},
		{"not an object", `[1]`, CodeWrongArgType},
		{"malformed", `{"products":[1`, CodeInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/suppliers/1/products", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, string(tc.code), decodeError(t, rec).ErrorCode)
		})
	}
}

func TestHandlerDelete(t *testing.T) {
	h, repo := newTestRouter(t)
	doRequest(t, h, http.MethodPost, "/suppliers", tomBody)

	rec := doRequest(t, h, http.MethodDelete, "/suppliers/1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, repo.count())

	rec = doRequest(t, h, http.MethodDelete, "/suppliers/1", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, string(CodeNotFound), decodeError(t, rec).ErrorCode)
}

func TestHandlerPersistenceFailureHidesDetail(t *testing.T) {
	h, repo := newTestRouter(t)
	repo.insertErr = errBoom

	rec := doRequest(t, h, http.MethodPost, "/suppliers", tomBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, string(CodePersistence), body.ErrorCode)
	assert.NotContains(t, body.Message, "boom")
}
