package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
)

type saleResponse struct {
	Success bool                       `json:"success"`
	Data    *service.AllocationOutcome `json:"data"`
}

func TestSellEndpoint_Success(t *testing.T) {
	store := &memStore{}
	store.seed("7891058001421", "Neosaldina 30 Drágeas",
		&repository.Batch{Code: "LOT-1", Quantity: 10, ExpirationDate: futureDate(60)},
	)
	router := newTestRouter(store)

	rec := doJSON(router, http.MethodPost, "/products/sell",
		`{"code":"7891058001421","quantity":4}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp saleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, service.StatusSuccess, resp.Data.Status)
	assert.Equal(t, 4, resp.Data.DebitedTotal())
}

func TestSellEndpoint_PartialReportsShortfall(t *testing.T) {
	store := &memStore{}
	store.seed("7896006200021", "Dorflex 36 Comprimidos",
		&repository.Batch{Code: "LOT-1", Quantity: 3, ExpirationDate: futureDate(30)},
	)
	router := newTestRouter(store)

	rec := doJSON(router, http.MethodPost, "/products/sell",
		`{"code":"7896006200021","quantity":10}`)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp saleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, service.StatusPartial, resp.Data.Status)
	assert.Equal(t, 7, resp.Data.Shortfall)
}

func TestSellEndpoint_ExplicitBatchConflict(t *testing.T) {
	store := &memStore{}
	store.seed("7897595603706", "Torsilax 30 Comprimidos",
		&repository.Batch{Code: "SMALL", Quantity: 2, ExpirationDate: futureDate(30)},
	)
	router := newTestRouter(store)

	rec := doJSON(router, http.MethodPost, "/products/sell",
		`{"code":"7897595603706","quantity":5,"batch_code":"SMALL"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp saleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, service.StatusError, resp.Data.Status)
	assert.Empty(t, resp.Data.DebitedBatches)
}

func TestSellEndpoint_UnknownProduct(t *testing.T) {
	router := newTestRouter(&memStore{})

	rec := doJSON(router, http.MethodPost, "/products/sell",
		`{"code":"0000000000000","quantity":1}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSellEndpoint_ValidationErrors(t *testing.T) {
	router := newTestRouter(&memStore{})

	tests := []struct {
		name string
		body string
	}{
		{"missing code", `{"quantity":1}`},
		{"zero quantity", `{"code":"7891058001421","quantity":0}`},
		{"negative quantity", `{"code":"7891058001421","quantity":-2}`},
		{"malformed batch id", `{"code":"7891058001421","quantity":1,"batch_id":"not-a-uuid"}`},
		{"invalid json", `{"code":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(router, http.MethodPost, "/products/sell", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, fmt.Sprintf("body: %s", tt.body))
		})
	}
}
