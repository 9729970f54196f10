package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
)

func TestCatalogLookupEndpoint(t *testing.T) {
	router := newTestRouter(&memStore{})

	rec := doJSON(router, http.MethodGet, "/catalog/7891058001421", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data *catalog.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Neosaldina 30 Drágeas", resp.Data.Name)

	rec = doJSON(router, http.MethodGet, "/catalog/0000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogSearchEndpoint(t *testing.T) {
	router := newTestRouter(&memStore{})

	rec := doJSON(router, http.MethodGet, "/catalog/search?q=dorflex", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []catalog.Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "7896006200021", resp.Data[0].Code)

	// Missing query parameter
	rec = doJSON(router, http.MethodGet, "/catalog/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
