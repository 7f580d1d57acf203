package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/eof/models"
	"github.com/gewnthar/eof/services"
)

const (
	orbitID     = "S1A_OPER_AUX_POEORB_OPOD_20200121T120654_V20191231T225942_20200102T005942"
	productName = "S1A_IW_SLC__1SDV_20200101T050000_20200101T050027_030600_0381B2_ABCD"
)

type stubCatalog struct {
	ids []string
	err error
}

func (s stubCatalog) Query(_ context.Context, pt models.ProductType, mission string, _, _ time.Time) (map[string]models.CatalogEntry, error) {
	out := map[string]models.CatalogEntry{}
	for _, id := range s.ids {
		out["http://cat/"+id] = models.CatalogEntry{Key: "http://cat/" + id, Identifier: id, URL: "http://cat/" + id, Mission: mission, ProductType: pt}
	}
	return out, s.err
}

type catalogFunc func(models.ProductType, string) map[string]models.CatalogEntry

func (f catalogFunc) Query(_ context.Context, pt models.ProductType, mission string, _, _ time.Time) (map[string]models.CatalogEntry, error) {
	return f(pt, mission), nil
}

type stubTransfer struct{}

func (stubTransfer) Download(_ context.Context, e models.CatalogEntry) (string, error) {
	return "/out/" + e.Identifier, nil
}

func (stubTransfer) DownloadAll(_ context.Context, entries map[string]models.CatalogEntry) ([]string, error) {
	var paths []string
	for _, e := range entries {
		paths = append(paths, "/out/"+e.Identifier)
	}
	return paths, nil
}

type stubLedger struct{ rows []models.OrbitDownload }

func (l *stubLedger) RecordDownload(d models.OrbitDownload) error {
	l.rows = append(l.rows, d)
	return nil
}

func (l *stubLedger) ListDownloads() ([]models.OrbitDownload, error) { return l.rows, nil }

func newTestServer(t *testing.T, svc *services.OrbitService) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	(&OrbitHandler{Service: svc}).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postSelect(t *testing.T, srv *httptest.Server, body any) (*http.Response, map[string]any) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/orbits/select", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestSelectOrbitHandler(t *testing.T) {
	ledger := &stubLedger{}
	srv := newTestServer(t, &services.OrbitService{
		Catalog:  stubCatalog{ids: []string{orbitID}},
		Transfer: stubTransfer{},
		Ledger:   ledger,
	})

	resp, out := postSelect(t, srv, models.SelectOrbitRequest{Product: productName + ".SAFE"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, productName, out["product"])
	assert.Equal(t, orbitID, out["orbit"].(map[string]any)["identifier"])
	assert.Nil(t, out["local_path"])
	assert.Empty(t, ledger.rows)

	resp, out = postSelect(t, srv, models.SelectOrbitRequest{Product: productName, Download: true})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/out/"+orbitID, out["local_path"])
	assert.Len(t, ledger.rows, 1)
}

func TestSelectOrbitHandler_DuplicateListings(t *testing.T) {
	ledger := &stubLedger{}
	srv := newTestServer(t, &services.OrbitService{
		Catalog: catalogFunc(func(pt models.ProductType, mission string) map[string]models.CatalogEntry {
			out := map[string]models.CatalogEntry{}
			for _, key := range []string{"http://cat/" + orbitID + ".EOF.zip", "http://cat/" + orbitID + ".EOF"} {
				out[key] = models.CatalogEntry{Key: key, Identifier: orbitID, URL: key, Mission: mission, ProductType: pt}
			}
			return out
		}),
		Transfer: stubTransfer{},
		Ledger:   ledger,
	})

	for i := 0; i < 20; i++ {
		resp, out := postSelect(t, srv, models.SelectOrbitRequest{Product: productName})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "http://cat/"+orbitID+".EOF", out["orbit"].(map[string]any)["key"])
	}

	resp, out := postSelect(t, srv, models.SelectOrbitRequest{Product: productName, Download: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/out/"+orbitID, out["local_path"])
	require.Len(t, ledger.rows, 1)
}

func TestSelectOrbitHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		catalog stubCatalog
		req     models.SelectOrbitRequest
		status  int
	}{
		{"missing product", stubCatalog{}, models.SelectOrbitRequest{}, http.StatusBadRequest},
		{"bad product", stubCatalog{}, models.SelectOrbitRequest{Product: "foo"}, http.StatusBadRequest},
		{"bad product type", stubCatalog{}, models.SelectOrbitRequest{Product: productName, ProductType: "AUX_X"}, http.StatusBadRequest},
		{"nothing covers", stubCatalog{}, models.SelectOrbitRequest{Product: productName}, http.StatusNotFound},
		{"catalog failure", stubCatalog{err: errors.New("down")}, models.SelectOrbitRequest{Product: productName}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &services.OrbitService{Catalog: tc.catalog, Transfer: stubTransfer{}})
			resp, out := postSelect(t, srv, tc.req)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, out["error"])
		})
	}
}

func TestSelectOrbitHandler_MethodAndBody(t *testing.T) {
	srv := newTestServer(t, &services.OrbitService{Catalog: stubCatalog{}})

	resp, err := http.Get(srv.URL + "/api/orbits/select")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/orbits/select", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListDownloadsHandler(t *testing.T) {
	srv := newTestServer(t, &services.OrbitService{})
	resp, err := http.Get(srv.URL + "/api/orbits/downloads")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	ledger := &stubLedger{rows: []models.OrbitDownload{{Identifier: orbitID, Mission: "S1A"}}}
	srv = newTestServer(t, &services.OrbitService{Ledger: ledger})
	resp, err = http.Get(srv.URL + "/api/orbits/downloads")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rows []models.OrbitDownload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, orbitID, rows[0].Identifier)
}

func TestHealthHandler(t *testing.T) {
	srv := newTestServer(t, &services.OrbitService{})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
