package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"

	"github.com/ginjaninja78/pallet-manifest/internal/config"
	"github.com/ginjaninja78/pallet-manifest/internal/importer"
	"github.com/ginjaninja78/pallet-manifest/internal/ingest"
	"github.com/ginjaninja78/pallet-manifest/internal/kvstore"
	"github.com/ginjaninja78/pallet-manifest/internal/manifest"
	"github.com/ginjaninja78/pallet-manifest/internal/session"
	"github.com/ginjaninja78/pallet-manifest/internal/settings"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zerolog.Nop()
	store := kvstore.NewMemoryStore()
	im := importer.New(
		ingest.NewReader(config.Default().CSV, logger),
		session.New(store, logger),
		settings.NewManager(store, logger),
		importer.Options{},
		logger,
	)
	return New(im, Options{MaxUploadMB: 1}, logger)
}

func upload(t *testing.T, s *Server, name, content string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

const manifestCSV = "Position,Position ident,BarCodeNumber,Position Detail,IdentNumber,Detail,Type,Weight,Unit,QTY,Pallet Number,Work Number\n" +
	"1,A,111,,ID1,,EP,5,kg,2,P 1,W1\n" +
	"2,B,222,,ID2,,PD,800,kg,2,P2,W1\n" +
	"3,C,333,,ID3,,MHL,,,1,,W1"

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestImportAndQuery(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "inbound.csv", manifestCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Source  string              `json:"source"`
		Summary types.ImportSummary `json:"summary"`
		Stats   struct {
			RowsRead int `json:"rowsRead"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "inbound.csv", resp.Source)
	assert.Equal(t, 3, resp.Stats.RowsRead)
	assert.Equal(t, 3, resp.Summary.TotalLines)

	rec = get(s, "/api/items")
	var items []types.CleanItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 3)

	rec = get(s, "/api/errors")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(s, "/api/pallets")
	var pallets []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pallets))
	require.Len(t, pallets, 3)
	assert.Equal(t, "P 1", pallets[0]["palletNumber"])
	assert.Equal(t, true, pallets[1]["overLimit"], "P2 weighs 1600 kg against the default 1000 kg")

	rec = get(s, "/api/pallets/P%201")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"identNumber":"ID1"`)

	rec = get(s, "/api/pallets/"+types.UnknownPallet)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = get(s, "/api/pallets/P9")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(s, "/api/report")
	assert.Contains(t, rec.Body.String(), `"rule":"max_pallet_weight"`)
}

func TestQueriesBeforeImport(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, "[]\n", get(s, "/api/items").Body.String())
	assert.Equal(t, http.StatusNotFound, get(s, "/api/summary").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/errors").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/pallets").Code)
	assert.Equal(t, http.StatusNotFound, get(s, "/api/export/items.xml").Code)
}

func TestImportMissingColumns(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "short.csv", "Position,QTY\n1,2")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"missingColumns":[`)
	assert.Equal(t, "[]\n", get(s, "/api/items").Body.String())
}

func TestImportRejectsBadUploads(t *testing.T) {
	s := newTestServer(t)

	rec := upload(t, s, "manifest.pdf", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("plain"))
	rec = httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)

	assert.JSONEq(t, `{"maxPalletWeightKg":1000}`, get(s, "/api/settings").Body.String())

	put := func(body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body)))
		return rec
	}

	rec := put(`{"maxPalletWeightKg":-20}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"maxPalletWeightKg":0}`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, put(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(`nope`).Code)
}

func TestExports(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, http.StatusOK, upload(t, s, "inbound.csv", manifestCSV).Code)

	rec := get(s, "/api/export/items.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="inbound_items_`)
	lines := strings.Split(rec.Body.String(), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, manifest.ColPosition, strings.Split(lines[0], ",")[0])

	rec = get(s, "/api/export/report.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Items", "Pallets", "Types", "Errors", "Findings"}, f.GetSheetList())

	rec = get(s, "/api/export/items.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<pallet n="1" number="P 1">`)
}

func TestImportWithOverflowingTotals(t *testing.T) {
	s := newTestServer(t)
	content := "Position,Position ident,BarCodeNumber,Position Detail,IdentNumber,Detail,Type,Weight,Unit,QTY,Pallet Number,Work Number\n" +
		"1,A,111,,ID1,,EP,1e200,kg,1e200,P-BIG,W1"

	rec := upload(t, s, "huge.csv", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotEmpty(t, rec.Body.String())

	var resp struct {
		Summary map[string]json.RawMessage `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "null", string(resp.Summary["totalWeightKg"]))
	assert.Equal(t, "1e+200", string(resp.Summary["totalQty"]))

	for _, path := range []string{"/api/summary", "/api/pallets"} {
		rec = get(s, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"totalWeightKg":null`, path)
	}

	rec = get(s, "/api/report")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rule":"max_pallet_weight"`)

	rec = get(s, "/api/export/report.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pallets")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "+Inf", rows[1][3])
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()

	s.writeJSON(rec, http.StatusOK, map[string]interface{}{"value": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestExportsNameFilesAfterRestoredImport(t *testing.T) {
	logger := zerolog.Nop()
	store := kvstore.NewMemoryStore()
	newServer := func() *Server {
		sess := session.New(store, logger)
		sess.Rehydrate(context.Background())
		im := importer.New(
			ingest.NewReader(config.Default().CSV, logger),
			sess,
			settings.NewManager(store, logger),
			importer.Options{},
			logger,
		)
		return New(im, Options{MaxUploadMB: 1}, logger)
	}

	require.Equal(t, http.StatusOK, upload(t, newServer(), "manifest-0412.csv", manifestCSV).Code)

	rec := get(newServer(), "/api/export/items.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="manifest-0412_items_`)
}

func TestShutdownWithoutStart(t *testing.T) {
	assert.NoError(t, newTestServer(t).Shutdown(context.Background()))
}
