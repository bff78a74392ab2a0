package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/palmdb/pkg/pdb"
)

func newTestEcho(cfg Config) (*echo.Echo, *DatabaseStore) {
	store := NewDatabaseStore()
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	server := NewServer(store, NewMetrics(), cfg)
	e := echo.New()
	server.Register(e)
	return e, store
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, mimeOctetStream)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func sampleContainer(t *testing.T) []byte {
	t.Helper()
	db := pdb.NewGeneric()
	db.Name = "Address DB"
	db.Type = "DATA"
	db.Creator = "addr"
	db.CreationTime = time.Date(2000, time.June, 1, 9, 30, 0, 0, time.UTC)
	db.SetAppInfo(pdb.GenericBlock{Data: []byte("cats")})
	db.SetSortInfo(pdb.GenericBlock{Data: []byte{9, 9}})
	db.Append(
		pdb.GenericRecord{Attrs: pdb.AttrDirty.WithCategory(2), Data: []byte("Alice")},
		pdb.GenericRecord{Attrs: 0, Data: []byte("Bob")},
	)
	raw, err := pdb.Encode(db, pdb.WriteOptions{Location: time.UTC})
	require.NoError(t, err)
	return raw
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestDatabaseLifecycle(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(Config{})
	raw := sampleContainer(t)

	created := do(t, e, http.MethodPost, "/v1/databases?filename=dir/address.pdb", raw)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	obj := decodeObject(t, created)
	id, _ := obj["id"].(string)
	require.True(t, strings.HasPrefix(id, "pdb_"), id)
	require.Equal(t, "database", obj["object"])
	require.Equal(t, "address.pdb", obj["filename"])
	require.Equal(t, "Address DB", obj["name"])
	require.EqualValues(t, 2, obj["num_records"])
	require.NotContains(t, obj, "records")

	count, size := store.Stats()
	require.Equal(t, 1, count)
	require.Equal(t, int64(len(raw)), size)

	list := do(t, e, http.MethodGet, "/v1/databases", nil)
	require.Equal(t, http.StatusOK, list.Code)
	var listed DatabaseList
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &listed))
	require.Len(t, listed.Data, 1)
	require.Equal(t, id, listed.Data[0].ID)

	got := do(t, e, http.MethodGet, "/v1/databases/"+id+"?limit=1", nil)
	require.Equal(t, http.StatusOK, got.Code)
	detail := decodeObject(t, got)
	require.Len(t, detail["records"], 1)
	require.Equal(t, true, detail["records_truncated"])

	record := do(t, e, http.MethodGet, "/v1/databases/"+id+"/records/0", nil)
	require.Equal(t, http.StatusOK, record.Code)
	require.Equal(t, "Alice", record.Body.String())
	require.Equal(t, "2", record.Header().Get("X-Pdb-Category"))
	require.Equal(t, "66", record.Header().Get("X-Pdb-Attributes"))

	file := do(t, e, http.MethodGet, "/v1/databases/"+id+"/file", nil)
	require.Equal(t, http.StatusOK, file.Code)
	require.Equal(t, raw, file.Body.Bytes())
	require.Contains(t, file.Header().Get("Content-Disposition"), `filename="address.pdb"`)

	deleted := do(t, e, http.MethodDelete, "/v1/databases/"+id, nil)
	require.Equal(t, http.StatusOK, deleted.Code)
	require.Contains(t, deleted.Body.String(), `"deleted":true`)

	gone := do(t, e, http.MethodGet, "/v1/databases/"+id, nil)
	require.Equal(t, http.StatusNotFound, gone.Code)
	require.Contains(t, gone.Body.String(), "not_found_error")
}

func TestFileEpochOverride(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(Config{})
	created := do(t, e, http.MethodPost, "/v1/databases", sampleContainer(t))
	require.Equal(t, http.StatusCreated, created.Code)
	id := decodeObject(t, created)["id"].(string)

	file := do(t, e, http.MethodGet, "/v1/databases/"+id+"/file?epoch=unix", nil)
	require.Equal(t, http.StatusOK, file.Code)
	idx, err := pdb.ReadIndex(file.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, pdb.EpochUnix, idx.CreationEpoch)

	bad := do(t, e, http.MethodGet, "/v1/databases/"+id+"/file?epoch=mars", nil)
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(Config{MaxUploadBytes: 200})
	raw := sampleContainer(t)

	tests := []struct {
		name    string
		body    []byte
		status  int
		errType string
	}{
		{"empty", []byte{}, http.StatusBadRequest, "invalid_request_error"},
		{"truncated header", raw[:40], http.StatusUnprocessableEntity, "invalid_container_error"},
		{"truncated record", raw[:len(raw)-4], http.StatusUnprocessableEntity, "invalid_container_error"},
		{"too large", bytes.Repeat([]byte{0}, 201), http.StatusRequestEntityTooLarge, "too_large_error"},
	}
	for _, tc := range tests {
		rec := do(t, e, http.MethodPost, "/v1/databases", tc.body)
		require.Equal(t, tc.status, rec.Code, tc.name)
		require.Contains(t, rec.Body.String(), tc.errType, tc.name)
	}

	count, _ := store.Stats()
	require.Zero(t, count)
}

func TestRecordErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(Config{})
	created := do(t, e, http.MethodPost, "/v1/databases", sampleContainer(t))
	id := decodeObject(t, created)["id"].(string)

	require.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/v1/databases/"+id+"/records/2", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, e, http.MethodGet, "/v1/databases/"+id+"/records/-1", nil).Code)
	require.Equal(t, http.StatusBadRequest, do(t, e, http.MethodGet, "/v1/databases/"+id+"?limit=x", nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, "/v1/databases/pdb_missing/records/0", nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, e, http.MethodDelete, "/v1/databases/pdb_missing", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(Config{})
	require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/v1/databases", sampleContainer(t)).Code)
	require.Equal(t, http.StatusUnprocessableEntity, do(t, e, http.MethodPost, "/v1/databases", []byte("nope")).Code)

	rec := do(t, e, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, want := range []string{
		`palmdb_uploads_total{status="success"} 1`,
		`palmdb_uploads_total{status="error"} 1`,
		`palmdb_stored_databases 1`,
		`palmdb_http_requests_total{route="create",status_code="201"} 1`,
		`palmdb_http_requests_total{route="create",status_code="422"} 1`,
		"go_goroutines",
		"go_info",
	} {
		require.Contains(t, body, want)
	}
}

func TestStrictUploadWithGenericDecoders(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(Config{Strict: true})
	rec := do(t, e, http.MethodPost, "/v1/databases", sampleContainer(t))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotContains(t, decodeObject(t, rec), "diagnostics")
}

func TestStoreListOrder(t *testing.T) {
	t.Parallel()

	s := NewDatabaseStore()
	base := time.Unix(1000, 0)
	second := s.Save(Entry{CreatedAt: base.Add(time.Second), Size: 5, DB: pdb.NewGeneric()})
	first := s.Save(Entry{CreatedAt: base, Size: 7, DB: pdb.NewGeneric()})

	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, first.ID, list[0].ID)
	require.Equal(t, second.ID, list[1].ID)

	require.True(t, s.Delete(first.ID))
	require.False(t, s.Delete(first.ID))
	count, size := s.Stats()
	require.Equal(t, 1, count)
	require.Equal(t, int64(5), size)
}
