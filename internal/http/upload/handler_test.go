package upload_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uploadHandler "github.com/MrJamesThe3rd/posrecon/internal/http/upload"
	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/redisconn"
	stagingstore "github.com/MrJamesThe3rd/posrecon/internal/staging/store"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
)

func line(idKey int, date string) string {
	return fmt.Sprintf("BIAL0128|TFS BLR Lounge-East Pier|%s|0:08:28|00IDB-%d|POS2|0|0|910|1|0|%d|NULL|38:00.6|6883", date, idKey, idKey)
}

func newRouter(t *testing.T, maxBytes int64) (http.Handler, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	svc := upload.NewService(importer.NewService(nil, nil), stagingstore.New(conn, nil), nil, nil, nil)

	router := chi.NewRouter()
	uploadHandler.NewHandler(svc, maxBytes).Routes(router)

	return router, mr
}

func multipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	return body
}

func TestHandler_Upload(t *testing.T) {
	type testCase struct {
		name       string
		content    string
		wantStatus int
		wantBody   map[string]any
	}

	tests := []testCase{
		{
			name:       "Success",
			content:    line(1, "9/13/24") + "\n" + line(2, "9/13/24"),
			wantStatus: http.StatusCreated,
			wantBody:   map[string]any{"status": "success", "staged": 2.0, "rejected": 0.0},
		},
		{
			name:       "PartialSuccess",
			content:    line(1, "9/13/24") + "\n" + line(2, "later"),
			wantStatus: http.StatusCreated,
			wantBody:   map[string]any{"status": "partial_success", "staged": 1.0, "rejected": 1.0},
		},
		{
			name:       "NothingAccepted",
			content:    line(1, "later"),
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"status": "failed", "staged": 0.0, "rejected": 1.0},
		},
		{
			name:       "SchemaError",
			content:    "STORE_CODE|STORE_DISPLAY_NAME|TRANS_DATE|TRANS_TIME\nBIAL0128|x|9/13/24|0:00\n",
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   map[string]any{"status": "failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newRouter(t, 1<<20)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, "export.txt", tt.content))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decode(t, rec)
			for k, v := range tt.wantBody {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestHandler_Upload_ErrorDiagnostics(t *testing.T) {
	router, _ := newRouter(t, 1<<20)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "../../etc/export.txt", line(1, "9/13/24")+"\n"+line(2, "later")))

	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "export.txt", body["filename"])

	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, 2.0, errs[0].(map[string]any)["line"])
}

func TestHandler_Upload_SchemaMissingColumns(t *testing.T) {
	router, _ := newRouter(t, 1<<20)

	content := "STORE_CODE|STORE_DISPLAY_NAME|TRANS_DATE|TRANS_TIME|TRANS_NO|DISCOUNT_HEADER|TAX_HEADER|ID_KEY\n"

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "x.txt", content))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []any{"net_sales_header_values"}, decode(t, rec)["missing_columns"])
}

func TestHandler_Upload_RawBody(t *testing.T) {
	router, _ := newRouter(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/upload?filename=raw.txt", strings.NewReader(line(1, "9/13/24")))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "raw.txt", decode(t, rec)["filename"])
}

func TestHandler_Upload_TooLarge(t *testing.T) {
	router, _ := newRouter(t, 16)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(line(1, "9/13/24")))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestHandler_Upload_StagingDown(t *testing.T) {
	router, mr := newRouter(t, 1<<20)
	mr.SetError("LOADING")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, multipartRequest(t, "x.txt", line(1, "9/13/24")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandler_Upload_EmptyBody(t *testing.T) {
	router, _ := newRouter(t, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/upload", http.NoBody)
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
