package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	posHttp "github.com/MrJamesThe3rd/posrecon/internal/http"
	"github.com/MrJamesThe3rd/posrecon/internal/http/health"
	reconcileHandler "github.com/MrJamesThe3rd/posrecon/internal/http/reconcile"
	txHandler "github.com/MrJamesThe3rd/posrecon/internal/http/transaction"
	uploadHandler "github.com/MrJamesThe3rd/posrecon/internal/http/upload"
	"github.com/MrJamesThe3rd/posrecon/internal/importer"
	"github.com/MrJamesThe3rd/posrecon/internal/metrics"
	"github.com/MrJamesThe3rd/posrecon/internal/reconcile"
	"github.com/MrJamesThe3rd/posrecon/internal/redisconn"
	stagingstore "github.com/MrJamesThe3rd/posrecon/internal/staging/store"
	"github.com/MrJamesThe3rd/posrecon/internal/status"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
	"github.com/MrJamesThe3rd/posrecon/internal/upload"
)

func newRouter(t *testing.T) (http.Handler, *transaction.MockRepository) {
	t.Helper()

	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)

	reg := prometheus.NewRegistry()
	tracker := status.NewTracker()
	staging := stagingstore.New(conn, nil)

	uploadSvc := upload.NewService(importer.NewService(nil, nil), staging, tracker, metrics.NewIngest(reg), nil)

	router := posHttp.New(posHttp.Params{
		Transactions: txHandler.NewHandler(transaction.NewService(repo)),
		Upload:       uploadHandler.NewHandler(uploadSvc, 1<<20),
		Reconcile:    reconcileHandler.NewHandler(reconcileHandler.NewMockRunner(ctrl), staging, tracker),
		Health:       health.NewHandler(map[string]health.Check{"staging": conn.Ping, "database": func(context.Context) error { return nil }}),
		Gatherer:     reg,
		CORSOrigins:  []string{"http://localhost:3000"},
	})

	return router, repo
}

func TestRouter_Routes(t *testing.T) {
	router, repo := newRouter(t)
	repo.EXPECT().GetByIDKey(gomock.Any(), int64(42)).Return(nil, transaction.ErrNotFound)

	type testCase struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "Upload",
			method:     http.MethodPost,
			path:       "/api/v1/transactions/upload?filename=a.txt",
			body:       "BIAL0128|TFS BLR Lounge-East Pier|9/13/24|0:08:28|00IDB-1|POS2|0|0|910|1|0|1|NULL|38:00.6|6883",
			wantStatus: http.StatusCreated,
		},
		{name: "Lookup", method: http.MethodGet, path: "/api/v1/transactions/42", wantStatus: http.StatusNotFound},
		{name: "Status", method: http.MethodGet, path: "/api/v1/status", wantStatus: http.StatusOK},
		{name: "Health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK},
		{name: "Metrics", method: http.MethodGet, path: "/metrics", wantStatus: http.StatusOK},
		{name: "Unknown", method: http.MethodGet, path: "/api/v1/nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "text/plain")

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_MetricsExposeUploads(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/upload",
		strings.NewReader("BIAL0128|x|9/13/24|0:08:28|00IDB-1|POS2|0|0|910|1|0|1|NULL|38:00.6|6883"))
	req.Header.Set("Content-Type", "text/plain")
	router.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `posrecon_ingest_uploads_total{outcome="success"} 1`)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/status", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SyncOutlivesRequestTimeout(t *testing.T) {
	mr := miniredis.RunT(t)

	conn, err := redisconn.New(redisconn.Options{Addr: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	runner := reconcileHandler.NewMockRunner(ctrl)
	staging := stagingstore.New(conn, nil)

	slow := 200 * time.Millisecond

	runner.EXPECT().RunOnce(gomock.Any()).DoAndReturn(func(context.Context) (reconcile.Result, error) {
		time.Sleep(slow)
		return reconcile.Result{Synced: 1}, nil
	})
	repo.EXPECT().GetByIDKey(gomock.Any(), int64(42)).DoAndReturn(func(ctx context.Context, _ int64) (*transaction.Transaction, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	router := posHttp.New(posHttp.Params{
		Transactions:   txHandler.NewHandler(transaction.NewService(repo)),
		Upload:         uploadHandler.NewHandler(nil, 1<<20),
		Reconcile:      reconcileHandler.NewHandler(runner, staging, status.NewTracker()),
		Health:         health.NewHandler(nil),
		RequestTimeout: 20 * time.Millisecond,
		SyncTimeout:    5 * time.Second,
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/42", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "request timed out")
}
