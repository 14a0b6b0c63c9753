package transaction_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	txHandler "github.com/MrJamesThe3rd/posrecon/internal/http/transaction"
	"github.com/MrJamesThe3rd/posrecon/internal/transaction"
)

func TestHandler_Get(t *testing.T) {
	type testCase struct {
		name       string
		path       string
		setupMock  func(m *transaction.MockRepository)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "Found",
			path: "/1398249674",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetByIDKey(gomock.Any(), int64(1398249674)).Return(&transaction.Transaction{
					ID:                   3,
					StoreCode:            "BIAL0128",
					TransDate:            time.Date(2024, 9, 13, 0, 0, 0, 0, time.UTC),
					NetSalesHeaderValues: decimal.NewFromInt(910),
					IDKey:                1398249674,
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "NotFound",
			path: "/42",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetByIDKey(gomock.Any(), int64(42)).Return(nil, transaction.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "StoreFailure",
			path: "/42",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().GetByIDKey(gomock.Any(), int64(42)).Return(nil, errors.New("conn refused"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "InvalidKey",
			path:       "/abc",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := transaction.NewMockRepository(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			router := chi.NewRouter()
			txHandler.NewHandler(transaction.NewService(repo)).Routes(router)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var body map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, "BIAL0128", body["store_code"])
				assert.Equal(t, "2024-09-13", body["trans_date"])
				assert.Equal(t, "910", body["net_sales_header_values"])
				assert.Nil(t, body["tender"])
			}
		})
	}
}
