package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"
	"wallet-service/internal/core/ports/mocks"
	"wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testWalletID = "3f1c2a9e-7f6d-4b0a-9a57-1f6b2c8d4e10"

// decimalEq matches a decimal.Decimal by value, so 50 equals 50.00.
type decimalEq struct{ want decimal.Decimal }

func (m decimalEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "is decimal " + m.want.String() }

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRouter(t *testing.T) (*gin.Engine, *mocks.MockWalletService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockWalletService(ctrl)
	r := SetupRouter(RouterDeps{
		WalletSvc: svc,
		Logger:    zerolog.Nop(),
	})
	return r, svc
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["request_id"])
	assert.NotEmpty(t, resp["timestamp"])
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	msg, _ := resp["message"].(string)
	return code, msg
}

// --- CreateWallet ---

func TestCreateWallet_Success(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().CreateWallet(gomock.Any(), decimalEq{dec("100")}).
		Return(&domain.Wallet{ID: testWalletID, Balance: dec("100")}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/wallets", `{"amount": 100.00}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeData(t, w)
	assert.Equal(t, testWalletID, data["wallet_id"])
	assert.Equal(t, "100.00", data["balance"])
}

func TestCreateWallet_StringAmountAndZero(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().CreateWallet(gomock.Any(), decimalEq{decimal.Zero}).
		Return(&domain.Wallet{ID: testWalletID, Balance: decimal.Zero}, nil)

	w := doJSON(r, http.MethodPost, "/api/v1/wallets", `{"amount": "0"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "0.00", decodeData(t, w)["balance"])
}

func TestCreateWallet_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing amount", `{}`},
		{"negative", `{"amount": -1}`},
		{"too many decimals", `{"amount": 1.005}`},
		{"too large", `{"amount": 10000000000.00}`},
		{"not a number", `{"amount": "abc"}`},
		{"unknown field", `{"amount": 1, "currency": "USD"}`},
		{"malformed json", `{"amount":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t)

			w := doJSON(r, http.MethodPost, "/api/v1/wallets", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			code, _ := decodeError(t, w)
			assert.Equal(t, "WAL_001", code)
		})
	}
}

func TestCreateWallet_ServiceError(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().CreateWallet(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrDataIntegrity(errors.New("check violation")))

	w := doJSON(r, http.MethodPost, "/api/v1/wallets", `{"amount": 5}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	code, msg := decodeError(t, w)
	assert.Equal(t, "SYS_003", code)
	assert.NotContains(t, msg, "check violation")
}

// --- PerformOperation ---

func TestPerformOperation_KindAliases(t *testing.T) {
	tests := []struct {
		opType string
		kind   domain.OperationKind
	}{
		{"DEPOSIT", domain.OperationCredit},
		{"CREDIT", domain.OperationCredit},
		{"WITHDRAW", domain.OperationDebit},
		{"DEBIT", domain.OperationDebit},
	}

	for _, tt := range tests {
		t.Run(tt.opType, func(t *testing.T) {
			r, svc := newTestRouter(t)

			svc.EXPECT().PerformOperation(gomock.Any(), testWalletID, tt.kind, decimalEq{dec("50")}).
				Return(&domain.Wallet{ID: testWalletID, Balance: dec("150")}, nil)

			body := fmt.Sprintf(`{"operation_type": %q, "amount": 50}`, tt.opType)
			w := doJSON(r, http.MethodPost, "/api/v1/wallets/"+testWalletID+"/operation", body)

			assert.Equal(t, http.StatusOK, w.Code)
			data := decodeData(t, w)
			assert.Equal(t, testWalletID, data["wallet_id"])
			assert.Equal(t, "150.00", data["balance"])
		})
	}
}

func TestPerformOperation_UnknownKind(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/wallets/"+testWalletID+"/operation",
		`{"operation_type": "TRANSFER", "amount": 50}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, msg := decodeError(t, w)
	assert.Equal(t, "WAL_003", code)
	assert.Equal(t, "Invalid Operation Type", msg)
}

func TestPerformOperation_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative amount", `{"operation_type": "DEPOSIT", "amount": -10.00}`},
		{"zero amount", `{"operation_type": "DEPOSIT", "amount": 0}`},
		{"missing amount", `{"operation_type": "DEPOSIT"}`},
		{"missing operation type", `{"amount": 10}`},
		{"three decimals", `{"operation_type": "DEPOSIT", "amount": 10.001}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No service expectation: rejected before the engine.
			r, _ := newTestRouter(t)

			w := doJSON(r, http.MethodPost, "/api/v1/wallets/"+testWalletID+"/operation", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			code, _ := decodeError(t, w)
			assert.Equal(t, "WAL_001", code)
		})
	}
}

func TestPerformOperation_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperror.ErrWalletNotFound(), http.StatusNotFound, "WAL_002"},
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusBadRequest, "WAL_004"},
		{"below minimum", apperror.Validation("amount is below the minimum operation amount of 1.00"), http.StatusBadRequest, "WAL_001"},
		{"lock timeout", apperror.ErrLockTimeout(errors.New("55P03")), http.StatusServiceUnavailable, "SYS_002"},
		{"internal", apperror.InternalError(errors.New("conn reset")), http.StatusInternalServerError, "SYS_001"},
		{"unclassified", errors.New("raw"), http.StatusInternalServerError, "SYS_000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := newTestRouter(t)

			svc.EXPECT().PerformOperation(gomock.Any(), testWalletID, domain.OperationDebit, gomock.Any()).
				Return(nil, tt.err)

			w := doJSON(r, http.MethodPost, "/api/v1/wallets/"+testWalletID+"/operation",
				`{"operation_type": "WITHDRAW", "amount": 1000.00}`)

			assert.Equal(t, tt.status, w.Code)
			code, _ := decodeError(t, w)
			assert.Equal(t, tt.code, code)
		})
	}
}

// --- GetBalance ---

func TestGetBalance_Success(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), testWalletID).
		Return(&domain.Wallet{ID: testWalletID, Balance: dec("12.5")}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/"+testWalletID+"/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12.50", decodeData(t, w)["balance"])
}

func TestGetBalance_NotFound(t *testing.T) {
	r, svc := newTestRouter(t)

	svc.EXPECT().GetWallet(gomock.Any(), "missing").Return(nil, apperror.ErrWalletNotFound())

	w := doJSON(r, http.MethodGet, "/api/v1/wallets/missing/balance", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	code, msg := decodeError(t, w)
	assert.Equal(t, "WAL_002", code)
	assert.Equal(t, "Wallet Not Found", msg)
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodDelete, "/api/v1/accounts", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "WAL_005", code)
}

// --- Health & Swagger ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		pingErr  error
		status   int
		expected string
	}{
		{"healthy", nil, http.StatusOK, "healthy"},
		{"degraded", errors.New("connection refused"), http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			checker := mocks.NewMockHealthChecker(ctrl)
			checker.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)
			checker.EXPECT().Name().Return("postgresql").AnyTimes()

			r := SetupRouter(RouterDeps{
				WalletSvc:      mocks.NewMockWalletService(ctrl),
				HealthCheckers: []ports.HealthChecker{checker},
				Logger:         zerolog.Nop(),
			})

			w := doJSON(r, http.MethodGet, "/health", "")

			assert.Equal(t, tt.status, w.Code)
			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp["status"])
			deps := resp["dependencies"].(map[string]interface{})
			assert.Contains(t, deps, "postgresql")
		})
	}
}

func TestSwagger(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/swagger/spec", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/wallets/{wallet_id}/operation")

	w = doJSON(r, http.MethodGet, "/swagger", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}
