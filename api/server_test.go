package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"example.com/finbook/services/ledger/config"
	"example.com/finbook/services/ledger/eventstore"
	"example.com/finbook/services/ledger/handlers"
	"example.com/finbook/services/ledger/models"
	"example.com/finbook/services/ledger/projections"
	"example.com/finbook/services/ledger/repositories"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	engine, err := projections.NewEngine()
	require.NoError(t, err)
	store := eventstore.NewGormStore(db, engine)

	transactionRepo := repositories.NewTransactionRepository(db)
	budgetRepo := repositories.NewBudgetRepository(db)
	lifeEventRepo := repositories.NewLifeEventRepository(db)

	cfg := config.Config{
		HTTPServerAddress: "127.0.0.1:0",
		HTTPServerTimeout: 5 * time.Second,
	}

	return NewServer(
		cfg,
		store,
		handlers.NewTransactionHandler(store, transactionRepo),
		handlers.NewBudgetHandler(store, budgetRepo),
		handlers.NewLifeEventHandler(store, lifeEventRepo),
		transactionRepo,
		budgetRepo,
		lifeEventRepo,
	)
}

func doJSON(t *testing.T, server *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	recorder := httptest.NewRecorder()
	server.Router().ServeHTTP(recorder, req)
	return recorder
}

func TestPing(t *testing.T) {
	server := setupTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/ping", nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "pong", recorder.Body.String())
}

func TestCreateAndListTransactions(t *testing.T) {
	server := setupTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":     "expense",
		"amount":   "42.50",
		"category": "groceries",
		"date":     "2026-08-20",
	}, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created models.TransactionProjection
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	require.Equal(t, "groceries", created.Category)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/transactions", nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var listed []models.TransactionProjection
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Equal(t, created.ID, listed[0].ID)
}

func TestCreateTransactionValidationStatus(t *testing.T) {
	server := setupTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":     "transfer",
		"amount":   "10",
		"category": "misc",
		"date":     "2026-08-20",
	}, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

// Retried POSTs with the same Idempotency-Key must not create a second
// transaction.
func TestIdempotencyKeyHeaderDeduplicates(t *testing.T) {
	server := setupTestServer(t)

	body := gin.H{
		"type":     "expense",
		"amount":   "12.34",
		"category": "groceries",
		"date":     "2026-08-20",
	}
	headers := map[string]string{idempotencyKeyHeader: "post-once"}

	first := doJSON(t, server, http.MethodPost, "/api/v1/transactions", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	second := doJSON(t, server, http.MethodPost, "/api/v1/transactions", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)

	var firstRow, secondRow models.TransactionProjection
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &firstRow))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &secondRow))
	require.Equal(t, firstRow.ID, secondRow.ID)

	recorder := doJSON(t, server, http.MethodGet, "/api/v1/transactions", nil, nil)
	var listed []models.TransactionProjection
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
}

func TestDuplicateBudgetReturnsConflict(t *testing.T) {
	server := setupTestServer(t)

	body := gin.H{"category": "groceries", "monthly_limit": "400"}

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/budgets", body, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	recorder = doJSON(t, server, http.MethodPost, "/api/v1/budgets", body, nil)
	require.Equal(t, http.StatusConflict, recorder.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	require.Equal(t, true, response["retryable"])
}

func TestAggregateEventsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/api/v1/transactions", gin.H{
		"type":     "income",
		"amount":   "500",
		"category": "salary",
		"date":     "2026-08-01",
	}, nil)
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created models.TransactionProjection
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))

	recorder = doJSON(t, server, http.MethodDelete, "/api/v1/transactions/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, recorder.Code)

	// The log keeps both events after the delete
	recorder = doJSON(t, server, http.MethodGet, "/api/v1/events/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var events []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &events))
	require.Len(t, events, 2)

	recorder = doJSON(t, server, http.MethodGet, "/api/v1/events/not-a-uuid", nil, nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
