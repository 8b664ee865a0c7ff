package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hucha-app/hucha/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return NewServer(store, nil, []byte("test-secret"), nil)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func registerAndLogin(t *testing.T, s *Server, email, groupID string) string {
	t.Helper()

	rec := doJSON(t, s, http.MethodPost, "/register", "", gin.H{
		"name":     "Cata",
		"email":    email,
		"password": "secret1",
		"group_id": groupID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/login", "", gin.H{
		"email":    email,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, _ := decodeJSON(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s := setupTestServer(t)
	registerAndLogin(t, s, "cata@example.com", "")

	rec := doJSON(t, s, http.MethodPost, "/register", "", gin.H{
		"name":     "Cata otra vez",
		"email":    "cata@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := setupTestServer(t)
	registerAndLogin(t, s, "cata@example.com", "")

	rec := doJSON(t, s, http.MethodPost, "/login", "", gin.H{
		"email":    "cata@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := setupTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/api/transactions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTransactionLifecycle(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Alquiler",
		"amount":      "850000.00",
		"category":    "Casa",
		"date":        future,
		"kind":        "expense",
		"shared":      true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeJSON(t, rec)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "850000", created["amount"])
	assert.Equal(t, "pending", created["status"])

	rec = doJSON(t, s, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed, _ := decodeJSON(t, rec)["transactions"].([]any)
	assert.Len(t, listed, 1)

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/transactions/%s/pay", id), token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "paid", decodeJSON(t, rec)["status"])

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPastDatedTransactionRecordedPaid(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	past := time.Now().AddDate(0, 0, -3).Format("2006-01-02")
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Supermercado",
		"amount":      "45000",
		"category":    "Comida",
		"date":        past,
		"kind":        "expense",
		"shared":      true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "paid", decodeJSON(t, rec)["status"])
}

func TestCreateTransactionValidation(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Alquiler",
		"amount":      "-10",
		"date":        "2026-03-15",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Alquiler",
		"amount":      "10",
		"date":        "15/03/2026",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayVirtualOccurrencePromotes(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Internet",
		"amount":      "30000",
		"category":    "Casa",
		"date":        "2026-01-10",
		"kind":        "expense",
		"shared":      true,
		"recurring":   true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sourceID, _ := decodeJSON(t, rec)["id"].(string)

	virtualID := fmt.Sprintf("virtual-%s-2026-04-10", sourceID)

	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+virtualID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	virtual := decodeJSON(t, rec)
	assert.Equal(t, true, virtual["virtual"])
	assert.Equal(t, "pending", virtual["status"])

	rec = doJSON(t, s, http.MethodPost, fmt.Sprintf("/api/transactions/%s/pay", virtualID), token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	promoted := decodeJSON(t, rec)
	assert.Equal(t, "paid", promoted["status"])
	assert.NotEqual(t, virtualID, promoted["id"])

	// Paying an occurrence never mutates the recurring source.
	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+sourceID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeJSON(t, rec)["recurring"])
}

func TestVirtualOccurrenceReadOnly(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	rec := doJSON(t, s, http.MethodPut, "/api/transactions/virtual-abc-2026-04-10", token, gin.H{
		"description": "x",
		"amount":      "10",
		"date":        "2026-04-10",
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/virtual-abc-2026-04-10", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAnalyticsSummary(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	for _, req := range []gin.H{
		{"description": "Sueldo", "amount": "3000", "date": yesterday, "kind": "income", "shared": true},
		{"description": "Supermercado", "amount": "1600", "category": "Comida", "date": yesterday, "kind": "expense", "shared": true},
		{"description": "Plazo fijo", "amount": "200", "date": yesterday, "kind": "saving", "shared": true},
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := doJSON(t, s, http.MethodGet, "/api/analytics/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeJSON(t, rec)
	assert.Equal(t, "3000", summary["income"])
	assert.Equal(t, "1600", summary["expenses"])
	assert.Equal(t, "200", summary["savings"])
	assert.Equal(t, "1200", summary["balance"])
}

func TestMemberApprovalFlow(t *testing.T) {
	s := setupTestServer(t)
	adminToken := registerAndLogin(t, s, "cata@example.com", "familia")
	memberToken := registerAndLogin(t, s, "lu@example.com", "familia")

	rec := doJSON(t, s, http.MethodGet, "/api/members", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	members, _ := decodeJSON(t, rec)["members"].([]any)
	require.Len(t, members, 2)

	var pendingID string
	for _, raw := range members {
		m := raw.(map[string]any)
		if m["status"] == "pending" {
			pendingID, _ = m["id"].(string)
		}
	}
	require.NotEmpty(t, pendingID)

	// Pending members cannot administer the group.
	rec = doJSON(t, s, http.MethodPost, "/api/members/"+pendingID+"/approve", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/members/"+pendingID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodGet, "/api/me", memberToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", decodeJSON(t, rec)["status"])
}

func TestCategoriesCRUD(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	rec := doJSON(t, s, http.MethodPost, "/api/categories", token, gin.H{
		"name": "Mascotas", "icon": "🐾", "color": "#FFAA00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decodeJSON(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = doJSON(t, s, http.MethodPut, "/api/categories/"+id, token, gin.H{
		"name": "Animales", "icon": "🐾", "color": "#FFAA00",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRowsHiddenAcrossGroups(t *testing.T) {
	s := setupTestServer(t)
	owner := registerAndLogin(t, s, "cata@example.com", "familia")
	outsider := registerAndLogin(t, s, "vecino@example.com", "otros")

	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", owner, gin.H{
		"description": "Alquiler",
		"amount":      "850000.00",
		"category":    "Casa",
		"date":        future,
		"kind":        "expense",
		"shared":      true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	txnID, _ := decodeJSON(t, rec)["id"].(string)

	rec = doJSON(t, s, http.MethodPost, "/api/categories", owner, gin.H{
		"name": "Mascotas", "icon": "🐾", "color": "#FFAA00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	catID, _ := decodeJSON(t, rec)["id"].(string)

	// Another group's member cannot address the rows by id.
	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+txnID, outsider, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/transactions/"+txnID, outsider, gin.H{
		"description": "Robado",
		"amount":      "1.00",
		"date":        future,
		"kind":        "expense",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/transactions/"+txnID+"/pay", outsider, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/transactions/"+txnID, outsider, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodPut, "/api/categories/"+catID, outsider, gin.H{
		"name": "Ajeno", "icon": "🐾", "color": "#FFAA00",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/api/categories/"+catID, outsider, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The owner's rows came through untouched.
	rec = doJSON(t, s, http.MethodGet, "/api/transactions/"+txnID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decodeJSON(t, rec)["status"])
	assert.Equal(t, "Alquiler", decodeJSON(t, rec)["description"])
}

func TestIndividualTransactionVisibleToPayer(t *testing.T) {
	s := setupTestServer(t)
	token := registerAndLogin(t, s, "cata@example.com", "familia")

	future := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	rec := doJSON(t, s, http.MethodPost, "/api/transactions", token, gin.H{
		"description": "Cine",
		"amount":      "12000.00",
		"category":    "Ocio",
		"date":        future,
		"kind":        "expense",
		"shared":      false,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Individual entries carry no group id yet still show up in the
	// payer's own listing.
	rec = doJSON(t, s, http.MethodGet, "/api/transactions", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed, _ := decodeJSON(t, rec)["transactions"].([]any)
	require.Len(t, listed, 1)
	row, _ := listed[0].(map[string]any)
	assert.Equal(t, "Cine", row["description"])
	assert.Equal(t, false, row["shared"])
}
