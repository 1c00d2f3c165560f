package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuber-eats/nuber/pkg/testkit"
)

func TestHealth_OK(t *testing.T) {
	c := NewHealthController(testkit.NewDB(t))

	rec := httptest.NewRecorder()
	c.Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["database"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testkit.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	rec := httptest.NewRecorder()
	NewHealthController(db).Check(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
