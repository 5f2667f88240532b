package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemRouter() (*gin.Engine, *SystemHandler) {
	gin.SetMode(gin.TestMode)
	h := NewSystemHandler()
	r := gin.New()
	r.GET("/system/info", h.GetSystemInfo)
	r.GET("/system/ping", h.Ping)
	return r, h
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	r, h := newSystemRouter()
	h.startedAt = time.Now().Add(-90 * time.Second)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/info", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, serviceName, body.Data.Name)
	assert.Equal(t, buildVersion, body.Data.Version)
	assert.Equal(t, runtime.Version(), body.Data.GoVersion)
	assert.Equal(t, "1m30s", body.Data.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	r, _ := newSystemRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "pong", body.Data.Message)

	ts, err := time.Parse(time.RFC3339, body.Data.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}
