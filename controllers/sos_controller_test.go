package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"lifeline/models"
	"lifeline/services"
	"lifeline/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLocator struct {
	loc models.LocationSample
}

func (l *fixedLocator) Current() *models.LocationSample {
	sample := l.loc
	return &sample
}

func newSOSRouter(t *testing.T) (*gin.Engine, *services.CountdownService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemoryStore()
	locator := &fixedLocator{loc: models.LocationSample{Latitude: 21.03, Longitude: 105.85}}
	countdown := services.NewCountdownService(st, locator, services.NewAlertService(nil), nil, nil, nil, services.CountdownConfig{
		Duration: time.Hour,
		Tick:     time.Second,
		Cooldown: time.Hour,
	})
	require.NoError(t, countdown.Start(context.Background()))
	t.Cleanup(countdown.Stop)

	sc := NewSOSController(countdown)
	router := gin.New()
	router.POST("/sos", sc.Trigger)
	router.POST("/sos/confirm", sc.Confirm)
	router.POST("/sos/cancel", sc.Cancel)
	router.GET("/sos", sc.Status)
	return router, countdown
}

func countdownStatus(t *testing.T, body []byte) models.CountdownStatus {
	t.Helper()
	var resp struct {
		Data models.CountdownStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Data
}

func TestSOSTriggerConfirmFlow(t *testing.T) {
	router, _ := newSOSRouter(t)

	rec := doJSON(router, http.MethodPost, "/sos", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	status := countdownStatus(t, rec.Body.Bytes())
	assert.Equal(t, models.CountdownCounting, status.State)
	assert.NotEmpty(t, status.AccidentID)

	rec = doJSON(router, http.MethodPost, "/sos/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status = countdownStatus(t, rec.Body.Bytes())
	assert.Equal(t, models.CountdownIdle, status.State)
	assert.True(t, status.Dispatched)
}

func TestSOSCancelFlow(t *testing.T) {
	router, _ := newSOSRouter(t)

	rec := doJSON(router, http.MethodPost, "/sos", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doJSON(router, http.MethodPost, "/sos/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := countdownStatus(t, rec.Body.Bytes())
	assert.Equal(t, models.CountdownCooldown, status.State)
}

func TestSOSConfirmWithoutCountdownConflicts(t *testing.T) {
	router, _ := newSOSRouter(t)

	rec := doJSON(router, http.MethodPost, "/sos/confirm", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(router, http.MethodPost, "/sos/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSOSStatusIdleByDefault(t *testing.T) {
	router, _ := newSOSRouter(t)

	rec := doJSON(router, http.MethodGet, "/sos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := countdownStatus(t, rec.Body.Bytes())
	assert.Equal(t, models.CountdownIdle, status.State)
	assert.False(t, status.Dispatched)
}
