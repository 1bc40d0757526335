package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lifeline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrimarySuccess(t *testing.T) {
	var fallbackHits int32

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pois", r.URL.Path)
		assert.Equal(t, "5000", r.URL.Query().Get("radius"))
		w.Write([]byte(`{"pois":[{"lat":10.1,"lon":106.2,"name":"City General"},{"lat":10.3,"lon":106.4,"name":""}]}`))
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fallbackHits, 1)
	}))
	defer fallback.Close()

	fr := NewFacilityResolver(primary.URL, fallback.URL, nil)

	pois, err := fr.Resolve(context.Background(), 10.2, 106.3, DefaultSearchRadius)
	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, "City General", pois[0].Name)
	assert.Equal(t, models.DefaultPOIName, pois[1].Name)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fallbackHits))
	assert.Equal(t, pois, fr.POIs())
}

func TestResolveFallsBackOnPrimaryFailure(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()

	var query string
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		raw := strings.TrimPrefix(string(body), "data=")
		query, _ = url.QueryUnescape(raw)
		w.Write([]byte(`{"elements":[
			{"lat":10.5,"lon":106.6,"tags":{"name":"District Hospital"}},
			{"center":{"lat":10.7,"lon":106.8}},
			{"tags":{"name":"no coordinates, skipped"}}
		]}`))
	}))
	defer fallback.Close()

	fr := NewFacilityResolver(primary.URL, fallback.URL, nil)

	// Seed a prior list to verify full replacement.
	fr.replace([]models.PointOfInterest{{Latitude: 1, Longitude: 1, Name: "stale"}})

	pois, err := fr.Resolve(context.Background(), 10.6, 106.7, DefaultSearchRadius)
	require.NoError(t, err)

	assert.Contains(t, query, "around:3000")
	assert.Contains(t, query, "timeout:25")
	assert.Contains(t, query, `"amenity"="hospital"`)

	require.Len(t, pois, 2)
	assert.Equal(t, "District Hospital", pois[0].Name)
	assert.Equal(t, 10.7, pois[1].Latitude)
	assert.Equal(t, models.DefaultPOIName, pois[1].Name)

	// The stale list is fully replaced, not merged.
	assert.Equal(t, pois, fr.POIs())
}

func TestResolveTotalFailureReturnsEmpty(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer fallback.Close()

	fr := NewFacilityResolver(primary.URL, fallback.URL, nil)

	pois, err := fr.Resolve(context.Background(), 10, 106, DefaultSearchRadius)
	require.Error(t, err)
	assert.Empty(t, pois)
	assert.NotNil(t, pois)
}

func TestResolveInFlightIsNoOp(t *testing.T) {
	release := make(chan struct{})
	var hits int32

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.Write([]byte(`{"pois":[{"lat":1,"lon":2,"name":"Slow Hospital"}]}`))
	}))
	defer primary.Close()

	fr := NewFacilityResolver(primary.URL, primary.URL, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fr.Resolve(context.Background(), 10, 106, DefaultSearchRadius)
	}()

	// Wait for the first resolution to be in flight.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&hits) == 1
	}, 2*time.Second, 5*time.Millisecond)

	// Overlapping call: silently dropped, list unchanged, no network hit.
	pois, err := fr.Resolve(context.Background(), 10, 106, DefaultSearchRadius)
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	close(release)
	<-done
	assert.Len(t, fr.POIs(), 1)
}
