package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"lifeline/models"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultSearchRadius is the primary lookup radius in meters.
	DefaultSearchRadius = 5000
	// FallbackSearchRadius is the reduced radius used against the public
	// facility index when the primary lookup fails.
	FallbackSearchRadius = 3000
	// OverpassQueryTimeout is the server-side timeout passed in the
	// Overpass-QL query.
	OverpassQueryTimeout = 25
)

// FacilityResolver finds hospitals near a coordinate. It tries the
// first-party lookup endpoint and falls back to a public Overpass-compatible
// index; on total failure the POI list comes back empty, never an exception.
// Overlapping resolutions are silently dropped: the in-flight guard exists
// to avoid redundant network calls, not to serialize them.
type FacilityResolver struct {
	httpClient  *http.Client
	primaryURL  string
	overpassURL string
	hub         Broadcaster

	mu       sync.Mutex
	inFlight bool
	pois     []models.PointOfInterest
}

func NewFacilityResolver(primaryURL, overpassURL string, hub Broadcaster) *FacilityResolver {
	if hub == nil {
		hub = NopBroadcaster{}
	}
	return &FacilityResolver{
		httpClient: &http.Client{
			Timeout: (OverpassQueryTimeout + 5) * time.Second,
		},
		primaryURL:  strings.TrimRight(primaryURL, "/"),
		overpassURL: overpassURL,
		hub:         hub,
		pois:        []models.PointOfInterest{},
	}
}

// POIs returns the last resolved facility list. Empty means "no data", not
// "confirmed no facilities".
func (fr *FacilityResolver) POIs() []models.PointOfInterest {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	out := make([]models.PointOfInterest, len(fr.pois))
	copy(out, fr.pois)
	return out
}

// Resolve looks up hospitals within radiusMeters of the coordinate and
// replaces the current POI list with the result. A call made while another
// resolution is in flight is a no-op returning the unchanged list.
func (fr *FacilityResolver) Resolve(ctx context.Context, lat, lon float64, radiusMeters int) ([]models.PointOfInterest, error) {
	fr.mu.Lock()
	if fr.inFlight {
		current := make([]models.PointOfInterest, len(fr.pois))
		copy(current, fr.pois)
		fr.mu.Unlock()
		return current, nil
	}
	fr.inFlight = true
	fr.mu.Unlock()

	defer func() {
		fr.mu.Lock()
		fr.inFlight = false
		fr.mu.Unlock()
	}()

	pois, primaryErr := fr.resolvePrimary(ctx, lat, lon, radiusMeters)
	if primaryErr == nil {
		fr.replace(pois)
		return pois, nil
	}
	logrus.WithError(primaryErr).Warn("facility: primary lookup failed, falling back")

	pois, fallbackErr := fr.resolveOverpass(ctx, lat, lon, FallbackSearchRadius)
	if fallbackErr == nil {
		fr.replace(pois)
		return pois, nil
	}

	return []models.PointOfInterest{}, fmt.Errorf("facility lookup failed: primary: %v; fallback: %w", primaryErr, fallbackErr)
}

func (fr *FacilityResolver) replace(pois []models.PointOfInterest) {
	fr.mu.Lock()
	fr.pois = pois
	fr.mu.Unlock()

	fr.hub.Broadcast(models.WSEvent{
		Type:      models.WSEventPOIs,
		Data:      pois,
		Timestamp: time.Now(),
	})
}

func (fr *FacilityResolver) resolvePrimary(ctx context.Context, lat, lon float64, radiusMeters int) ([]models.PointOfInterest, error) {
	query := url.Values{}
	query.Set("lat", fmt.Sprintf("%f", lat))
	query.Set("lon", fmt.Sprintf("%f", lon))
	query.Set("radius", fmt.Sprintf("%d", radiusMeters))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fr.primaryURL+"/pois?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := fr.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("primary lookup returned status %d", resp.StatusCode)
	}

	var list models.POIList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	pois := make([]models.PointOfInterest, 0, len(list.POIs))
	for _, p := range list.POIs {
		if p.Name == "" {
			p.Name = models.DefaultPOIName
		}
		pois = append(pois, p)
	}
	return pois, nil
}

func (fr *FacilityResolver) resolveOverpass(ctx context.Context, lat, lon float64, radiusMeters int) ([]models.PointOfInterest, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:%d];(node["amenity"="hospital"](around:%d,%f,%f);way["amenity"="hospital"](around:%d,%f,%f);relation["amenity"="hospital"](around:%d,%f,%f););out center;`,
		OverpassQueryTimeout,
		radiusMeters, lat, lon,
		radiusMeters, lat, lon,
		radiusMeters, lat, lon,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fr.overpassURL, strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := fr.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("overpass returned status %d", resp.StatusCode)
	}

	var overpass models.OverpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&overpass); err != nil {
		return nil, err
	}

	pois := make([]models.PointOfInterest, 0, len(overpass.Elements))
	for _, el := range overpass.Elements {
		lat, lon := el.Lat, el.Lon
		if el.Center != nil {
			// Way and relation geometries carry coordinates under center.
			lat, lon = el.Center.Lat, el.Center.Lon
		}
		if lat == 0 && lon == 0 {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = models.DefaultPOIName
		}

		pois = append(pois, models.PointOfInterest{
			Latitude:  lat,
			Longitude: lon,
			Name:      name,
		})
	}
	return pois, nil
}
