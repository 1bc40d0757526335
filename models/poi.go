package models

// DefaultPOIName is used when a facility element carries no name tag.
const DefaultPOIName = "Hospital"

// PointOfInterest is a normalized nearby facility. The list is ephemeral:
// each resolution fully replaces the prior one.
type PointOfInterest struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Name      string  `json:"name"`
}

// OverpassResponse is the wire shape of the fallback facility index.
// Way and relation geometries carry coordinates under Center.
type OverpassResponse struct {
	Elements []OverpassElement `json:"elements"`
}

type OverpassElement struct {
	Lat    float64           `json:"lat,omitempty"`
	Lon    float64           `json:"lon,omitempty"`
	Center *OverpassCenter   `json:"center,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

type OverpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// POIList is the wire shape of the first-party lookup endpoint.
type POIList struct {
	POIs []PointOfInterest `json:"pois"`
}
