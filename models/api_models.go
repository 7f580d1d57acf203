// models/api_models.go
package models

// SelectOrbitRequest is the expected JSON body for the /api/orbits/select endpoint.
type SelectOrbitRequest struct {
	Product     string `json:"product"`      // Sentinel-1 product name
	ProductType string `json:"product_type"` // "AUX_POEORB" (default) or "AUX_RESORB"
	Download    bool   `json:"download"`
}

// SelectOrbitResponse is returned by /api/orbits/select.
type SelectOrbitResponse struct {
	Product   string       `json:"product"`
	Orbit     CatalogEntry `json:"orbit"`
	LocalPath string       `json:"local_path,omitempty"`
}
