package music

// Artist represents a catalog artist.
type Artist struct {
	ID   int    `json:"id"`            // Catalog artist ID
	Name string `json:"name"`          // Display name
	URL  string `json:"url,omitempty"` // Artist page URL
}
