package model

// Unknown is the sentinel stored for fields a source could not supply.
// Absence of address/phone is expected and never an error.
const Unknown = "unknown"

// Origin identifies which kind of source produced a record.
type Origin string

const (
	OriginSearch    Origin = "search"    // search-engine result page
	OriginMaps      Origin = "maps"      // maps listing page
	OriginDirectory Origin = "directory" // business-directory site
	OriginSocial    Origin = "social"    // social-media page search
	OriginPlaces    Origin = "places"    // Places API
	OriginGenerated Origin = "generated" // generated placeholder entry
)

// RawRecord is the loosely structured payload handed over by a source
// adapter. Only "name" is required; everything else degrades to Unknown.
type RawRecord map[string]string

// Well-known RawRecord keys.
const (
	KeyName    = "name"
	KeyAddress = "address"
	KeyPhone   = "phone"
	KeyURL     = "source_url"
)

// Record is one admitted business entry. Records are immutable once
// accumulated: later sightings of the same business are discarded, never
// merged back into an existing record.
type Record struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	SourceURL      string `json:"source_url,omitempty"`
	SourceLocation string `json:"source_location"` // search anchor that produced it
	Origin         Origin `json:"origin"`
}
