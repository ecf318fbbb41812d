package types

// Itinerary is the full generated trip document. It is produced by the
// generation step, enriched by the resolve annotator and persisted as a
// single aggregate. Ordering of hotels, days and items is schedule order
// and must survive annotation untouched.
type Itinerary struct {
	TripTitle   string      `json:"trip_title"`
	VibeCheck   string      `json:"vibe_check"`
	PackingList []string    `json:"packing_list"`
	Hotels      []Hotel     `json:"hotels"`
	Days        []DailyPlan `json:"days"`
}

// DailyPlan is one day of the schedule.
type DailyPlan struct {
	Day   string          `json:"day"`
	Title string          `json:"title"`
	Items []ItineraryItem `json:"items"`
}

// ItineraryItem is a single scheduled activity. ActivityName is expected
// to be an exact proper place name; Location is a neighborhood/area label.
// MapURL and NeighborhoodURL are nil until annotation fills them in.
type ItineraryItem struct {
	Time            string     `json:"time"`
	ActivityName    string     `json:"activity_name"`
	Location        string     `json:"location"`
	Description     string     `json:"description"`
	MapURL          *string    `json:"map_url,omitempty"`
	NeighborhoodURL *string    `json:"neighborhood_url,omitempty"`
	HiddenGem       *HiddenGem `json:"hidden_gem,omitempty"`
}

// HiddenGem is an optional secondary recommendation nested in an activity.
type HiddenGem struct {
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	Description     string  `json:"description"`
	MapURL          *string `json:"map_url,omitempty"`
	NeighborhoodURL *string `json:"neighborhood_url,omitempty"`
}

// Hotel is a recommended stay. Same enrichment lifecycle as an
// ItineraryItem, without a nested gem.
type Hotel struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	MapURL      *string `json:"map_url,omitempty"`
}
