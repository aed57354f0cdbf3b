package domain

// CatalogEntry is one row of the catalog dataset. The catalog is loaded once
// at startup and shared read-only for the process lifetime.
type CatalogEntry struct {
	ID             int
	Title          string
	WeightedRating float64
	Row            int
}

// MovieMetadata is the enriched per-title payload fetched from the external
// metadata service.
type MovieMetadata struct {
	PosterURL   string   `json:"poster"`
	IMDbID      string   `json:"imdb_id"`
	Genres      []string `json:"genres"`
	Overview    string   `json:"overview"`
	Rating      float64  `json:"rating"`
	VoteCount   int      `json:"vote_count"`
	ReleaseDate string   `json:"release_date"`
	Runtime     string   `json:"runtime"`
	Status      string   `json:"status"`
}

// CastEntry is one credited cast member. Biography, Birthday, PlaceOfBirth
// and Gender are filled lazily from the person endpoint and carry "N/A" when
// the fetch fails.
type CastEntry struct {
	PersonID     int    `json:"id"`
	Name         string `json:"name"`
	Character    string `json:"role"`
	ProfileURL   string `json:"image"`
	Biography    string `json:"bio"`
	Birthday     string `json:"bday"`
	PlaceOfBirth string `json:"place"`
	Gender       string `json:"gender"`
}

// PersonDetails is the lazily fetched biographical slice of a CastEntry.
type PersonDetails struct {
	Biography    string `json:"bio"`
	Birthday     string `json:"bday"`
	PlaceOfBirth string `json:"place"`
	Gender       string `json:"gender"`
}

// RecommendedMovie pairs a recommended title with its poster.
type RecommendedMovie struct {
	Title     string `json:"title"`
	PosterURL string `json:"image"`
}

// RecommendationBundle is the assembled response for one content-based query.
type RecommendationBundle struct {
	Title       string             `json:"title"`
	Details     MovieMetadata      `json:"details"`
	Cast        []CastEntry        `json:"top_cast"`
	Recommended []RecommendedMovie `json:"recommended"`
}

// Review is one scraped user review with its sentiment label.
type Review struct {
	Text  string `json:"comment"`
	Label string `json:"review"`
}
