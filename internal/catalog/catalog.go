package catalog

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/pkg/errors"
)

// Catalog is the fixed in-memory table of known titles, aligned row-for-row
// with the similarity matrices.
type Catalog struct {
	entries []domain.CatalogEntry
	byTitle map[string]int
}

// Load reads the catalog dataset from a CSV file with at least the columns
// id, original_title and weighted_rating. Row order must match the matrix
// export.
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dataset: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("catalog dataset is empty")
	}

	idCol, titleCol, ratingCol := -1, -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case "id":
			idCol = i
		case "original_title":
			titleCol = i
		case "weighted_rating":
			ratingCol = i
		}
	}
	if idCol < 0 || titleCol < 0 || ratingCol < 0 {
		return nil, fmt.Errorf("catalog dataset missing required columns (id, original_title, weighted_rating)")
	}

	entries := make([]domain.CatalogEntry, 0, len(records)-1)
	byTitle := make(map[string]int, len(records)-1)

	for row, record := range records[1:] {
		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: bad id %q: %w", row, record[idCol], err)
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(record[ratingCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: bad weighted_rating %q: %w", row, record[ratingCol], err)
		}

		title := record[titleCol]
		entries = append(entries, domain.CatalogEntry{
			ID:             id,
			Title:          title,
			WeightedRating: rating,
			Row:            row,
		})

		// First occurrence wins for duplicate titles, matching the
		// original index lookup.
		if _, exists := byTitle[title]; !exists {
			byTitle[title] = row
		}
	}

	return &Catalog{entries: entries, byTitle: byTitle}, nil
}

func New(entries []domain.CatalogEntry) *Catalog {
	byTitle := make(map[string]int, len(entries))
	for i := range entries {
		entries[i].Row = i
		if _, exists := byTitle[entries[i].Title]; !exists {
			byTitle[entries[i].Title] = i
		}
	}
	return &Catalog{entries: entries, byTitle: byTitle}
}

func (c *Catalog) Size() int {
	return len(c.entries)
}

// RowByTitle resolves a title to its matrix row index.
func (c *Catalog) RowByTitle(title string) (int, error) {
	row, ok := c.byTitle[title]
	if !ok {
		return 0, errors.NewNotFoundError("movie", title)
	}
	return row, nil
}

func (c *Catalog) HasTitle(title string) bool {
	_, ok := c.byTitle[title]
	return ok
}

// Entry returns the catalog entry at the given matrix row.
func (c *Catalog) Entry(row int) (domain.CatalogEntry, bool) {
	if row < 0 || row >= len(c.entries) {
		return domain.CatalogEntry{}, false
	}
	return c.entries[row], true
}

// Autocomplete returns up to limit titles containing the query,
// case-insensitive, in catalog order.
func (c *Catalog) Autocomplete(query string, limit int) []string {
	if query == "" || limit <= 0 {
		return []string{}
	}

	needle := strings.ToLower(query)
	matches := make([]string, 0, limit)
	for _, entry := range c.entries {
		if strings.Contains(strings.ToLower(entry.Title), needle) {
			matches = append(matches, entry.Title)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches
}

// RandomEntries draws n distinct entries for the landing page. When the
// catalog is smaller than n, every entry is returned.
func (c *Catalog) RandomEntries(n int, rng *rand.Rand) []domain.CatalogEntry {
	if n >= len(c.entries) {
		picked := make([]domain.CatalogEntry, len(c.entries))
		copy(picked, c.entries)
		return picked
	}

	picked := make([]domain.CatalogEntry, 0, n)
	for _, row := range rng.Perm(len(c.entries))[:n] {
		picked = append(picked, c.entries[row])
	}
	return picked
}
