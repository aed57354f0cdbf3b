package similarity

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/davin/movierec-go/internal/catalog"
	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/pkg/errors"
)

func buildCatalog(ratings []float64) *catalog.Catalog {
	entries := make([]domain.CatalogEntry, len(ratings))
	for i, rating := range ratings {
		entries[i] = domain.CatalogEntry{
			ID:             1000 + i,
			Title:          fmt.Sprintf("Movie %02d", i),
			WeightedRating: rating,
		}
	}
	return catalog.New(entries)
}

// flatMatrix gives every row descending scores by column index with the
// diagonal forced to the maximum, so row i ranks i first.
func flatMatrix(n int) [][]float64 {
	matrix := make([][]float64, n)
	for i := range matrix {
		row := make([]float64, n)
		for j := range row {
			row[j] = 1.0 - float64(j)/float64(2*n)
		}
		row[i] = 2.0
		matrix[i] = row
	}
	return matrix
}

func TestNewRejectsMisalignedMatrix(t *testing.T) {
	ratings := make([]float64, 5)
	cat := buildCatalog(ratings)

	if _, err := New(cat, flatMatrix(4), flatMatrix(5)); err == nil {
		t.Fatal("expected error for content matrix row mismatch")
	}
	if _, err := New(cat, flatMatrix(5), flatMatrix(4)); err == nil {
		t.Fatal("expected error for company matrix row mismatch")
	}
}

func TestContentPeers(t *testing.T) {
	const n = 15
	ratings := make([]float64, n)
	cat := buildCatalog(ratings)

	content := flatMatrix(n)
	// Row 5 ranks itself first, then rows 12 and 7.
	content[5][12] = 1.9
	content[5][7] = 1.8

	index, err := NewWithRand(cat, content, flatMatrix(n), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewWithRand returned error: %v", err)
	}

	self, peers, err := index.ContentPeers("Movie 05")
	if err != nil {
		t.Fatalf("ContentPeers returned error: %v", err)
	}

	if self.ID != 1005 {
		t.Fatalf("self id = %d, want 1005", self.ID)
	}
	if len(peers) != 12 {
		t.Fatalf("got %d peers, want 12", len(peers))
	}
	if peers[0].ID != 1012 || peers[1].ID != 1007 {
		t.Fatalf("top peers = %d, %d, want 1012, 1007", peers[0].ID, peers[1].ID)
	}
	for _, peer := range peers {
		if peer.Title == "Movie 05" {
			t.Fatal("peers include the query title")
		}
	}
}

func TestContentPeersStableTieBreak(t *testing.T) {
	const n = 15
	cat := buildCatalog(make([]float64, n))

	content := flatMatrix(n)
	// All non-self scores equal: ranking must preserve catalog order.
	for j := range content[3] {
		content[3][j] = 0.5
	}
	content[3][3] = 2.0

	index, err := New(cat, content, flatMatrix(n))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, peers, err := index.ContentPeers("Movie 03")
	if err != nil {
		t.Fatalf("ContentPeers returned error: %v", err)
	}

	want := []int{0, 1, 2, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	for i, peer := range peers {
		if peer.Row != want[i] {
			t.Fatalf("peer %d has row %d, want %d (catalog order on ties)", i, peer.Row, want[i])
		}
	}
}

func TestContentPeersUnknownTitle(t *testing.T) {
	cat := buildCatalog(make([]float64, 15))
	index, err := New(cat, flatMatrix(15), flatMatrix(15))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, _, err := index.ContentPeers("Unknown"); !errors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCompanyPicks(t *testing.T) {
	const n = 60
	ratings := make([]float64, n)
	// Rows 1-20 clear the weighted-rating bar, the rest do not.
	for i := 1; i <= 20; i++ {
		ratings[i] = 7.0
	}
	cat := buildCatalog(ratings)

	index, err := NewWithRand(cat, flatMatrix(n), flatMatrix(n), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewWithRand returned error: %v", err)
	}

	picks, err := index.CompanyPicks("Movie 00")
	if err != nil {
		t.Fatalf("CompanyPicks returned error: %v", err)
	}

	if len(picks) != 12 {
		t.Fatalf("got %d picks, want 12", len(picks))
	}

	seen := make(map[int]bool)
	for _, pick := range picks {
		if pick.Title == "Movie 00" {
			t.Fatal("picks include the query title")
		}
		if pick.WeightedRating <= 5.8 {
			t.Fatalf("pick %q has weighted rating %.1f, below threshold", pick.Title, pick.WeightedRating)
		}
		if pick.Row < 1 || pick.Row > 20 {
			t.Fatalf("pick row %d outside the qualifying pool", pick.Row)
		}
		if seen[pick.ID] {
			t.Fatalf("duplicate pick %d", pick.ID)
		}
		seen[pick.ID] = true
	}
}

func TestCompanyPicksInsufficientCandidates(t *testing.T) {
	const n = 60
	ratings := make([]float64, n)
	for i := 1; i <= 11; i++ {
		ratings[i] = 7.0
	}
	cat := buildCatalog(ratings)

	index, err := NewWithRand(cat, flatMatrix(n), flatMatrix(n), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("NewWithRand returned error: %v", err)
	}

	if _, err := index.CompanyPicks("Movie 00"); !errors.IsInsufficientCandidates(err) {
		t.Fatalf("expected InsufficientCandidatesError, got %v", err)
	}
}
