package catalog

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/davin/movierec-go/pkg/errors"
)

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main_df.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test csv: %v", err)
	}
	return path
}

func TestLoadAndRowByTitle(t *testing.T) {
	path := writeTestCSV(t, "id,original_title,weighted_rating\n27205,Inception,8.1\n155,The Dark Knight,8.3\n603,The Matrix,7.9\n")

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cat.Size() != 3 {
		t.Fatalf("Size = %d, want 3", cat.Size())
	}

	for i := 0; i < 3; i++ {
		row, err := cat.RowByTitle("The Matrix")
		if err != nil {
			t.Fatalf("RowByTitle returned error: %v", err)
		}
		if row != 2 {
			t.Fatalf("RowByTitle = %d, want 2", row)
		}
	}

	entry, ok := cat.Entry(0)
	if !ok {
		t.Fatal("Entry(0) not found")
	}
	if entry.ID != 27205 || entry.Title != "Inception" || entry.WeightedRating != 8.1 {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	if _, err := cat.RowByTitle("Unknown Movie"); !errors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	path := writeTestCSV(t, "id,title\n1,Inception\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestDuplicateTitleFirstOccurrenceWins(t *testing.T) {
	path := writeTestCSV(t, "id,original_title,weighted_rating\n1,Hamlet,6.0\n2,Hamlet,7.0\n")

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	row, err := cat.RowByTitle("Hamlet")
	if err != nil {
		t.Fatalf("RowByTitle returned error: %v", err)
	}
	if row != 0 {
		t.Fatalf("RowByTitle = %d, want 0", row)
	}
}

func TestAutocomplete(t *testing.T) {
	path := writeTestCSV(t, "id,original_title,weighted_rating\n"+
		"1,The Matrix,7.9\n"+
		"2,The Matrix Reloaded,6.8\n"+
		"3,The Matrix Revolutions,6.5\n"+
		"4,Inception,8.1\n")

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	matches := cat.Autocomplete("matrix", 10)
	if len(matches) != 3 {
		t.Fatalf("Autocomplete returned %d matches, want 3", len(matches))
	}
	if matches[0] != "The Matrix" {
		t.Fatalf("first match = %q, want catalog order", matches[0])
	}

	if got := cat.Autocomplete("matrix", 2); len(got) != 2 {
		t.Fatalf("limited Autocomplete returned %d matches, want 2", len(got))
	}

	if got := cat.Autocomplete("", 10); len(got) != 0 {
		t.Fatalf("empty query returned %d matches, want 0", len(got))
	}
}

func TestRandomEntries(t *testing.T) {
	path := writeTestCSV(t, "id,original_title,weighted_rating\n"+
		"1,A,5.0\n2,B,5.0\n3,C,5.0\n4,D,5.0\n5,E,5.0\n")

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	rng := rand.New(rand.NewSource(42))

	picked := cat.RandomEntries(3, rng)
	if len(picked) != 3 {
		t.Fatalf("RandomEntries returned %d entries, want 3", len(picked))
	}
	seen := make(map[int]bool)
	for _, entry := range picked {
		if seen[entry.ID] {
			t.Fatalf("duplicate entry %d in sample", entry.ID)
		}
		seen[entry.ID] = true
	}

	if got := cat.RandomEntries(10, rng); len(got) != cat.Size() {
		t.Fatalf("oversized sample returned %d entries, want %d", len(got), cat.Size())
	}
}
