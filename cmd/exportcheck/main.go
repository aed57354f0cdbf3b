// Command exportcheck validates that the catalog dataset and the offline
// similarity matrix exports line up before the server is pointed at them.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/davin/movierec-go/internal/catalog"
	"github.com/davin/movierec-go/internal/similarity"
)

func main() {
	catalogPath := flag.String("catalog", "datasets/main_df.csv", "path to the catalog CSV")
	contentPath := flag.String("content", "models/cosine_sim.json", "path to the content similarity matrix")
	companyPath := flag.String("company", "models/cosine_sim_prod.json", "path to the company similarity matrix")
	flag.Parse()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("catalog: %d titles\n", cat.Size())

	ok := true
	for _, check := range []struct {
		name string
		path string
	}{
		{"content", *contentPath},
		{"company", *companyPath},
	} {
		matrix, err := similarity.LoadMatrix(check.path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s matrix: %v\n", check.name, err)
			ok = false
			continue
		}

		if len(matrix) != cat.Size() {
			fmt.Fprintf(os.Stderr, "%s matrix: %d rows, want %d\n", check.name, len(matrix), cat.Size())
			ok = false
		}
		for row, scores := range matrix {
			if len(scores) != cat.Size() {
				fmt.Fprintf(os.Stderr, "%s matrix: row %d has %d columns, want %d\n", check.name, row, len(scores), cat.Size())
				ok = false
				break
			}
		}
		fmt.Printf("%s matrix: %d rows\n", check.name, len(matrix))
	}

	if !ok {
		os.Exit(1)
	}
	fmt.Println("exports consistent")
}
