package similarity

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/davin/movierec-go/internal/catalog"
	"github.com/davin/movierec-go/internal/domain"
	"github.com/davin/movierec-go/pkg/errors"
)

const (
	// contentSliceSize covers the self match plus the twelve peers shown
	// on the movie page.
	contentSliceSize = 13

	companyPoolSize   = 50
	companySampleSize = 12
	minWeightedRating = 5.8
)

// Index answers top-N similarity queries against the two precomputed
// matrices. Matrices are loaded once and shared read-only; only the sampling
// source is guarded.
type Index struct {
	catalog *catalog.Catalog
	content [][]float64
	company [][]float64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// LoadMatrix reads a JSON-exported square similarity matrix.
func LoadMatrix(path string) ([][]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open similarity matrix: %w", err)
	}
	defer file.Close()

	var matrix [][]float64
	if err := json.NewDecoder(file).Decode(&matrix); err != nil {
		return nil, fmt.Errorf("failed to decode similarity matrix %s: %w", path, err)
	}
	return matrix, nil
}

func New(cat *catalog.Catalog, content, company [][]float64) (*Index, error) {
	return NewWithRand(cat, content, company, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand builds an index with an injected sampling source so tests can
// assert set-membership properties deterministically.
func NewWithRand(cat *catalog.Catalog, content, company [][]float64, rng *rand.Rand) (*Index, error) {
	if len(content) != cat.Size() {
		return nil, fmt.Errorf("content matrix has %d rows, catalog has %d entries", len(content), cat.Size())
	}
	if len(company) != cat.Size() {
		return nil, fmt.Errorf("company matrix has %d rows, catalog has %d entries", len(company), cat.Size())
	}

	return &Index{
		catalog: cat,
		content: content,
		company: company,
		rng:     rng,
	}, nil
}

// ContentPeers resolves the query title's own catalog entry plus its twelve
// most content-similar peers. The self match carries the maximal score in
// its row, so it is always the head of the ranked slice.
func (idx *Index) ContentPeers(title string) (domain.CatalogEntry, []domain.CatalogEntry, error) {
	row, err := idx.catalog.RowByTitle(title)
	if err != nil {
		return domain.CatalogEntry{}, nil, err
	}

	ranked := rankRow(idx.content[row])
	if len(ranked) > contentSliceSize {
		ranked = ranked[:contentSliceSize]
	}

	self, _ := idx.catalog.Entry(ranked[0])
	peers := make([]domain.CatalogEntry, 0, len(ranked)-1)
	for _, peerRow := range ranked[1:] {
		if entry, ok := idx.catalog.Entry(peerRow); ok {
			peers = append(peers, entry)
		}
	}

	return self, peers, nil
}

// CompanyPicks returns twelve production-company recommendations: the top 50
// by raw score are filtered to rated peers (weighted rating above 5.8,
// excluding the query title), ranked by weighted rating, and a uniform
// random sample of twelve is drawn from that pool. Ranking feeds the
// candidate order, but the final selection is random on purpose: popular but
// varied.
func (idx *Index) CompanyPicks(title string) ([]domain.CatalogEntry, error) {
	row, err := idx.catalog.RowByTitle(title)
	if err != nil {
		return nil, err
	}

	ranked := rankRow(idx.company[row])
	if len(ranked) > companyPoolSize {
		ranked = ranked[:companyPoolSize]
	}

	pool := make([]domain.CatalogEntry, 0, len(ranked))
	for _, candidateRow := range ranked {
		if entry, ok := idx.catalog.Entry(candidateRow); ok {
			pool = append(pool, entry)
		}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].WeightedRating > pool[j].WeightedRating
	})

	filtered := make([]domain.CatalogEntry, 0, len(pool))
	for _, entry := range pool {
		if entry.Title == title {
			continue
		}
		if entry.WeightedRating <= minWeightedRating {
			continue
		}
		filtered = append(filtered, entry)
	}

	if len(filtered) < companySampleSize {
		return nil, errors.NewInsufficientCandidatesError(companySampleSize, len(filtered))
	}

	idx.rngMu.Lock()
	perm := idx.rng.Perm(len(filtered))
	idx.rngMu.Unlock()

	picks := make([]domain.CatalogEntry, 0, companySampleSize)
	for _, i := range perm[:companySampleSize] {
		picks = append(picks, filtered[i])
	}
	return picks, nil
}

// rankRow sorts row indices by score descending; equal scores keep catalog
// order.
func rankRow(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order
}
