package annotate

import (
	"runtime"
	"sync"

	"github.com/oncoviz/tcga-explore/internal/maf"
)

// Table is a multi-gene annotation matrix: one row per sample (in
// input order), one boolean column per queried gene (in query order).
type Table struct {
	SampleIDs []string
	Genes     []string
	// Presence[g][s] is the value for gene Genes[g] and sample SampleIDs[s].
	Presence [][]bool
}

// Value returns the cell for a sample/gene pair by identifier.
func (t *Table) Value(sampleID, gene string) (bool, bool) {
	gi := -1
	for i, g := range t.Genes {
		if g == gene {
			gi = i
			break
		}
	}
	if gi < 0 {
		return false, false
	}
	for i, id := range t.SampleIDs {
		if id == sampleID {
			return t.Presence[gi][i], true
		}
	}
	return false, false
}

// geneItem is one gene query ready for annotation.
type geneItem struct {
	seq  int
	gene string
}

// geneResult holds the presence column for a single gene.
type geneResult struct {
	seq      int
	gene     string
	presence map[string]bool
	err      error
}

// PatientSource returns the set of mutated patient identifiers for a
// gene. annotate.MutatedPatients over an in-memory call slice and
// duckdb.Store.MutatedPatients over an ingested store both satisfy it.
type PatientSource func(gene string) (map[string]struct{}, error)

// BuildTable computes a gene-presence column for every queried gene
// from an in-memory slice of mutation calls. See BuildTableFromSource.
func BuildTable(samples []SampleRecord, calls []maf.MutationCall, genes []string, workers int) (*Table, error) {
	return BuildTableFromSource(samples, func(gene string) (map[string]struct{}, error) {
		return MutatedPatients(calls, gene)
	}, genes, workers)
}

// BuildTableFromSource computes a gene-presence column for every
// queried gene using a pool of workers. Gene queries are independent,
// so they run concurrently against the source, which must be safe for
// concurrent use; columns are collected in query order. If workers is
// 0, runtime.NumCPU() is used.
func BuildTableFromSource(samples []SampleRecord, source PatientSource, genes []string, workers int) (*Table, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(genes) && len(genes) > 0 {
		workers = len(genes)
	}

	items := make(chan geneItem, len(genes))
	for i, g := range genes {
		items <- geneItem{seq: i, gene: g}
	}
	close(items)

	results := make(chan geneResult, len(genes))

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				var presence map[string]bool
				mutated, err := source(item.gene)
				if err == nil {
					presence, err = Broadcast(samples, mutated)
				}
				results <- geneResult{
					seq:      item.seq,
					gene:     item.gene,
					presence: presence,
					err:      err,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	table := &Table{
		SampleIDs: make([]string, len(samples)),
		Genes:     make([]string, len(genes)),
		Presence:  make([][]bool, len(genes)),
	}
	for i := range samples {
		table.SampleIDs[i] = samples[i].ID
	}

	if err := orderedCollect(results, func(r geneResult) error {
		if r.err != nil {
			return r.err
		}
		col := make([]bool, len(samples))
		for i := range samples {
			col[i] = r.presence[samples[i].ID]
		}
		table.Genes[r.seq] = r.gene
		table.Presence[r.seq] = col
		return nil
	}); err != nil {
		return nil, err
	}

	return table, nil
}

// orderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them as
// soon as the next expected sequence number is available. Blocks until
// the results channel is closed.
func orderedCollect(results <-chan geneResult, fn func(geneResult) error) error {
	pending := make(map[int]geneResult)
	nextSeq := 0

	for r := range results {
		pending[r.seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
