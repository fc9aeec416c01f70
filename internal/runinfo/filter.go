package runinfo

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/nishad/srake-eutils/internal/errors"
)

// Filter returns the runs matching a bleve query string, keeping their
// original order. Numeric attributes are indexed as numbers so range
// queries such as "total_bases:>1000000" work. An empty query returns runs
// unchanged.
//
// A query that bleve rejects is a KindValidation error.
func Filter(runs []Run, queryString string) ([]Run, error) {
	const op errors.Op = "runinfo.Filter"

	if queryString == "" || len(runs) == 0 {
		return runs, nil
	}

	index, err := bleve.NewMemOnly(runIndexMapping())
	if err != nil {
		return nil, errors.E(op, err, "failed to create run index")
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, run := range runs {
		if err := batch.Index(strconv.Itoa(i), runDocument(run)); err != nil {
			return nil, errors.E(op, err, fmt.Sprintf("failed to index run %s", run.Accession()))
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, errors.E(op, err, "failed to index runs")
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryString), len(runs), 0, false)
	result, err := index.Search(req)
	if err != nil {
		return nil, errors.E(op, errors.KindValidation, err, fmt.Sprintf("invalid filter %q", queryString))
	}

	positions := make([]int, 0, len(result.Hits))
	for _, hit := range result.Hits {
		pos, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	matched := make([]Run, 0, len(positions))
	for _, pos := range positions {
		matched = append(matched, runs[pos])
	}
	return matched, nil
}

func runIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "standard"

	docMapping := bleve.NewDocumentMapping()
	accession := bleve.NewTextFieldMapping()
	accession.Analyzer = "keyword"
	docMapping.AddFieldMappingsAt(AttrAccession, accession)
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

// runDocument converts numeric attribute values so that the dynamic
// mapping indexes them as numbers.
func runDocument(run Run) map[string]interface{} {
	doc := make(map[string]interface{}, len(run))
	for k, v := range run {
		if n, err := strconv.ParseFloat(v, 64); err == nil && k != AttrAccession {
			doc[k] = n
			continue
		}
		doc[k] = v
	}
	return doc
}
