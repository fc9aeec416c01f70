package runinfo

import (
	"testing"

	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []Run {
	return []Run{
		{"acc": "SRR1", "total_bases": "100", "total_spots": "10", "is_public": "true", "load_done": "true"},
		{"acc": "SRR2", "total_bases": "5000000", "total_spots": "50000", "is_public": "false", "load_done": "true"},
		{"acc": "SRR3", "total_bases": "2000000", "total_spots": "20000", "is_public": "true", "load_done": "false"},
	}
}

func accessions(runs []Run) []string {
	out := make([]string, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Accession())
	}
	return out
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	runs := filterFixture()
	got, err := Filter(runs, "")
	require.NoError(t, err)
	assert.Equal(t, runs, got)
}

func TestFilterByFlag(t *testing.T) {
	got, err := Filter(filterFixture(), "is_public:true")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRR1", "SRR3"}, accessions(got))
}

func TestFilterNumericRange(t *testing.T) {
	got, err := Filter(filterFixture(), "total_bases:>1000000")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRR2", "SRR3"}, accessions(got))
}

func TestFilterConjunction(t *testing.T) {
	got, err := Filter(filterFixture(), "+is_public:true +total_bases:>1000000")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRR3"}, accessions(got))
}

func TestFilterByAccession(t *testing.T) {
	got, err := Filter(filterFixture(), "acc:SRR2")
	require.NoError(t, err)
	assert.Equal(t, []string{"SRR2"}, accessions(got))
}

func TestFilterNoMatches(t *testing.T) {
	got, err := Filter(filterFixture(), "load_done:maybe")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilterInvalidQuery(t *testing.T) {
	_, err := Filter(filterFixture(), "(acc:SRR1")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindValidation))
}
