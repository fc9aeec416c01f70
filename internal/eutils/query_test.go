package eutils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseQuery(t *testing.T, q string) (string, url.Values) {
	t.Helper()
	path, raw, ok := strings.Cut(q, "?")
	require.True(t, ok, "query %q has no '?'", q)
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return path, values
}

func TestQueryDefaultsDB(t *testing.T) {
	params := map[string]string{"retmode": "json", "term": "CM000670.1"}

	path, values := parseQuery(t, Query(FuncSearch, params, "nuccore"))

	assert.Equal(t, "/entrez/eutils/esearch.fcgi", path)
	assert.Equal(t, "nuccore", values.Get("db"))
	assert.Equal(t, "json", values.Get("retmode"))
	assert.Equal(t, "CM000670.1", values.Get("term"))
	_, mutated := params["db"]
	assert.False(t, mutated, "caller's params must not be modified")
}

func TestQueryKeepsCallerDB(t *testing.T) {
	_, values := parseQuery(t, Query(FuncSummary, map[string]string{"db": "sra", "id": "1,2"}, "nuccore"))

	assert.Equal(t, []string{"sra"}, values["db"])
	assert.Equal(t, "1,2", values.Get("id"))
}

func TestQueryEmptyDBFallsBackToDefault(t *testing.T) {
	_, values := parseQuery(t, Query(FuncFetch, map[string]string{"db": ""}, "nuccore"))
	assert.Equal(t, "nuccore", values.Get("db"))
}

func TestQueryAlwaysHasDB(t *testing.T) {
	for _, params := range []map[string]string{
		nil,
		{},
		{"term": "homo sapiens[orgn] AND rna-seq"},
		{"db": "sra"},
	} {
		_, values := parseQuery(t, Query(FuncSearch, params, "nuccore"))
		assert.NotEmpty(t, values.Get("db"))
	}
}

func TestQueryEscapesValues(t *testing.T) {
	q := Query(FuncSearch, map[string]string{"term": "a&b c"}, "nuccore")
	assert.Equal(t, "/entrez/eutils/esearch.fcgi?db=nuccore&term=a%26b+c", q)
}
