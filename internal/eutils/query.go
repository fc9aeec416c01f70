// Package eutils is a small client for the NCBI E-utilities service. It
// resolves an accession to a FASTA record and a search term to the SRA
// runs it matches, each by a search call followed by a fetch or summary
// call for the identifiers found.
package eutils

import (
	"net/url"
)

// E-utility function names.
const (
	FuncSearch  = "esearch"
	FuncFetch   = "efetch"
	FuncSummary = "esummary"
)

const pathPrefix = "/entrez/eutils/"

// Query builds the request path and query string for an E-utility call.
// The db parameter is always present: params["db"] when set, defaultDB
// otherwise. params is not modified. Keys are encoded in sorted order.
func Query(function string, params map[string]string, defaultDB string) string {
	values := make(url.Values, len(params)+1)
	for k, v := range params {
		values.Set(k, v)
	}
	if values.Get("db") == "" {
		values.Set("db", defaultDB)
	}
	return pathPrefix + function + ".fcgi?" + values.Encode()
}
