// Package runinfo extracts SRA run records from the run metadata fragment
// that esummary embeds in its JSON response.
package runinfo

import (
	"strconv"
)

// Attribute names used by the SRA run fragment.
const (
	AttrAccession  = "acc"
	AttrTotalSpots = "total_spots"
	AttrTotalBases = "total_bases"
	AttrLoadDone   = "load_done"
	AttrIsPublic   = "is_public"
)

// Run is one sequencing run: a flat mapping from attribute name to value.
type Run map[string]string

// Accession returns the run accession, or "" when absent.
func (r Run) Accession() string {
	return r[AttrAccession]
}

// Valid reports whether the record carries an accession.
func (r Run) Valid() bool {
	return r.Accession() != ""
}

// TotalSpots returns the spot count, 0 when absent or not a number.
func (r Run) TotalSpots() int64 {
	return r.int(AttrTotalSpots)
}

// TotalBases returns the base count, 0 when absent or not a number.
func (r Run) TotalBases() int64 {
	return r.int(AttrTotalBases)
}

// IsPublic reports the is_public flag.
func (r Run) IsPublic() bool {
	return r.bool(AttrIsPublic)
}

// LoadDone reports the load_done flag.
func (r Run) LoadDone() bool {
	return r.bool(AttrLoadDone)
}

// Clone returns a copy that does not share storage with r.
func (r Run) Clone() Run {
	c := make(Run, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func (r Run) int(key string) int64 {
	n, err := strconv.ParseInt(r[key], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (r Run) bool(key string) bool {
	b, err := strconv.ParseBool(r[key])
	return err == nil && b
}
