package testutil

import "github.com/nishad/srake-eutils/internal/runinfo"

// Fixture data for tests

// TestTerm is the search term the fixture runs belong to.
const TestTerm = "PRJNA999999"

// TestAccession names the fixture FASTA record.
const TestAccession = "CM000670.1"

// TestDefline is the fixture FASTA header, without the leading marker.
const TestDefline = "CM000670.1 Homo sapiens chromosome 8, GRCh38 reference primary assembly"

// TestSequence holds the fixture FASTA body lines.
var TestSequence = []string{"NNNNACGTACGT", "TTGACCAGT"}

// TestRuns returns two runs: a small public one and a large private one.
func TestRuns() []runinfo.Run {
	return []runinfo.Run{
		{
			runinfo.AttrAccession:  "SRR9000001",
			runinfo.AttrTotalSpots: "1200",
			runinfo.AttrTotalBases: "240000",
			runinfo.AttrLoadDone:   "true",
			runinfo.AttrIsPublic:   "true",
			"cluster_name":         "public",
		},
		{
			runinfo.AttrAccession:  "SRR9000002",
			runinfo.AttrTotalSpots: "45000000",
			runinfo.AttrTotalBases: "9000000000",
			runinfo.AttrLoadDone:   "true",
			runinfo.AttrIsPublic:   "false",
		},
	}
}

// TestRunsFragment renders TestRuns the way the run summary embeds them:
// entity-escaped Run elements with no enclosing root.
func TestRunsFragment() string {
	return `&lt;Run acc="SRR9000001" total_spots="1200" total_bases="240000" load_done="true" is_public="true" cluster_name="public"/&gt;` +
		`&lt;Run acc="SRR9000002" total_spots="45000000" total_bases="9000000000" load_done="true" is_public="false"/&gt;`
}
