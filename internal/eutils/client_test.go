package eutils

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/nishad/srake-eutils/internal/config"
	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEutils serves canned bodies per E-utility function and records the
// query of every request it receives.
type fakeEutils struct {
	mu        sync.Mutex
	responses map[string]string
	status    map[string]int
	requests  []url.URL
	keptAlive int
}

func newFakeEutils() *fakeEutils {
	return &fakeEutils{
		responses: make(map[string]string),
		status:    make(map[string]int),
	}
}

func (f *fakeEutils) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, *r.URL)
	if !r.Close {
		f.keptAlive++
	}
	function := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, pathPrefix), ".fcgi")
	body, status := f.responses[function], f.status[function]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
	}
	w.Write([]byte(body))
}

func (f *fakeEutils) calls(function string) []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []url.Values
	for _, u := range f.requests {
		if u.Path == pathPrefix+function+".fcgi" {
			out = append(out, u.Query())
		}
	}
	return out
}

func newTestClient(t *testing.T, fake *fakeEutils) (*Client, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig().Eutils
	cfg.BaseURL = server.URL
	cfg.ChunkSize = 16

	var diag bytes.Buffer
	return NewClient(cfg, WithDiagnostics(log.New(&diag, "", 0))), &diag
}

func TestFetchFASTA(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"header":{},"esearchresult":{"count":"1","idlist":["568815597"]}}`
	fake.responses[FuncFetch] = ">header text\nline1\nline2\nline3"
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "CM000670.1")
	require.NoError(t, err)
	require.NotNil(t, fasta)

	assert.Equal(t, "header text", fasta.Defline)
	assert.Equal(t, ">header text", fasta.Header())
	assert.Equal(t, "568815597", fasta.ID)
	assert.Equal(t, []string{"line1", "line2", "line3"}, slices.Collect(fasta.Lines.All()))
	assert.Empty(t, diag.String())

	searches := fake.calls(FuncSearch)
	require.Len(t, searches, 1)
	assert.Equal(t, "nuccore", searches[0].Get("db"))
	assert.Equal(t, "json", searches[0].Get("retmode"))
	assert.Equal(t, "CM000670.1", searches[0].Get("term"))

	fetches := fake.calls(FuncFetch)
	require.Len(t, fetches, 1)
	assert.Equal(t, "568815597", fetches[0].Get("id"))
	assert.Equal(t, "fasta", fetches[0].Get("rettype"))
	assert.Equal(t, "text", fetches[0].Get("retmode"))
}

func TestFetchFASTANothingFound(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"count":"0","idlist":[]}}`
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, fasta)
	assert.Contains(t, diag.String(), "Nothing was found for 'NOPE'")
	assert.Empty(t, fake.calls(FuncFetch), "no fetch call may be made")
}

func TestFetchFASTAMalformedSearchIsNothingFound(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"error":"bad term"}`
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "???")
	require.NoError(t, err)
	assert.Nil(t, fasta)
	assert.Contains(t, diag.String(), "Nothing was found")
	assert.Empty(t, fake.calls(FuncFetch))
}

func TestFetchFASTAMultipleIDsUsesFirst(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["11","22"]}}`
	fake.responses[FuncFetch] = ">first\nACGT\n"
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "ambiguous")
	require.NoError(t, err)
	require.NotNil(t, fasta)
	defer fasta.Close()

	assert.Contains(t, diag.String(), "More than one ID was found for 'ambiguous'")
	assert.Equal(t, "11", fake.calls(FuncFetch)[0].Get("id"))
}

func TestFetchFASTAUnexpectedOutput(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["1"]}}`
	fake.responses[FuncFetch] = "Error: record withdrawn\n"
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "X1")
	require.NoError(t, err)
	assert.Nil(t, fasta)
	assert.Contains(t, diag.String(), "Unexpected output from eutils:\nError: record withdrawn")
}

func TestFetchFASTASearchHTTPError(t *testing.T) {
	fake := newFakeEutils()
	fake.status[FuncSearch] = http.StatusServiceUnavailable
	fake.responses[FuncSearch] = "<html>busy</html>"
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "X1")
	require.NoError(t, err)
	assert.Nil(t, fasta)
	assert.Equal(t, "Nothing was found for 'X1'\n", diag.String())
	assert.Empty(t, fake.calls(FuncFetch))
}

func TestFetchFASTAFetchHTTPError(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["7"]}}`
	fake.status[FuncFetch] = http.StatusBadRequest
	fake.responses[FuncFetch] = "Error: bad id"
	client, diag := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "X1")
	require.NoError(t, err)
	assert.Nil(t, fasta)
	assert.Equal(t, "Unexpected output from eutils:\nError: bad id\n", diag.String())
}

func TestFetchFASTATransportError(t *testing.T) {
	fake := newFakeEutils()
	server := httptest.NewServer(fake)
	server.Close()

	cfg := config.DefaultConfig().Eutils
	cfg.BaseURL = server.URL
	client := NewClient(cfg, WithDiagnostics(log.New(io.Discard, "", 0)))

	_, err := client.FetchFASTA(context.Background(), "X1")
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetwork))
}

func TestClientClosesEachConnection(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["1"]}}`
	fake.responses[FuncFetch] = ">seq one\nAC"
	client, _ := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "seq")
	require.NoError(t, err)
	require.NotNil(t, fasta)
	require.NoError(t, fasta.Close())

	assert.Len(t, fake.calls(FuncSearch), 1)
	assert.Len(t, fake.calls(FuncFetch), 1)
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Zero(t, fake.keptAlive)
}

func TestFASTAWriteTo(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["1"]}}`
	fake.responses[FuncFetch] = ">seq one\nAC\nGT"
	client, _ := newTestClient(t, fake)

	fasta, err := client.FetchFASTA(context.Background(), "seq")
	require.NoError(t, err)
	require.NotNil(t, fasta)

	var out bytes.Buffer
	n, err := fasta.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, ">seq one\nAC\nGT\n", out.String())
	assert.Equal(t, int64(out.Len()), n)
}

const runsSummary = `{
  "header": {"type": "esummary", "version": "0.3"},
  "result": {
    "uids": ["200", "100"],
    "100": {
      "uid": "100",
      "expxml": "&lt;Summary&gt;&lt;Title&gt;x&lt;/Title&gt;&lt;/Summary&gt;",
      "runs": "&lt;Run acc=\"SRR1\" total_spots=\"10\" total_bases=\"100\" load_done=\"true\" is_public=\"true\"/&gt;"
    },
    "200": {
      "uid": "200",
      "runs": "<Run acc=\"SRR2\" total_spots=\"1\" total_bases=\"2\" load_done=\"true\" is_public=\"false\"/><Run acc=\"SRR3\" total_spots=\"3\" total_bases=\"4\" load_done=\"true\" is_public=\"true\"/>"
    }
  }
}`

func TestFetchRuns(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["200","100"]}}`
	fake.responses[FuncSummary] = runsSummary
	client, _ := newTestClient(t, fake)

	runs, err := client.FetchRuns(context.Background(), "PRJNA1")
	require.NoError(t, err)
	require.Len(t, runs, 3)

	assert.Equal(t, "SRR2", runs[0].Accession())
	assert.Equal(t, "SRR3", runs[1].Accession())
	assert.Equal(t, "SRR1", runs[2].Accession())
	assert.True(t, runs[2].IsPublic())
	assert.Equal(t, int64(100), runs[2].TotalBases())

	assert.Equal(t, "sra", fake.calls(FuncSearch)[0].Get("db"))
	summaries := fake.calls(FuncSummary)
	require.Len(t, summaries, 1)
	assert.Equal(t, "200,100", summaries[0].Get("id"))
	assert.Equal(t, "sra", summaries[0].Get("db"))
	assert.Equal(t, "json", summaries[0].Get("retmode"))
}

func TestFetchRunsFragmentWithoutRuns(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["7"]}}`
	fake.responses[FuncSummary] = `{"result":{"uids":["7"],"7":{"uid":"7","runs":"&lt;Summary/&gt;"}}}`
	client, _ := newTestClient(t, fake)

	runs, err := client.FetchRuns(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFetchRunsMalformedResponses(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		summary string
	}{
		{"search not json", `<html>`, ``},
		{"search without idlist", `{"esearchresult":{}}`, ``},
		{"summary not json", `{"esearchresult":{"idlist":["1"]}}`, `oops`},
		{"summary without uids", `{"esearchresult":{"idlist":["1"]}}`, `{"result":{}}`},
		{"summary record wrong shape", `{"esearchresult":{"idlist":["1"]}}`, `{"result":{"uids":["1"],"1":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeEutils()
			fake.responses[FuncSearch] = tt.search
			fake.responses[FuncSummary] = tt.summary
			client, _ := newTestClient(t, fake)

			runs, err := client.FetchRuns(context.Background(), "term")
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}

func TestFetchRunsNothingFoundSkipsSummary(t *testing.T) {
	fake := newFakeEutils()
	fake.responses[FuncSearch] = `{"esearchresult":{"idlist":[]}}`
	client, diag := newTestClient(t, fake)

	runs, err := client.FetchRuns(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Empty(t, fake.calls(FuncSummary))
	assert.Contains(t, diag.String(), "Nothing was found for 'nothing'")
}

func TestFetchRunsHTTPError(t *testing.T) {
	tests := []struct {
		name     string
		function string
	}{
		{"search", FuncSearch},
		{"summary", FuncSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeEutils()
			fake.responses[FuncSearch] = `{"esearchresult":{"idlist":["1"]}}`
			fake.responses[FuncSummary] = `{"result":{"uids":["1"],"1":{"runs":"&lt;Run acc=\"SRR1\"/&gt;"}}}`
			fake.status[tt.function] = http.StatusBadGateway
			fake.responses[tt.function] = "<html>bad gateway</html>"
			client, _ := newTestClient(t, fake)

			runs, err := client.FetchRuns(context.Background(), "term")
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}
