package eutils

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/nishad/srake-eutils/internal/errors"
)

// DeflineMarker starts the header line of every FASTA record.
const DeflineMarker = ">"

// FASTA is a fetched record: its header plus the unread sequence lines.
// Lines holds the response body open until it is drained or closed.
type FASTA struct {
	ID      string // identifier the accession resolved to
	Defline string // header text without the leading '>'
	Lines   *LineReader
}

// Header returns the defline as it appears in the record.
func (f *FASTA) Header() string {
	return DeflineMarker + f.Defline
}

// Close releases the response body.
func (f *FASTA) Close() error {
	return f.Lines.Close()
}

// WriteTo writes the header and every remaining sequence line to w, one
// per line, then closes the body.
func (f *FASTA) WriteTo(w io.Writer) (int64, error) {
	defer f.Close()

	bw := bufio.NewWriter(w)
	var n int64
	write := func(s string) error {
		m, err := bw.WriteString(s)
		n += int64(m)
		if err != nil {
			return err
		}
		err = bw.WriteByte('\n')
		if err == nil {
			n++
		}
		return err
	}

	if err := write(f.Header()); err != nil {
		return n, err
	}
	for f.Lines.Next() {
		if err := write(f.Lines.Text()); err != nil {
			return n, err
		}
	}
	if err := f.Lines.Err(); err != nil {
		return n, errors.E(errors.Op("eutils.FASTA.WriteTo"), errors.KindNetwork, err)
	}
	return n, bw.Flush()
}

// FetchFASTA resolves acc in the sequence database and fetches the FASTA
// record of the first identifier found.
//
// A nil FASTA with a nil error means the record is absent: nothing matched,
// or the service returned something that is not FASTA. Both cases are
// reported to the diagnostics logger. When more than one identifier
// matches, that is reported too and the first is used.
//
// ctx must stay live until the returned Lines are drained.
func (c *Client) FetchFASTA(ctx context.Context, acc string) (*FASTA, error) {
	const op errors.Op = "eutils.FetchFASTA"

	ids, err := c.Search(ctx, c.cfg.SequenceDB, acc)
	if err != nil && !errors.IsKind(err, errors.KindMalformed) {
		return nil, errors.Wrap(op, err)
	}
	if len(ids) == 0 {
		c.diagnose("Nothing was found for '%s'", acc)
		return nil, nil
	}
	if len(ids) > 1 {
		c.diagnose("More than one ID was found for '%s'", acc)
	}

	lines, err := c.getStream(ctx, FuncFetch, map[string]string{
		"db":      c.cfg.SequenceDB,
		"retmode": "text",
		"rettype": "fasta",
		"id":      ids[0],
	})
	if err != nil {
		return nil, errors.Wrap(op, err)
	}

	var defline string
	if lines.Next() {
		defline = lines.Text()
	} else if err := lines.Err(); err != nil {
		return nil, errors.E(op, errors.KindNetwork, err, "reading efetch response")
	}

	if !strings.HasPrefix(defline, DeflineMarker) {
		errors.IgnoreError(lines.Close(), "closing unexpected efetch body")
		c.diagnose("Unexpected output from eutils:\n%s", defline)
		return nil, nil
	}

	return &FASTA{
		ID:      ids[0],
		Defline: strings.TrimPrefix(defline, DeflineMarker),
		Lines:   lines,
	}, nil
}
