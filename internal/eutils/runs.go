package eutils

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/nishad/srake-eutils/internal/errors"
	"github.com/nishad/srake-eutils/internal/runinfo"
)

// FetchRuns resolves term in the read archive database and returns the
// runs of every matching record, in identifier order. A search or summary
// response that does not have the expected shape, including an HTTP error
// status, yields an empty list and a nil error; only transport failures
// are returned.
func (c *Client) FetchRuns(ctx context.Context, term string) ([]runinfo.Run, error) {
	const op errors.Op = "eutils.FetchRuns"

	ids, err := c.Search(ctx, c.cfg.RunDB, term)
	if errors.IsKind(err, errors.KindMalformed) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	if len(ids) == 0 {
		c.diagnose("Nothing was found for '%s'", term)
		return nil, nil
	}

	fragments, err := c.summaryRuns(ctx, ids)
	if errors.IsKind(err, errors.KindMalformed) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(op, err)
	}

	var runs []runinfo.Run
	for _, fragment := range fragments {
		runs = append(runs, runinfo.Extract(fragment)...)
	}
	return runs, nil
}

// summaryRuns runs esummary for ids and returns the embedded run fragment
// of each record, ordered as result.uids lists them. Records without a
// runs field are skipped.
func (c *Client) summaryRuns(ctx context.Context, ids []string) ([]string, error) {
	const op errors.Op = "eutils.summaryRuns"

	var body struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	params := map[string]string{
		"db":      c.cfg.RunDB,
		"retmode": "json",
		"id":      strings.Join(ids, ","),
	}
	if err := c.getJSON(ctx, FuncSummary, params, &body); err != nil {
		return nil, errors.Wrap(op, err)
	}

	rawUIDs, ok := body.Result["uids"]
	if !ok {
		return nil, errors.E(op, errors.KindMalformed, "response has no result.uids")
	}
	var uids []string
	if err := json.Unmarshal(rawUIDs, &uids); err != nil {
		return nil, errors.E(op, errors.KindMalformed, err, "decoding result.uids")
	}

	fragments := make([]string, 0, len(uids))
	for _, uid := range uids {
		raw, ok := body.Result[uid]
		if !ok {
			continue
		}
		var record struct {
			Runs *string `json:"runs"`
		}
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, errors.E(op, errors.KindMalformed, err, "decoding summary for "+uid)
		}
		if record.Runs != nil {
			fragments = append(fragments, *record.Runs)
		}
	}
	return fragments, nil
}
