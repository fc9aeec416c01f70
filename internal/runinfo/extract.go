package runinfo

import (
	"encoding/xml"
	"io"
	"strings"
)

// The fragment arrives with its markup entity-escaped, and the list of
// Run elements has no single root.
var entityUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
)

const (
	rootOpen  = "<Runs>"
	rootClose = "</Runs>"
)

// Extract returns one Run per Run element in fragment, in document order.
// Elements with any other name are ignored. A fragment that does not parse
// yields nil.
func Extract(fragment string) []Run {
	// Markup that is already unescaped keeps its own entities.
	if strings.Contains(fragment, "&lt;") {
		fragment = entityUnescaper.Replace(fragment)
	}
	doc := rootOpen + fragment + rootClose

	decoder := xml.NewDecoder(strings.NewReader(doc))
	decoder.Strict = true

	var runs []Run
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return runs
		}
		if err != nil {
			return nil
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Run" {
			continue
		}

		run := make(Run, len(start.Attr))
		for _, attr := range start.Attr {
			run[attr.Name.Local] = attr.Value
		}
		runs = append(runs, run)
	}
}
