package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/nishad/srake-eutils/internal/runinfo"
	"github.com/nishad/srake-eutils/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var runsCmd = &cobra.Command{
	Use:   "runs <term>",
	Short: "List SRA runs matching a search term",
	Long: `Search the Sequence Read Archive for a term and list the runs of every
matching record. By default only run accessions are printed, one per line.

Runs can be narrowed with a filter written in query string syntax over the run
attributes (acc, total_spots, total_bases, load_done, is_public, ...), saved to
the local run cache, or read back from it without contacting the service.`,
	Example: `  srake-eutils runs PRJNA257197
  srake-eutils runs "SRX1234567" --format table
  srake-eutils runs PRJNA257197 --filter "+is_public:true +total_bases:>1000000000"
  srake-eutils runs PRJNA257197 --save
  srake-eutils runs PRJNA257197 --cached --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRuns,
}

var (
	runsFormat string
	runsOutput string
	runsFilter string
	runsSave   bool
	runsCached bool
)

func init() {
	runsCmd.Flags().StringVarP(&runsFormat, "format", "f", "accession", "Output format (accession|table|json|yaml)")
	runsCmd.Flags().StringVarP(&runsOutput, "output", "o", "", "Save results to file")
	runsCmd.Flags().StringVar(&runsFilter, "filter", "", "Only keep runs matching this query string")
	runsCmd.Flags().BoolVar(&runsSave, "save", false, "Save fetched runs to the local run cache")
	runsCmd.Flags().BoolVar(&runsCached, "cached", false, "Read runs from the local run cache instead of the service")
	runsCmd.MarkFlagsMutuallyExclusive("save", "cached")
}

func runRuns(cmd *cobra.Command, args []string) error {
	term := strings.Join(args, " ")

	switch runsFormat {
	case "accession", "table", "json", "yaml":
	default:
		return fmt.Errorf("unsupported format %q", runsFormat)
	}

	var (
		runs []runinfo.Run
		err  error
	)
	if runsCached {
		runs, err = cachedRuns(term)
	} else {
		err = ui.ShowSpinner(fmt.Sprintf("Searching SRA for %q", term), !quiet, func(diag io.Writer) error {
			var fetchErr error
			runs, fetchErr = newClient(diag).FetchRuns(cmd.Context(), term)
			return fetchErr
		})
	}
	if err != nil {
		return err
	}

	runs, err = filterRuns(runs, runsFilter)
	if err != nil {
		return err
	}

	if runsSave {
		if err := saveRuns(term, runs); err != nil {
			return err
		}
	}

	out, err := openOutput(runsOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	return writeRuns(out, runs, runsFormat)
}

// filterRuns applies filter, warning when it discards every run
func filterRuns(runs []runinfo.Run, filter string) ([]runinfo.Run, error) {
	matched, err := runinfo.Filter(runs, filter)
	if err != nil {
		return nil, err
	}
	if len(runs) > 0 && len(matched) == 0 {
		printWarning("Filter %q matched none of the %d runs", filter, len(runs))
	}
	return matched, nil
}

func cachedRuns(term string) ([]runinfo.Run, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	printDebug("Reading runs for %q from %s", term, s.Path())
	return s.RunsForTerm(term)
}

func saveRuns(term string, runs []runinfo.Run) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	saved, err := s.SaveRuns(term, runs)
	if err != nil {
		return err
	}
	printSuccess("Saved %d runs to %s", saved, s.Path())
	return nil
}

// writeRuns renders runs in the given format
func writeRuns(w io.Writer, runs []runinfo.Run, format string) error {
	if runs == nil {
		runs = []runinfo.Run{}
	}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(runs)

	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(runs)

	case "table":
		return writeRunsTable(w, runs)

	default:
		for _, run := range runs {
			if _, err := fmt.Fprintln(w, run.Accession()); err != nil {
				return err
			}
		}
		return nil
	}
}

// writeRunsTable prints the common attributes as columns, then any others
// present on at least one run
func writeRunsTable(w io.Writer, runs []runinfo.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found")
		return err
	}

	common := []string{
		runinfo.AttrAccession,
		runinfo.AttrTotalSpots,
		runinfo.AttrTotalBases,
		runinfo.AttrIsPublic,
		runinfo.AttrLoadDone,
	}
	seen := make(map[string]bool, len(common))
	for _, name := range common {
		seen[name] = true
	}
	var extra []string
	for _, run := range runs {
		for name := range run {
			if !seen[name] {
				seen[name] = true
				extra = append(extra, name)
			}
		}
	}
	sort.Strings(extra)
	columns := append(common, extra...)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := make([]string, len(columns))
	for i, name := range columns {
		header[i] = colorize(colorBold, strings.ToUpper(name))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, run := range runs {
		row := make([]string, len(columns))
		for i, name := range columns {
			row[i] = run[name]
		}
		row[0] = colorize(colorCyan, row[0])
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
