package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/nishad/srake-eutils/internal/eutils"
	"github.com/spf13/cobra"
)

var fastaCmd = &cobra.Command{
	Use:   "fasta <accession> [accessions...]",
	Short: "Fetch FASTA records for sequence accessions",
	Long: `Resolve each accession in the sequence database and print its FASTA record:
the defline followed by every sequence line, streamed as it is received.

When an accession matches nothing, or the service answers with something that
is not FASTA, a diagnostic is printed to stderr and the accession is skipped.
When it matches more than one record the first is used.`,
	Example: `  srake-eutils fasta CM000670.1
  srake-eutils fasta NC_000001.11 NC_000002.12 --output chr1-2.fa
  srake-eutils fasta --file accessions.txt`,
	RunE: runFASTA,
}

var (
	fastaFile   string
	fastaOutput string
)

func init() {
	fastaCmd.Flags().StringVar(&fastaFile, "file", "", "Read accessions from file, one per line (- for stdin)")
	fastaCmd.Flags().StringVarP(&fastaOutput, "output", "o", "", "Write records to file instead of stdout")
}

func runFASTA(cmd *cobra.Command, args []string) error {
	accessions := args
	if fastaFile != "" {
		fromFile, err := readAccessionFile(fastaFile)
		if err != nil {
			return fmt.Errorf("failed to read accessions: %w", err)
		}
		accessions = append(accessions, fromFile...)
	}
	if len(accessions) == 0 {
		return nil
	}

	out, err := openOutput(fastaOutput)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer out.Close()

	return writeFASTA(cmd.Context(), newClient(os.Stderr), accessions, out)
}

type fastaFetcher interface {
	FetchFASTA(ctx context.Context, accession string) (*eutils.FASTA, error)
}

// writeFASTA fetches each accession in turn and writes the records found.
// A failed lookup does not stop the remaining ones.
func writeFASTA(ctx context.Context, client fastaFetcher, accessions []string, out io.Writer) error {
	failed := 0
	for _, acc := range accessions {
		printDebug("Fetching %s", acc)

		fasta, err := client.FetchFASTA(ctx, acc)
		if err != nil {
			printError("Failed to fetch %s: %v", acc, err)
			failed++
			continue
		}
		if fasta == nil {
			continue
		}

		if _, err := fasta.WriteTo(out); err != nil {
			printError("Failed to write %s: %v", acc, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d accessions failed", failed, len(accessions))
	}
	return nil
}
