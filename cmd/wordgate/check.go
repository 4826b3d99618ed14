package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"wordgate/pkg/filter"
)

var (
	checkNoCache bool
	checkSummary bool
)

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Print a JSON verdict per text (args, or one text per stdin line)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(!checkNoCache)
		if err != nil {
			return err
		}
		defer a.Close()

		texts := args
		if len(texts) == 0 {
			if texts, err = readLines(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		res, err := a.filter.CheckBatch(context.Background(), texts)
		if err != nil {
			return err
		}
		if err := writeVerdicts(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if checkSummary {
			st := a.filter.Stats()
			log.Printf("Checked %d texts: %d flagged in %s (filter %s, %d patterns, %d allowed)",
				res.Total, res.Flagged, res.Elapsed, a.filter.Status(), st.Patterns, st.Allowed)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "read word lists straight from the store")
	checkCmd.Flags().BoolVar(&checkSummary, "summary", false, "log a summary line after the verdicts")
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), 1024*1024)
	for scanner.Scan() {
		out = append(out, strings.TrimRight(scanner.Text(), "\r"))
	}
	return out, scanner.Err()
}

func writeVerdicts(w io.Writer, res *filter.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, v := range res.Verdicts {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
