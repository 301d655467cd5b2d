package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/credibility-cli/internal/model"
)

const (
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatTable = "table"
)

// writeValue encodes v to w as JSON or YAML.
func writeValue(w io.Writer, format string, v any) error {
	switch format {
	case "", formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(v), "encode json")
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return eris.Wrap(enc.Close(), "encode yaml")
	default:
		return eris.Errorf("unsupported format %q", format)
	}
}

// writeResults prints one or more analysis results. The table format prints
// a human-readable report per result; labels head each report when given.
func writeResults(w io.Writer, format string, v any, labels []string, results ...*model.AnalysisResult) error {
	if format != formatTable {
		return writeValue(w, format, v)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if i < len(labels) && labels[i] != "" {
			fmt.Fprintf(w, "== %s ==\n", labels[i])
		}
		if err := writeTable(w, r); err != nil {
			return err
		}
	}
	return nil
}

// writeTable prints r as an aligned report.
func writeTable(w io.Writer, r *model.AnalysisResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Score:\t%d\n", r.Score)
	fmt.Fprintf(tw, "Credibility:\t%s\n", r.Credibility)
	if r.MLInsights != nil {
		fmt.Fprintf(tw, "Suspicion:\t%.2f\n", r.MLInsights.SuspicionProbability)
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "write report")
	}

	if len(r.Flags) > 0 {
		fmt.Fprintln(w, "\nFlags:")
		for _, f := range r.Flags {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	if len(r.Breakdown.Deductions) > 0 {
		fmt.Fprintln(w, "\nDeductions:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  CHECK\tPENALTY\tREASON")
		for _, d := range r.Breakdown.Deductions {
			fmt.Fprintf(tw, "  %s\t-%d\t%s\n", d.Check, d.Penalty, d.Reason)
		}
		if err := tw.Flush(); err != nil {
			return eris.Wrap(err, "write report")
		}
	}

	if r.MLInsights != nil && len(r.MLInsights.TopTerms) > 0 {
		terms := make([]string, len(r.MLInsights.TopTerms))
		for i, t := range r.MLInsights.TopTerms {
			terms[i] = fmt.Sprintf("%s (%.2f)", t.Term, t.Weight)
		}
		fmt.Fprintf(w, "\nTop terms: %s\n", strings.Join(terms, ", "))
	}
	return nil
}
