package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"likertlab/domain/stats"
	"likertlab/internal/config"
	"likertlab/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

// ReportRenderer writes reports as text, JSON, YAML, Markdown or HTML
type ReportRenderer struct{}

// NewReportRenderer creates a new report renderer
func NewReportRenderer() *ReportRenderer {
	return &ReportRenderer{}
}

// Render writes report to w in the given format
func (r *ReportRenderer) Render(w io.Writer, report *Report, format string) error {
	switch strings.ToLower(format) {
	case config.FormatText, "":
		return r.renderText(w, report)
	case config.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case config.FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return err
		}
		return encoder.Close()
	case config.FormatMarkdown:
		_, err := io.WriteString(w, r.markdown(report))
		return err
	case config.FormatHTML:
		_, err := w.Write(r.html(report))
		return err
	default:
		return errors.InvalidInput(fmt.Sprintf("unknown output format %q", format))
	}
}

// ============================================================================
// TEXT
// ============================================================================

func (r *ReportRenderer) renderText(w io.Writer, report *Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Run\t%s\n", report.RunID)
	fmt.Fprintf(tw, "Source\t%s\n", report.Source)
	if report.Sheet != "" {
		fmt.Fprintf(tw, "Sheet\t%s\n", report.Sheet)
	}
	fmt.Fprintf(tw, "Experiment\t%d\n", report.Experiment)
	fmt.Fprintf(tw, "Observations\t%d\n", report.NObs)
	fmt.Fprintf(tw, "Fingerprint\t%s\n", report.Fingerprint.Short())

	if s := report.Summary; s != nil {
		fmt.Fprintf(tw, "\nDESCRIPTIVES (quantile type %d)\n", s.QuantileType)
		fmt.Fprintln(tw, "condition\tn\tmedian\tQ1\tQ3\tIQR\tmean\tsd\tmin\tmax\t")
		for _, l := range s.Levels {
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t%.3f\t%.0f\t%.0f\t\n",
				l.Condition, l.N, l.Median, l.Q1, l.Q3, l.IQR, l.Mean, l.SD, l.Min, l.Max)
		}
	}
	if t := report.Contingency; t != nil {
		fmt.Fprintln(tw, "\nCOUNTS")
		fmt.Fprint(tw, "condition\t")
		for _, rating := range t.Ratings {
			fmt.Fprintf(tw, "%d\t", rating)
		}
		fmt.Fprintln(tw)
		for i, level := range t.Levels {
			fmt.Fprintf(tw, "%s\t", level)
			for _, c := range t.Counts[i] {
				fmt.Fprintf(tw, "%d\t", c)
			}
			fmt.Fprintln(tw)
		}
		fmt.Fprint(tw, "total\t")
		for _, c := range t.ColumnTotals() {
			fmt.Fprintf(tw, "%d\t", c)
		}
		fmt.Fprintln(tw)
	}

	for _, res := range []*stats.TestResult{report.RankSum, report.TTest} {
		if res == nil {
			continue
		}
		fmt.Fprintf(tw, "\n%s\n", strings.ToUpper(res.Method))
		fmt.Fprintf(tw, "data\t%s (n=%d) vs %s (n=%d)\n", res.Comparison, res.NComparison, res.Reference, res.NReference)
		if res.StatisticName == "t" {
			fmt.Fprintf(tw, "%s\t%.4f\tdf = %.3f\n", res.StatisticName, res.Statistic, res.DF)
		} else {
			fmt.Fprintf(tw, "%s\t%.1f\n", res.StatisticName, res.Statistic)
		}
		fmt.Fprintf(tw, "p-value\t%s\n", formatP(res.PValue))
		fmt.Fprintf(tw, "%s (%s)\t%.4f\n", res.EstimateName, res.Orientation(), res.Estimate)
		fmt.Fprintf(tw, "%.0f%% CI\t[%.4f, %.4f]\n", res.CI.Level*100, res.CI.Lower, res.CI.Upper)
		for _, warning := range res.Warnings {
			fmt.Fprintf(tw, "warning\t%s\n", warning)
		}
	}

	if o := report.Ordinal; o != nil {
		m := o.Model
		fmt.Fprintf(tw, "\nCUMULATIVE LINK MODEL (%s link, baseline %s)\n", m.Link, m.Baseline)
		fmt.Fprintf(tw, "logLik\t%.4f\tAIC\t%.2f\titerations\t%d\tmax.grad\t%.2e\tcond.H\t%.1e\n",
			m.LogLik, m.AIC, m.Iterations, m.MaxGradient, m.ConditionNumber)
		fmt.Fprintln(tw, "coefficient\testimate\tstd.error\tz\tp\tCI\tmethod\t")
		for _, c := range m.Coefficients {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.3f\t%s\t[%.4f, %.4f]\t%s\t\n",
				c.Term, c.Estimate, c.StdError, c.ZValue, formatP(c.PValue), c.CI.Lower, c.CI.Upper, c.CIMethod)
		}
		fmt.Fprintln(tw, "threshold\testimate\tstd.error\tCI\t")
		for _, th := range m.Thresholds {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t[%.4f, %.4f]\t\n", th.Label, th.Estimate, th.StdError, th.CI.Lower, th.CI.Upper)
		}

		fmt.Fprintf(tw, "\nTYPE %s ANOVA (likelihood ratio)\n", o.Anova.Type)
		fmt.Fprintln(tw, "term\tdf\tLR chisq\tp\tWald chisq\tp\t")
		for _, row := range o.Anova.Rows {
			fmt.Fprintf(tw, "%s\t%d\t%.4f\t%s\t%.4f\t%s\t\n",
				row.Term, row.DF, row.LRChisq, formatP(row.PValue), row.WaldChisq, formatP(row.WaldPValue))
		}

		fmt.Fprintf(tw, "\nMARGINAL MEANS (%s scale)\n", o.MarginalMeans.Scale)
		fmt.Fprintln(tw, "condition\testimate\tstd.error\tCI\t")
		for _, mm := range o.MarginalMeans.Means {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t[%.4f, %.4f]\t\n", mm.Condition, mm.Estimate, mm.StdError, mm.CI.Lower, mm.CI.Upper)
		}
		for _, c := range o.MarginalMeans.Contrasts {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\tz = %.3f\tp = %s\n", c.Label, c.Estimate, c.StdError, c.ZValue, formatP(c.PValue))
		}

		fmt.Fprintln(tw, "\nPREDICTED MEAN CLASS")
		for _, p := range o.Predictions {
			fmt.Fprintf(tw, "%s\t%.3f\n", p.Condition, p.MeanClass)
		}
	}

	return tw.Flush()
}

// ============================================================================
// MARKDOWN / HTML
// ============================================================================

func (r *ReportRenderer) markdown(report *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Effectiveness analysis, experiment %d\n\n", report.Experiment)
	fmt.Fprintf(&b, "Source `%s`, %d observations, run `%s`, fingerprint `%s`.\n\n",
		report.Source, report.NObs, report.RunID, report.Fingerprint.Short())

	if s := report.Summary; s != nil {
		b.WriteString("## Descriptive statistics\n\n")
		b.WriteString("| condition | n | median | Q1 | Q3 | IQR | mean | sd |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, l := range s.Levels {
			fmt.Fprintf(&b, "| %s | %d | %.2f | %.2f | %.2f | %.2f | %.3f | %.3f |\n",
				l.Condition, l.N, l.Median, l.Q1, l.Q3, l.IQR, l.Mean, l.SD)
		}
		b.WriteString("\n")
	}
	if t := report.Contingency; t != nil {
		b.WriteString("| condition |")
		for _, rating := range t.Ratings {
			fmt.Fprintf(&b, " %d |", rating)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(t.Ratings)))
		b.WriteString("\n")
		for i, level := range t.Levels {
			fmt.Fprintf(&b, "| %s |", level)
			for _, c := range t.Counts[i] {
				fmt.Fprintf(&b, " %d |", c)
			}
			b.WriteString("\n")
		}
		b.WriteString("| **total** |")
		for _, c := range t.ColumnTotals() {
			fmt.Fprintf(&b, " %d |", c)
		}
		b.WriteString("\n\n")
	}

	tests := []*stats.TestResult{report.RankSum, report.TTest}
	if report.RankSum != nil || report.TTest != nil {
		b.WriteString("## Hypothesis tests\n\n")
		b.WriteString("| test | statistic | df | p | estimate | CI |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|\n")
		for _, res := range tests {
			if res == nil {
				continue
			}
			df := "-"
			if res.StatisticName == "t" {
				df = fmt.Sprintf("%.3f", res.DF)
			}
			fmt.Fprintf(&b, "| %s | %s = %.4g | %s | %s | %.4f (%s) | [%.4f, %.4f] |\n",
				res.Method, res.StatisticName, res.Statistic, df, formatP(res.PValue),
				res.Estimate, res.Orientation(), res.CI.Lower, res.CI.Upper)
		}
		b.WriteString("\n")
	}

	if o := report.Ordinal; o != nil {
		b.WriteString("## Ordinal regression\n\n")
		fmt.Fprintf(&b, "Cumulative link model, %s link, baseline `%s`; logLik %.4f, AIC %.2f.\n\n",
			o.Model.Link, o.Model.Baseline, o.Model.LogLik, o.Model.AIC)
		b.WriteString("| term | estimate | std. error | z | p | CI |\n")
		b.WriteString("|---|---:|---:|---:|---:|---|\n")
		for _, c := range o.Model.Coefficients {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.3f | %s | [%.4f, %.4f] (%s) |\n",
				c.Term, c.Estimate, c.StdError, c.ZValue, formatP(c.PValue), c.CI.Lower, c.CI.Upper, c.CIMethod)
		}
		b.WriteString("\n")
		for _, row := range o.Anova.Rows {
			fmt.Fprintf(&b, "Type %s LR test for `%s`: chisq = %.4f, df = %d, p = %s.\n\n",
				o.Anova.Type, row.Term, row.LRChisq, row.DF, formatP(row.PValue))
		}
		b.WriteString("| condition | marginal mean | std. error | CI |\n")
		b.WriteString("|---|---:|---:|---|\n")
		for _, mm := range o.MarginalMeans.Means {
			fmt.Fprintf(&b, "| %s | %.4f | %.4f | [%.4f, %.4f] |\n", mm.Condition, mm.Estimate, mm.StdError, mm.CI.Lower, mm.CI.Upper)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *ReportRenderer) html(report *Report) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	doc := parser.NewWithExtensions(extensions).Parse([]byte(r.markdown(report)))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: fmt.Sprintf("Effectiveness analysis, experiment %d", report.Experiment),
	})
	return bytes.TrimSpace(markdown.Render(doc, renderer))
}

func formatP(p float64) string {
	if p < 1e-4 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}
