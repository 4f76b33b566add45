// Package renderer turns analytics results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/quantfolio/portfolio"
)

//go:embed templates/*.md
var templates embed.FS

// AnalyticsReport bundles every section of a full portfolio report. Sections
// left nil are skipped.
type AnalyticsReport struct {
	AsOf     portfolio.Date
	Currency string

	Holdings    *portfolio.HoldingsResult
	Performance *PerformanceSummary
	Risk        *portfolio.RiskMetricsResult
}

// PerformanceSummary carries the performance figures a report displays.
type PerformanceSummary struct {
	Range        portfolio.Range
	TimeWeighted portfolio.Ratio
	Annualized   portfolio.Metric
	// MoneyWeighted is invalid when the IRR did not converge.
	MoneyWeighted portfolio.Metric
}

// ReportMarkdown renders the full analytics report to a markdown string.
func ReportMarkdown(r *AnalyticsReport) string {
	partials := map[string]string{
		"report_holdings":    "templates/report_holdings.md",
		"report_performance": "templates/report_performance.md",
		"report_risk":        "templates/report_risk.md",
	}
	return renderTemplate("report", "templates/report.md", partials, r)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := templates.ReadFile(mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = templates.ReadFile(file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Funcs(funcs).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}

// funcs are the display helpers shared by all templates.
var funcs = template.FuncMap{
	"pct":  func(r portfolio.Ratio) string { return r.Percent().String() },
	"spct": func(r portfolio.Ratio) string { return r.Percent().SignedString() },

	// metric renders a plain figure (Sharpe, Calmar), metricPct a rate.
	// Undefined metrics display as "n/a" rather than a zero that looks
	// like a result.
	"metric": func(m portfolio.Metric) string {
		if !m.Valid {
			return "n/a"
		}
		return m.Value.Round(2).String()
	},
	"metricPct": func(m portfolio.Metric) string {
		if !m.Valid {
			return "n/a"
		}
		return m.Value.Percent().SignedString()
	},
}
