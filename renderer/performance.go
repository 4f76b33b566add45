package renderer

// PerformanceMarkdown renders the performance section as a standalone report.
func PerformanceMarkdown(s *PerformanceSummary) string {
	return renderTemplate("performance", "templates/report_performance.md", nil, s)
}
