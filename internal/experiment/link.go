package experiment

import "regexp"

// Results-dashboard links carry the analysis UUID in one of two shapes:
// an analysisId query parameter or an /analysis/ path segment.
var (
	analysisQueryRe = regexp.MustCompile(`(?i)analysisId=([a-f0-9\-]+)`)
	analysisPathRe  = regexp.MustCompile(`/analysis/([a-f0-9\-]+)`)
)

// ExtractAnalysisID pulls the analysis UUID out of a dashboard link.
// Returns the empty string when the link carries no recognizable ID.
func ExtractAnalysisID(link string) string {
	if link == "" {
		return ""
	}
	if m := analysisQueryRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	if m := analysisPathRe.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}
