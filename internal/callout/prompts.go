package callout

import "fmt"

// DailyPrompt is the task the agent receives on a scheduled run. The
// investigation strategy itself lives in the system prompt; this just
// scopes the run to one snapshot date.
func DailyPrompt(date string) string {
	return fmt.Sprintf(`Generate the daily experiment callout for %s.

Steps:
1. Get the list of live experiments
2. For each experiment with an analysis_id, check for significant metrics
3. Prioritize: primary metrics > secondary > guardrails
4. If you see conflicting patterns or large movements, investigate why
5. Generate a concise callout for the team

Focus on actionable insights. Skip experiments with no significant movements.`, date)
}

// AnalyzePrompt asks for a deep dive into a single experiment.
func AnalyzePrompt(projectName, analysisID string) string {
	return fmt.Sprintf(`Analyze the experiment %q (analysis_id: %s).

1. Get the experiment brief to understand the feature
2. Get all significant metrics
3. If you see conflicting patterns, investigate why
4. Provide a detailed analysis with recommendations

Be thorough but concise.`, projectName, analysisID)
}
