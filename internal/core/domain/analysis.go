package domain

// Analysis is the authoritative structured result produced once the
// generation stream has completed and parsed successfully.
type Analysis struct {
	Summary       string `json:"summary"`
	PainPoints    string `json:"pain_points"`
	TalkingPoints string `json:"talking_points"`
	Objections    string `json:"objections"`
	NextSteps     string `json:"next_steps"`
}

// AnalysisFieldNames lists the string fields scanned out of the partial
// stream, in display order.
var AnalysisFieldNames = []string{
	"summary",
	"pain_points",
	"talking_points",
	"objections",
	"next_steps",
}

// AnalysisSnapshot is a best-effort view of the analysis assembled from an
// incomplete stream. Field values only grow between snapshots; a field
// missing from the map has not been observed yet.
type AnalysisSnapshot struct {
	Fields map[string]string `json:"fields"`
}

// AnalysisResult is a completed analysis plus where it came from. FromCache
// distinguishes a replayed answer from one freshly streamed.
type AnalysisResult struct {
	Analysis  *Analysis `json:"analysis"`
	FromCache bool      `json:"from_cache"`
}
