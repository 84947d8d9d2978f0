// Package diagnosis runs the guided customer self-diagnosis flow: a fixed
// question set, a signal-based assessment, and part suggestions.
package diagnosis

import "math"

// Question is one guided question shown to the customer.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Assessment is the outcome of evaluating a customer's answers.
type Assessment struct {
	LikelyIssue string   `json:"likely_issue"`
	Confidence  float64  `json:"confidence"`
	Signals     []string `json:"signals"`
	LikelyFix   string   `json:"likely_fix"`
}

var defaultQuestions = []Question{
	{ID: "power_on", Question: "Does the device power on?", Options: []string{"yes", "no", "sometimes"}},
	{ID: "noise", Question: "Do you hear unusual noise or vibration?", Options: []string{"yes", "no"}},
	{ID: "leak", Question: "Is there any leakage or smell?", Options: []string{"yes", "no"}},
	{ID: "performance", Question: "Is the device performance reduced (cooling/heating/washing)?", Options: []string{"yes", "no", "not_sure"}},
	{ID: "display", Question: "Are there display or error-code issues?", Options: []string{"yes", "no", "not_applicable"}},
}

var likelyFixes = map[string]string{
	"power_issue":       "Check power supply, adapter, and internal fuse.",
	"leak_issue":        "Inspect seals/hoses and drainage.",
	"performance_issue": "Clean filters and check airflow/components.",
	"display_issue":     "Inspect display cable and module.",
	"noise_issue":       "Check loose parts and moving components.",
}

var partsBySignal = map[string][]string{
	"power":       {"power cable", "power adapter", "power module"},
	"leak":        {"hose", "seal", "drain pump"},
	"performance": {"filter", "fan", "compressor"},
	"display":     {"display cable", "display panel"},
	"noise":       {"fan", "motor", "bearing"},
}

// Service implements guided self-diagnosis.
type Service struct{}

// NewService returns a self-diagnosis service.
func NewService() *Service {
	return &Service{}
}

// Questions returns the guided question set. The device category is accepted
// for future category-specific question banks; every category shares the
// default set for now.
func (s *Service) Questions(deviceCategory string) []Question {
	return defaultQuestions
}

// Assess evaluates the customer's answers. Power problems dominate the
// diagnosis, then leaks, then performance, display, and noise.
func (s *Service) Assess(answers map[string]string) Assessment {
	signals := []string{}
	if a := answers["power_on"]; a == "no" || a == "sometimes" {
		signals = append(signals, "power")
	}
	if answers["noise"] == "yes" {
		signals = append(signals, "noise")
	}
	if answers["leak"] == "yes" {
		signals = append(signals, "leak")
	}
	if answers["performance"] == "yes" {
		signals = append(signals, "performance")
	}
	if answers["display"] == "yes" {
		signals = append(signals, "display")
	}

	likelyIssue := "general"
	switch {
	case contains(signals, "power"):
		likelyIssue = "power_issue"
	case contains(signals, "leak"):
		likelyIssue = "leak_issue"
	case contains(signals, "performance"):
		likelyIssue = "performance_issue"
	case contains(signals, "display"):
		likelyIssue = "display_issue"
	case contains(signals, "noise"):
		likelyIssue = "noise_issue"
	}

	confidence := math.Min(0.4+0.1*float64(len(signals)), 0.9)
	confidence = math.Round(confidence*100) / 100

	fix, ok := likelyFixes[likelyIssue]
	if !ok {
		fix = "Run basic diagnostics and inspect the device."
	}

	return Assessment{
		LikelyIssue: likelyIssue,
		Confidence:  confidence,
		Signals:     signals,
		LikelyFix:   fix,
	}
}

// SuggestParts maps diagnosis signals to likely replacement parts, at most
// three, deduplicated in signal order.
func (s *Service) SuggestParts(signals []string) []string {
	seen := make(map[string]bool)
	parts := []string{}
	for _, signal := range signals {
		for _, part := range partsBySignal[signal] {
			if seen[part] {
				continue
			}
			seen[part] = true
			parts = append(parts, part)
		}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return parts
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
