// Package story holds the user-supplied story intent and builds the
// two-message prompt conversation the LLM client sends to the agent
// capability.
package story

import "fmt"

// Arc carries free-text guidance per narrative stage.
type Arc struct {
	Hook       string
	Build      string
	Climax     string
	Resolution string
}

// StylePreferences carries free-text styling guidance.
type StylePreferences struct {
	Pacing      string
	Transitions string
	Emphasis    string
}

// Intent is the user-supplied editorial brief for one generate
// request.
type Intent struct {
	TargetAudience          string
	Tone                    string
	KeyMessage              string
	DesiredLengthPercentage float64 // 0 means unset; valid range [25, 100]
	DesiredLength           string  // legacy: "short"|"medium"|"long"
	Arc                     Arc
	Style                   StylePreferences
}

// legacyLengthPercentages maps the deprecated desired_length enum to
// an equivalent desired_length_percentage.
var legacyLengthPercentages = map[string]float64{
	"short":  30,
	"medium": 50,
	"long":   85,
}

// LengthPercentage resolves the effective desired_length_percentage,
// preferring the numeric field and falling back to the legacy enum,
// defaulting to 50 (medium) when neither is set.
func (i Intent) LengthPercentage() float64 {
	if i.DesiredLengthPercentage > 0 {
		return i.DesiredLengthPercentage
	}
	if pct, ok := legacyLengthPercentages[i.DesiredLength]; ok {
		return pct
	}
	return 50
}

// TargetDurationSecs computes target = max(minimum, duration*pct/100),
// where minimum is 20s for sources longer than 20s, else 0.6*duration
// (spec §4.7 task description).
func TargetDurationSecs(sourceDurationSecs, lengthPercentage float64) float64 {
	minimum := 20.0
	if sourceDurationSecs <= 20 {
		minimum = 0.6 * sourceDurationSecs
	}
	target := sourceDurationSecs * lengthPercentage / 100
	if target < minimum {
		target = minimum
	}
	return target
}

func (i Intent) summarizeArc() string {
	return fmt.Sprintf("hook=%q build=%q climax=%q resolution=%q", i.Arc.Hook, i.Arc.Build, i.Arc.Climax, i.Arc.Resolution)
}

func (i Intent) summarizeStyle() string {
	return fmt.Sprintf("pacing=%q transitions=%q emphasis=%q", i.Style.Pacing, i.Style.Transitions, i.Style.Emphasis)
}
