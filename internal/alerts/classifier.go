// Package alerts implements the budget alert core: severity classification,
// session-local dismissal, the usage meter policy, and the polling loop.
package alerts

import "spendlens/internal/model"

// Tone is a semantic color slot resolved to concrete colors by the
// presentation layer.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneInfo
	ToneWarning
	ToneDanger
)

// StyleProfile describes how one alert severity is presented: which icon to
// draw and which tone the border, text, and icon take.
type StyleProfile struct {
	Name string
	Icon string
	Tone Tone
}

var (
	profileDanger  = StyleProfile{Name: "danger", Icon: "▲", Tone: ToneDanger}
	profileWarning = StyleProfile{Name: "warning", Icon: "◆", Tone: ToneWarning}
	profileInfo    = StyleProfile{Name: "info", Icon: "●", Tone: ToneInfo}
	// profileDefault renders the same as info today; kept separate so the
	// two can diverge without touching call sites.
	profileDefault = StyleProfile{Name: "default", Icon: "●", Tone: ToneInfo}
)

// Classify maps an alert severity to its presentation profile. Total over
// all inputs: unrecognized or empty severities get the default profile.
func Classify(level model.Severity) StyleProfile {
	switch level {
	case model.SeverityDanger:
		return profileDanger
	case model.SeverityWarning:
		return profileWarning
	case model.SeverityInfo:
		return profileInfo
	default:
		return profileDefault
	}
}
