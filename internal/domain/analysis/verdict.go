package analysis

import (
	"bytes"
	"encoding/json"
)

// ParseVerdict validates the model's raw answer.
//
// Anything that is syntactically valid JSON is accepted and kept byte for
// byte in Verdict.Raw. The typed view (Report / Reports) is filled in only
// when the value matches the documented shape for mode. With strict set, a
// value that does not match is rejected with a *FormatError as well.
func ParseVerdict(raw string, mode Mode, strict bool) (Verdict, error) {
	b := bytes.TrimSpace([]byte(raw))
	if len(b) == 0 || !json.Valid(b) {
		return Verdict{}, newFormatError(raw, "invalid json")
	}

	v := Verdict{Mode: mode, Raw: json.RawMessage(b)}
	switch mode {
	case ModePerFile:
		var reports map[string]ReportEntry
		if err := json.Unmarshal(b, &reports); err == nil && len(reports) > 0 && allRecognized(reports) {
			v.Reports = reports
		}
	default:
		var report ReportEntry
		if err := json.Unmarshal(b, &report); err == nil && report.recognized() {
			v.Report = &report
		}
	}

	if strict && !v.Recognized() {
		return Verdict{}, newFormatError(raw, "schema mismatch")
	}
	return v, nil
}

func allRecognized(m map[string]ReportEntry) bool {
	for _, e := range m {
		if !e.recognized() {
			return false
		}
	}
	return true
}
