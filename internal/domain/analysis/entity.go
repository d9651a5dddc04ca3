package analysis

import "encoding/json"

// Mode selects which prompt template and response shape is used.
type Mode string

const (
	ModeWholeProgram Mode = "whole"
	ModePerFile      Mode = "per_file"
)

// ParseMode resolves a mode string, empty means fallback.
func ParseMode(s string, fallback Mode) (Mode, error) {
	switch Mode(s) {
	case "":
		return fallback, nil
	case ModeWholeProgram, ModePerFile:
		return Mode(s), nil
	default:
		return "", ErrInvalidMode
	}
}

// Decision enum
type Decision string

const (
	DecisionScamDetected   Decision = "SCAM_DETECTED"
	DecisionInvalidFormat  Decision = "INVALID_FORMAT"
	DecisionContentWarning Decision = "CONTENT_WARNING"
	DecisionClean          Decision = "CLEAN"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionScamDetected, DecisionInvalidFormat, DecisionContentWarning, DecisionClean:
		return true
	}
	return false
}

type ProgramMeta struct {
	Title string `json:"title"`
}

type CodeFile struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

// Request is one bundle of files submitted for a verdict.
// CodeFiles order is kept all the way into the prompt.
type Request struct {
	ProgramMeta ProgramMeta `json:"programMeta"`
	CodeFiles   []CodeFile  `json:"codeFiles"`
	Mode        string      `json:"mode,omitempty"`
}

func (r Request) Validate() error {
	if len(r.CodeFiles) == 0 {
		return ErrNoCodeFiles
	}
	return nil
}

// Check is one rubric category. Validity uses Valid, the rest use Detected.
type Check struct {
	Detected *bool    `json:"detected,omitempty"`
	Valid    *bool    `json:"valid,omitempty"`
	Issues   []string `json:"issues"`
}

type ReportDetails struct {
	ScamCheck           Check `json:"scamCheck"`
	ValidityCheck       Check `json:"validityCheck"`
	SensationalCheck    Check `json:"sensationalCheck"`
	DataCollectionCheck Check `json:"dataCollectionCheck"`
	LogicCheck          Check `json:"logicCheck"`
}

// ReportEntry is the documented shape of one model verdict.
type ReportEntry struct {
	RunID         string         `json:"runId,omitempty"`
	Status        string         `json:"status,omitempty"`
	ProcessedAt   string         `json:"processedAt,omitempty"`
	FinalDecision Decision       `json:"finalDecision"`
	Summary       string         `json:"summary"`
	ReportDetails *ReportDetails `json:"reportDetails"`
}

func (e *ReportEntry) recognized() bool {
	return e.FinalDecision.Valid() && e.ReportDetails != nil
}

// Verdict is what the model answered. Raw is always set and is relayed
// unmodified; Report or Reports is set only when Raw matched the
// documented shape for Mode.
type Verdict struct {
	Mode    Mode
	Raw     json.RawMessage
	Report  *ReportEntry
	Reports map[string]ReportEntry
}

// Recognized reports whether the model output matched the documented shape.
func (v Verdict) Recognized() bool {
	return v.Report != nil || v.Reports != nil
}
