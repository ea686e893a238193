package model

// Request is one resolution job supplied by the dialogue layer
type Request struct {
	ID           string        `yaml:"id" json:"id,omitempty"`
	Source       string        `yaml:"source" json:"source,omitempty"` // caller label, used for throttling
	Text         string        `yaml:"text" json:"text"`
	Preferred    []string      `yaml:"preferred" json:"preferred,omitempty"`
	K            *int          `yaml:"k" json:"k,omitempty"` // nil uses the configured default; 0 selects none
	Propositions []Proposition `yaml:"propositions" json:"propositions"`
}

// Proposition carries the caller's statement and its raw evidence
type Proposition struct {
	ID       string          `yaml:"id" json:"id"`
	Text     string          `yaml:"text" json:"text"`
	Evidence []EvidenceInput `yaml:"evidence" json:"evidence,omitempty"`
}

// EvidenceInput is a (frame, weight, sign) triple. A negative sign counts
// against the proposition, anything else supports it.
type EvidenceInput struct {
	Frame  string  `yaml:"frame" json:"frame"`
	Weight float64 `yaml:"weight" json:"weight"`
	Sign   float64 `yaml:"sign" json:"sign"`
	Source string  `yaml:"source" json:"source,omitempty"`
}

// BatchFile is the on-disk shape of a batch document
type BatchFile struct {
	Requests []Request `yaml:"requests"`
}
