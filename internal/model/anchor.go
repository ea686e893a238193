package model

// DefaultAnchorPriority applies when a catalog record omits priority
const DefaultAnchorPriority = 0.5

// Anchor is a named interpretive context. It switches on evidence frames
// and may raise the weight of the frames it touches.
type Anchor struct {
	ID           string             `yaml:"id" json:"id" validate:"required"`
	Name         string             `yaml:"name" json:"name" validate:"required"`
	Summary      string             `yaml:"summary" json:"summary"`
	FramesOn     []string           `yaml:"frames_on" json:"frames_on,omitempty" validate:"dive,required"`
	FrameWeights map[string]float64 `yaml:"frame_weights" json:"frame_weights,omitempty" validate:"dive,keys,required,endkeys,gte=0"`
	HardTriggers []string           `yaml:"hard_triggers" json:"hard_triggers,omitempty" validate:"dive,required"`
	SoftTriggers []string           `yaml:"soft_triggers" json:"soft_triggers,omitempty"` // reserved, never scored
	Priority     float64            `yaml:"priority" json:"priority"`
}

// AnchorFile is the on-disk shape of a catalog document
type AnchorFile struct {
	Anchors []AnchorRecord `yaml:"anchors"`
}

// AnchorRecord mirrors Anchor but keeps priority optional so the default
// can be applied when a record leaves it out
type AnchorRecord struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Summary      string             `yaml:"summary"`
	FramesOn     []string           `yaml:"frames_on"`
	FrameWeights map[string]float64 `yaml:"frame_weights"`
	HardTriggers []string           `yaml:"hard_triggers"`
	SoftTriggers []string           `yaml:"soft_triggers"`
	Priority     *float64           `yaml:"priority"`
	UseCount     int                `yaml:"use_count"` // accepted for compatibility, ignored
}

// Anchor converts the record, filling the default priority
func (r AnchorRecord) Anchor() Anchor {
	priority := DefaultAnchorPriority
	if r.Priority != nil {
		priority = *r.Priority
	}
	return Anchor{
		ID:           r.ID,
		Name:         r.Name,
		Summary:      r.Summary,
		FramesOn:     append([]string(nil), r.FramesOn...),
		FrameWeights: copyWeights(r.FrameWeights),
		HardTriggers: append([]string(nil), r.HardTriggers...),
		SoftTriggers: append([]string(nil), r.SoftTriggers...),
		Priority:     priority,
	}
}

func copyWeights(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// AnchorScore is the transparent ranking breakdown for one anchor
type AnchorScore struct {
	AnchorID string  `json:"anchor_id"`
	Priority float64 `json:"priority"`
	Hits     int     `json:"hits"`            // hard-trigger phrases found in the text
	Boost    float64 `json:"boost,omitempty"` // preferred-id bonus
	Score    float64 `json:"score"`
}
