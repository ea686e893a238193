package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ppiankov/paradox/internal/model"
)

// anchorValidate is shared; validator.Validate caches struct metadata and is
// safe for concurrent use
var anchorValidate = validator.New(validator.WithRequiredStructEnabled())

// ErrDuplicateAnchor is returned when two records share an id
var ErrDuplicateAnchor = errors.New("duplicate anchor id")

// FieldError describes one rejected field of one record
type FieldError struct {
	AnchorID string
	Index    int
	Field    string
	Rule     string
}

func (e FieldError) Error() string {
	id := e.AnchorID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("anchor %s: field %s failed %q", id, e.Field, e.Rule)
}

// ValidationError collects every problem found in a catalog document
type ValidationError struct {
	Problems []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	return fmt.Sprintf("invalid anchor catalog (%d problems): %s", len(e.Problems), strings.Join(msgs, "; "))
}

// Unwrap exposes individual problems to errors.Is / errors.As
func (e *ValidationError) Unwrap() []error {
	return e.Problems
}

// Anchor checks a single anchor's shape. index is the record position,
// used only for messages.
func Anchor(a model.Anchor, index int) []error {
	var problems []error

	if err := anchorValidate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, FieldError{
					AnchorID: a.ID,
					Index:    index,
					Field:    fe.Namespace(),
					Rule:     fe.Tag(),
				})
			}
		} else {
			problems = append(problems, err)
		}
	}

	if math.IsNaN(a.Priority) || math.IsInf(a.Priority, 0) {
		problems = append(problems, FieldError{AnchorID: a.ID, Index: index, Field: "Anchor.Priority", Rule: "finite"})
	}
	for frame, mul := range a.FrameWeights {
		if math.IsNaN(mul) || math.IsInf(mul, 0) {
			problems = append(problems, FieldError{AnchorID: a.ID, Index: index, Field: "Anchor.FrameWeights[" + frame + "]", Rule: "finite"})
		}
	}

	return problems
}

// Anchors validates a whole catalog: per-record shape plus id uniqueness.
// It returns nil or a *ValidationError.
func Anchors(anchors []model.Anchor) error {
	var problems []error
	seen := make(map[string]int, len(anchors))

	for i, a := range anchors {
		problems = append(problems, Anchor(a, i)...)

		if a.ID == "" {
			continue
		}
		if first, dup := seen[a.ID]; dup {
			problems = append(problems, fmt.Errorf("%w: %q at records %d and %d", ErrDuplicateAnchor, a.ID, first, i))
			continue
		}
		seen[a.ID] = i
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
