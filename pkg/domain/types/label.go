package types

import "github.com/google/uuid"

// Label is a GitHub label name produced by rule evaluation.
type Label string

func (l Label) String() string { return string(l) }

// EvalID identifies one labeling evaluation for log correlation.
type EvalID string

// NewEvalID generates a new random evaluation ID.
func NewEvalID() EvalID {
	return EvalID(uuid.NewString())
}

func (id EvalID) String() string { return string(id) }
