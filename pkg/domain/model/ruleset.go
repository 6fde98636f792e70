package model

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Glob is one glob criterion: a pattern plus its polarity. A negated glob
// asserts that no changed file matches the pattern.
type Glob struct {
	Pattern string
	Negated bool
}

// ParseGlob converts a raw pattern string into a Glob, treating a single
// leading "!" as the negation marker.
func ParseGlob(raw string) Glob {
	if strings.HasPrefix(raw, "!") {
		return Glob{Pattern: raw[1:], Negated: true}
	}
	return Glob{Pattern: raw}
}

func (g Glob) validate() error {
	if g.Pattern == "" {
		return goerr.Wrap(types.ErrInvalidPattern, "empty pattern")
	}
	if !doublestar.ValidatePattern(g.Pattern) {
		return goerr.Wrap(types.ErrInvalidPattern, "malformed pattern", goerr.V("pattern", g.Pattern))
	}
	return nil
}

// ConditionMode selects how a condition relates globs to changed files.
type ConditionMode string

const (
	// AnyGlobToAnyFile is satisfied when at least one changed file matches at
	// least one positive glob. Files matching a negated glob are ineligible.
	AnyGlobToAnyFile ConditionMode = "any-glob-to-any-file"
	// AllGlobsToAllFiles is satisfied when every positive glob matches at
	// least one changed file and no changed file matches a negated glob.
	AllGlobsToAllFiles ConditionMode = "all-globs-to-all-files"
)

// Condition is one file condition: a mode applied to a list of globs.
type Condition struct {
	Mode  ConditionMode
	Globs []Glob
}

func (c Condition) validate() error {
	switch c.Mode {
	case AnyGlobToAnyFile, AllGlobsToAllFiles:
	default:
		return goerr.Wrap(types.ErrInvalidConfig, "unknown condition mode", goerr.V("mode", string(c.Mode)))
	}

	for _, g := range c.Globs {
		if err := g.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Combinator selects how sibling elements combine.
type Combinator string

const (
	// CombineAny requires at least one element to hold.
	CombineAny Combinator = "any"
	// CombineAll requires every element to hold.
	CombineAll Combinator = "all"
)

func (c Combinator) validate() error {
	switch c {
	case CombineAny, CombineAll, "":
		return nil
	default:
		return goerr.Wrap(types.ErrInvalidConfig, "unknown combinator", goerr.V("combinator", string(c)))
	}
}

// RuleGroup is an ordered sequence of conditions joined by a combinator.
// An empty Combine defaults to CombineAll: sibling conditions inside one
// group must hold simultaneously, which is what makes the common
// "include docs/** unless docs/api/** changed" rule work.
type RuleGroup struct {
	Combine    Combinator
	Conditions []Condition
}

func (g RuleGroup) validate() error {
	if err := g.Combine.validate(); err != nil {
		return err
	}
	for _, c := range g.Conditions {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

// LabelRule binds a label to one or more rule groups. An empty Combine
// defaults to CombineAny: the label applies when any group is satisfied.
type LabelRule struct {
	Label   types.Label
	Combine Combinator
	Groups  []RuleGroup
}

func (r *LabelRule) validate() error {
	if r.Label == "" {
		return goerr.Wrap(types.ErrInvalidConfig, "empty label name")
	}
	if err := r.Combine.validate(); err != nil {
		return goerr.Wrap(err, "invalid rule", goerr.V("label", r.Label))
	}
	for _, g := range r.Groups {
		if err := g.validate(); err != nil {
			return goerr.Wrap(err, "invalid rule", goerr.V("label", r.Label))
		}
	}
	return nil
}

// RuleSet is an immutable collection of label rules with unique labels.
// Declaration order is irrelevant to evaluation and retained only so that
// evaluation output is deterministically ordered.
type RuleSet struct {
	labels []types.Label
	rules  map[types.Label]*LabelRule
}

// NewRuleSet validates the given rules and builds a RuleSet. It fails with
// types.ErrDuplicateLabel when two rules share a label and with
// types.ErrInvalidPattern when any glob pattern is malformed, so that
// configuration problems surface at load time rather than mid-evaluation.
func NewRuleSet(rules ...*LabelRule) (*RuleSet, error) {
	rs := &RuleSet{
		labels: make([]types.Label, 0, len(rules)),
		rules:  make(map[types.Label]*LabelRule, len(rules)),
	}

	for _, rule := range rules {
		if err := rule.validate(); err != nil {
			return nil, err
		}
		if _, exists := rs.rules[rule.Label]; exists {
			return nil, goerr.Wrap(types.ErrDuplicateLabel, "rule set rejected", goerr.V("label", rule.Label))
		}

		rs.labels = append(rs.labels, rule.Label)
		rs.rules[rule.Label] = rule
	}

	return rs, nil
}

// Labels returns all labels governed by this rule set in declaration order.
func (rs *RuleSet) Labels() []types.Label {
	labels := make([]types.Label, len(rs.labels))
	copy(labels, rs.labels)
	return labels
}

// Len returns the number of label rules.
func (rs *RuleSet) Len() int {
	return len(rs.labels)
}
