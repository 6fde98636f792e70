package model

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const changedFilesKey = "changed-files"

// ParseRuleSet decodes a labeler configuration document into a RuleSet.
//
// The grammar mirrors the common labeler-action configuration. Each label
// maps to a list of entries; every entry contributes one rule group and the
// label applies when any group matches:
//
//	documentation:
//	  - changed-files:
//	      - any-glob-to-any-file: ["docs/**", "*.md"]
//	      - all-globs-to-all-files: "!docs/api/**"
//
// Conditions inside one changed-files block must all hold. An entry may
// instead wrap changed-files blocks in "any:" or "all:" to choose the
// combinator explicitly, and a label may wrap its whole entry list in
// "all:" to require every group:
//
//	core:
//	  all:
//	    - changed-files:
//	        - any-glob-to-any-file: "src/**"
//	    - changed-files:
//	        - all-globs-to-all-files: "!src/vendor/**"
//
// A glob prefixed with "!" is negated. Duplicate labels are rejected with
// types.ErrDuplicateLabel and malformed patterns with
// types.ErrInvalidPattern; both surface at load time.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var root any
	// Duplicate mapping keys must survive decoding so the label check below
	// reports types.ErrDuplicateLabel instead of a generic decode error.
	if err := yaml.UnmarshalWithOptions(data, &root, yaml.UseOrderedMap(), yaml.AllowDuplicateMapKey()); err != nil {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "cannot decode YAML", goerr.V("error", err.Error()))
	}
	if root == nil {
		return NewRuleSet()
	}

	doc, ok := root.(yaml.MapSlice)
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "top level must map label names to rules")
	}

	seen := make(map[types.Label]struct{}, len(doc))
	rules := make([]*LabelRule, 0, len(doc))

	for _, item := range doc {
		name, ok := item.Key.(string)
		if !ok {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "label name must be a string", goerr.V("key", fmt.Sprintf("%v", item.Key)))
		}

		label := types.Label(name)
		if _, dup := seen[label]; dup {
			return nil, goerr.Wrap(types.ErrDuplicateLabel, "configuration rejected", goerr.V("label", label))
		}
		seen[label] = struct{}{}

		rule, err := decodeRule(label, item.Value)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return NewRuleSet(rules...)
}

func decodeRule(label types.Label, value any) (*LabelRule, error) {
	rule := &LabelRule{Label: label}

	switch v := value.(type) {
	case nil:
		// A label with no rules never matches; tolerated so a config can
		// reserve label names.
		return rule, nil

	case []any:
		for _, entry := range v {
			group, err := decodeEntry(label, entry)
			if err != nil {
				return nil, err
			}
			rule.Groups = append(rule.Groups, *group)
		}
		return rule, nil

	case yaml.MapSlice:
		// Rule-level combinator: the whole entry list wrapped in any/all.
		combine, entries, err := unwrapCombinator(label, v)
		if err != nil {
			return nil, err
		}
		if combine == "" {
			// Not a wrapper: a bare changed-files mapping acts as a
			// single-entry list.
			group, err := decodeEntry(label, value)
			if err != nil {
				return nil, err
			}
			rule.Groups = append(rule.Groups, *group)
			return rule, nil
		}

		rule.Combine = combine
		for _, entry := range entries {
			group, err := decodeEntry(label, entry)
			if err != nil {
				return nil, err
			}
			rule.Groups = append(rule.Groups, *group)
		}
		return rule, nil

	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "rule must be a sequence of entries", goerr.V("label", label))
	}
}

// unwrapCombinator detects a single-key any/all mapping and returns its
// combinator and wrapped entries. It returns an empty combinator when the
// mapping is not a wrapper.
func unwrapCombinator(label types.Label, m yaml.MapSlice) (Combinator, []any, error) {
	if len(m) != 1 {
		return "", nil, nil
	}

	key, ok := m[0].Key.(string)
	if !ok || (key != string(CombineAny) && key != string(CombineAll)) {
		return "", nil, nil
	}

	entries, ok := m[0].Value.([]any)
	if !ok {
		return "", nil, goerr.Wrap(types.ErrInvalidConfig, "combinator must wrap a sequence",
			goerr.V("label", label), goerr.V("combinator", key))
	}
	return Combinator(key), entries, nil
}

// decodeEntry converts one entry into a rule group. An entry is either a
// changed-files block or an any/all wrapper over changed-files blocks.
func decodeEntry(label types.Label, entry any) (*RuleGroup, error) {
	m, ok := entry.(yaml.MapSlice)
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "entry must be a mapping", goerr.V("label", label))
	}
	if len(m) != 1 {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "entry must hold exactly one of changed-files, any, all",
			goerr.V("label", label))
	}

	key, ok := m[0].Key.(string)
	if !ok {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "entry key must be a string", goerr.V("label", label))
	}

	switch key {
	case changedFilesKey:
		conditions, err := decodeConditions(label, m[0].Value)
		if err != nil {
			return nil, err
		}
		return &RuleGroup{Conditions: conditions}, nil

	case string(CombineAny), string(CombineAll):
		blocks, ok := m[0].Value.([]any)
		if !ok {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "combinator must wrap a sequence",
				goerr.V("label", label), goerr.V("combinator", key))
		}

		group := &RuleGroup{Combine: Combinator(key)}
		for _, block := range blocks {
			inner, ok := block.(yaml.MapSlice)
			if !ok || len(inner) != 1 {
				return nil, goerr.Wrap(types.ErrInvalidConfig, "combinator entries must be changed-files mappings",
					goerr.V("label", label), goerr.V("combinator", key))
			}
			innerKey, _ := inner[0].Key.(string)
			if innerKey != changedFilesKey {
				return nil, goerr.Wrap(types.ErrInvalidConfig, "nested combinators are not supported",
					goerr.V("label", label), goerr.V("key", innerKey))
			}

			conditions, err := decodeConditions(label, inner[0].Value)
			if err != nil {
				return nil, err
			}
			group.Conditions = append(group.Conditions, conditions...)
		}
		return group, nil

	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "unsupported entry", goerr.V("label", label), goerr.V("key", key))
	}
}

// decodeConditions converts the value of a changed-files block into file
// conditions. The value is a sequence of condition mappings or one bare
// condition mapping.
func decodeConditions(label types.Label, value any) ([]Condition, error) {
	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case yaml.MapSlice:
		items = []any{v}
	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "changed-files must hold conditions", goerr.V("label", label))
	}

	var conditions []Condition
	for _, item := range items {
		m, ok := item.(yaml.MapSlice)
		if !ok {
			return nil, goerr.Wrap(types.ErrInvalidConfig, "condition must be a mapping", goerr.V("label", label))
		}

		for _, pair := range m {
			key, ok := pair.Key.(string)
			if !ok {
				return nil, goerr.Wrap(types.ErrInvalidConfig, "condition key must be a string", goerr.V("label", label))
			}

			mode := ConditionMode(key)
			switch mode {
			case AnyGlobToAnyFile, AllGlobsToAllFiles:
			default:
				return nil, goerr.Wrap(types.ErrInvalidConfig, "unsupported condition",
					goerr.V("label", label), goerr.V("key", key))
			}

			globs, err := decodeGlobs(label, pair.Value)
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, Condition{Mode: mode, Globs: globs})
		}
	}

	return conditions, nil
}

// decodeGlobs accepts a single glob string or a sequence of glob strings.
func decodeGlobs(label types.Label, value any) ([]Glob, error) {
	switch v := value.(type) {
	case string:
		return []Glob{ParseGlob(v)}, nil

	case []any:
		globs := make([]Glob, 0, len(v))
		for _, raw := range v {
			s, ok := raw.(string)
			if !ok {
				return nil, goerr.Wrap(types.ErrInvalidConfig, "glob must be a string",
					goerr.V("label", label), goerr.V("value", fmt.Sprintf("%v", raw)))
			}
			globs = append(globs, ParseGlob(s))
		}
		return globs, nil

	case nil:
		// Explicit empty list: kept, evaluates false.
		return nil, nil

	default:
		return nil, goerr.Wrap(types.ErrInvalidConfig, "glob must be a string or sequence",
			goerr.V("label", label), goerr.V("value", fmt.Sprintf("%v", value)))
	}
}
