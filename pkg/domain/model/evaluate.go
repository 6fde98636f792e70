package model

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Evaluate computes the labels that apply to the given changed files.
//
// Matching is purely lexical: paths are repository-relative strings and no
// filesystem access happens. The result is deterministic for a given
// (files, rule set) pair and ordered by label declaration order. Evaluate
// never mutates its inputs and holds no shared state, so one RuleSet may be
// evaluated concurrently from multiple goroutines.
//
// An empty file list produces no labels: every condition evaluates false
// over an empty set, including all-globs conditions whose globs are all
// negated.
func (rs *RuleSet) Evaluate(files []string) ([]types.Label, error) {
	paths := normalizeFiles(files)
	if len(paths) == 0 {
		return nil, nil
	}

	var matched []types.Label
	for _, label := range rs.labels {
		ok, err := rs.rules[label].matches(paths)
		if err != nil {
			return nil, goerr.Wrap(err, "rule evaluation failed", goerr.V("label", label))
		}
		if ok {
			matched = append(matched, label)
		}
	}

	return matched, nil
}

func (r *LabelRule) matches(files []string) (bool, error) {
	if len(r.Groups) == 0 {
		return false, nil
	}

	// Implicit OR across groups; explicit "all" demands every group.
	requireAll := r.Combine == CombineAll

	for _, g := range r.Groups {
		ok, err := g.matches(files)
		if err != nil {
			return false, err
		}
		if ok && !requireAll {
			return true, nil
		}
		if !ok && requireAll {
			return false, nil
		}
	}

	return requireAll, nil
}

func (g *RuleGroup) matches(files []string) (bool, error) {
	if len(g.Conditions) == 0 {
		return false, nil
	}

	// Sibling conditions AND together unless the group declares "any".
	requireAll := g.Combine != CombineAny

	for _, c := range g.Conditions {
		ok, err := c.matches(files)
		if err != nil {
			return false, err
		}
		if ok && !requireAll {
			return true, nil
		}
		if !ok && requireAll {
			return false, nil
		}
	}

	return requireAll, nil
}

func (c *Condition) matches(files []string) (bool, error) {
	// An empty glob list never matches. Vacuous truth here would turn a
	// half-written condition into a universal match.
	if len(c.Globs) == 0 {
		return false, nil
	}

	switch c.Mode {
	case AnyGlobToAnyFile:
		return c.matchesAnyToAny(files)
	case AllGlobsToAllFiles:
		return c.matchesAllToAll(files)
	default:
		return false, goerr.Wrap(types.ErrInvalidConfig, "unknown condition mode", goerr.V("mode", string(c.Mode)))
	}
}

// matchesAnyToAny reports whether any eligible file matches any positive
// glob. A file matching a negated glob within the condition is ineligible.
func (c *Condition) matchesAnyToAny(files []string) (bool, error) {
	for _, file := range files {
		excluded, err := c.matchesPolarity(file, true)
		if err != nil {
			return false, err
		}
		if excluded {
			continue
		}

		included, err := c.matchesPolarity(file, false)
		if err != nil {
			return false, err
		}
		if included {
			return true, nil
		}
	}

	return false, nil
}

// matchesAllToAll reports whether every positive glob matches at least one
// file and no file matches a negated glob.
func (c *Condition) matchesAllToAll(files []string) (bool, error) {
	for _, g := range c.Globs {
		if g.Negated {
			for _, file := range files {
				hit, err := matchGlob(g.Pattern, file)
				if err != nil {
					return false, err
				}
				if hit {
					return false, nil
				}
			}
			continue
		}

		satisfied := false
		for _, file := range files {
			hit, err := matchGlob(g.Pattern, file)
			if err != nil {
				return false, err
			}
			if hit {
				satisfied = true
				break
			}
		}
		if !satisfied {
			return false, nil
		}
	}

	return true, nil
}

// matchesPolarity reports whether file matches any glob of the given
// polarity within the condition.
func (c *Condition) matchesPolarity(file string, negated bool) (bool, error) {
	for _, g := range c.Globs {
		if g.Negated != negated {
			continue
		}
		hit, err := matchGlob(g.Pattern, file)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

func matchGlob(pattern, file string) (bool, error) {
	hit, err := doublestar.Match(pattern, file)
	if err != nil {
		// NewRuleSet validates patterns up front, so this only fires for
		// rule sets assembled without it.
		return false, goerr.Wrap(types.ErrInvalidPattern, "match failed", goerr.V("pattern", pattern))
	}
	return hit, nil
}

// normalizeFiles cleans raw changed-file paths into slash-separated
// repository-relative form and drops entries that normalize to nothing.
func normalizeFiles(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if p := normalizePath(f); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, `/`)
	raw = strings.TrimPrefix(raw, "./")
	if raw == "" || raw == "." {
		return ""
	}

	cleaned := path.Clean("/" + raw)
	return strings.TrimPrefix(cleaned, "/")
}
