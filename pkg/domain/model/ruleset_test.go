package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func TestParseGlob(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want model.Glob
	}{
		{
			name: "plain pattern",
			raw:  "docs/**",
			want: model.Glob{Pattern: "docs/**"},
		},
		{
			name: "negated pattern",
			raw:  "!docs/api/**",
			want: model.Glob{Pattern: "docs/api/**", Negated: true},
		},
		{
			name: "only the first marker negates",
			raw:  "!!weird",
			want: model.Glob{Pattern: "!weird", Negated: true},
		},
		{
			name: "exact file",
			raw:  "pyproject.toml",
			want: model.Glob{Pattern: "pyproject.toml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Equal(t, model.ParseGlob(tt.raw), tt.want)
		})
	}
}

func TestNewRuleSet(t *testing.T) {
	t.Run("valid rules", func(t *testing.T) {
		rs, err := model.NewRuleSet(
			rule("documentation", anyGlob("docs/**")),
			rule("kafka", anyGlob("faststream/kafka/**")),
		)
		gt.NoError(t, err)
		gt.Equal(t, rs.Len(), 2)
		gt.Equal(t, rs.Labels(), []types.Label{"documentation", "kafka"})
	})

	t.Run("labels returns a copy", func(t *testing.T) {
		rs, err := model.NewRuleSet(rule("documentation", anyGlob("docs/**")))
		gt.NoError(t, err)

		labels := rs.Labels()
		labels[0] = "mutated"
		gt.Equal(t, rs.Labels(), []types.Label{"documentation"})
	})

	t.Run("duplicate label rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(
			rule("documentation", anyGlob("docs/**")),
			rule("documentation", anyGlob("*.md")),
		)
		gt.Error(t, err)
		if !errors.Is(err, types.ErrDuplicateLabel) {
			t.Errorf("error = %v, want ErrDuplicateLabel", err)
		}
	})

	t.Run("malformed pattern rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(rule("bad", anyGlob("src/[")))
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidPattern) {
			t.Errorf("error = %v, want ErrInvalidPattern", err)
		}
	})

	t.Run("malformed negated pattern rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(rule("bad", allGlobs("!docs/[a-")))
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidPattern) {
			t.Errorf("error = %v, want ErrInvalidPattern", err)
		}
	})

	t.Run("empty pattern rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(rule("bad", anyGlob("")))
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidPattern) {
			t.Errorf("error = %v, want ErrInvalidPattern", err)
		}
	})

	t.Run("empty label rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(rule("", anyGlob("docs/**")))
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("unknown condition mode rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(rule("bad", model.Condition{
			Mode:  model.ConditionMode("some-glob-to-some-file"),
			Globs: globs("docs/**"),
		}))
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("unknown combinator rejected", func(t *testing.T) {
		_, err := model.NewRuleSet(&model.LabelRule{
			Label:   "bad",
			Combine: model.Combinator("most"),
			Groups:  []model.RuleGroup{{Conditions: []model.Condition{anyGlob("docs/**")}}},
		})
		gt.Error(t, err)
		if !errors.Is(err, types.ErrInvalidConfig) {
			t.Errorf("error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("no rules is a valid empty set", func(t *testing.T) {
		rs, err := model.NewRuleSet()
		gt.NoError(t, err)
		gt.Equal(t, rs.Len(), 0)
		gt.Equal(t, len(rs.Labels()), 0)
	})
}
