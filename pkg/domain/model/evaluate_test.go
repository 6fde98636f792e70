package model_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func globs(patterns ...string) []model.Glob {
	gs := make([]model.Glob, 0, len(patterns))
	for _, p := range patterns {
		gs = append(gs, model.ParseGlob(p))
	}
	return gs
}

func anyGlob(patterns ...string) model.Condition {
	return model.Condition{Mode: model.AnyGlobToAnyFile, Globs: globs(patterns...)}
}

func allGlobs(patterns ...string) model.Condition {
	return model.Condition{Mode: model.AllGlobsToAllFiles, Globs: globs(patterns...)}
}

func rule(label string, conditions ...model.Condition) *model.LabelRule {
	return &model.LabelRule{
		Label:  types.Label(label),
		Groups: []model.RuleGroup{{Conditions: conditions}},
	}
}

func mustRuleSet(t *testing.T, rules ...*model.LabelRule) *model.RuleSet {
	t.Helper()
	rs, err := model.NewRuleSet(rules...)
	gt.NoError(t, err)
	return rs
}

func TestEvaluateAnyGlobToAnyFile(t *testing.T) {
	rs := mustRuleSet(t,
		rule("kafka", anyGlob("faststream/kafka/**", "tests/**/kafka/**")),
		rule("dependencies", anyGlob("pyproject.toml")),
	)

	tests := []struct {
		name  string
		files []string
		want  []types.Label
	}{
		{
			name:  "file under matched directory",
			files: []string{"faststream/kafka/producer.py"},
			want:  []types.Label{"kafka"},
		},
		{
			name:  "deeply nested file under matched directory",
			files: []string{"faststream/kafka/testing/mocks.py"},
			want:  []types.Label{"kafka"},
		},
		{
			name:  "sibling directory does not match",
			files: []string{"faststream/nats/producer.py"},
			want:  nil,
		},
		{
			name:  "exact file match",
			files: []string{"pyproject.toml"},
			want:  []types.Label{"dependencies"},
		},
		{
			name:  "exact pattern has no implicit wildcard",
			files: []string{"pyproject.lock"},
			want:  nil,
		},
		{
			name:  "exact pattern does not match nested path",
			files: []string{"examples/pyproject.toml"},
			want:  nil,
		},
		{
			name:  "multiple rules matched in declaration order",
			files: []string{"pyproject.toml", "faststream/kafka/broker.py"},
			want:  []types.Label{"kafka", "dependencies"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.Evaluate(tt.files)
			gt.NoError(t, err)
			gt.Equal(t, got, tt.want)
		})
	}
}

func TestEvaluateSingleSegmentWildcard(t *testing.T) {
	rs := mustRuleSet(t, rule("root-docs", anyGlob("*.md")))

	got, err := rs.Evaluate([]string{"README.md"})
	gt.NoError(t, err)
	gt.Equal(t, got, []types.Label{"root-docs"})

	got, err = rs.Evaluate([]string{"docs/guide.md"})
	gt.NoError(t, err)
	gt.Equal(t, len(got), 0)
}

func TestEvaluateNegationVeto(t *testing.T) {
	// The documentation-label pattern: match anything under docs/ unless the
	// change also touches docs/api/.
	rs := mustRuleSet(t,
		rule("documentation",
			anyGlob("docs/**"),
			allGlobs("!docs/api/**"),
		),
	)

	tests := []struct {
		name  string
		files []string
		want  []types.Label
	}{
		{
			name:  "plain docs change applies the label",
			files: []string{"docs/intro.md"},
			want:  []types.Label{"documentation"},
		},
		{
			name:  "forbidden sub-path alone does not apply",
			files: []string{"docs/api/x.py"},
			want:  nil,
		},
		{
			name:  "forbidden sub-path anywhere in the set vetoes",
			files: []string{"docs/intro.md", "docs/api/x.py"},
			want:  nil,
		},
		{
			name:  "unrelated files do not trip the veto",
			files: []string{"docs/intro.md", "src/main.go"},
			want:  []types.Label{"documentation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.Evaluate(tt.files)
			gt.NoError(t, err)
			gt.Equal(t, got, tt.want)
		})
	}
}

func TestEvaluateAllGlobsToAllFiles(t *testing.T) {
	rs := mustRuleSet(t, rule("go-deps", allGlobs("go.mod", "go.sum")))

	tests := []struct {
		name  string
		files []string
		want  []types.Label
	}{
		{
			name:  "every glob matched by some file",
			files: []string{"go.mod", "go.sum"},
			want:  []types.Label{"go-deps"},
		},
		{
			name:  "extra files do not break the condition",
			files: []string{"go.mod", "go.sum", "main.go"},
			want:  []types.Label{"go-deps"},
		},
		{
			name:  "one glob unmatched fails the condition",
			files: []string{"go.mod"},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.Evaluate(tt.files)
			gt.NoError(t, err)
			gt.Equal(t, got, tt.want)
		})
	}
}

func TestEvaluateMixedPolarityAllGlobs(t *testing.T) {
	// Positive and negated globs in one condition must hold simultaneously.
	rs := mustRuleSet(t, rule("config-only", allGlobs("config/**", "!config/secrets/**")))

	got, err := rs.Evaluate([]string{"config/app.yml"})
	gt.NoError(t, err)
	gt.Equal(t, got, []types.Label{"config-only"})

	got, err = rs.Evaluate([]string{"config/app.yml", "config/secrets/token.yml"})
	gt.NoError(t, err)
	gt.Equal(t, len(got), 0)
}

func TestEvaluateAnyGlobNegationEligibility(t *testing.T) {
	// Within an any-glob condition a file matching a negated glob is not
	// eligible to satisfy the positive globs, but other files still are.
	rs := mustRuleSet(t, rule("source", anyGlob("src/**", "!src/generated/**")))

	got, err := rs.Evaluate([]string{"src/generated/api.go"})
	gt.NoError(t, err)
	gt.Equal(t, len(got), 0)

	got, err = rs.Evaluate([]string{"src/generated/api.go", "src/core.go"})
	gt.NoError(t, err)
	gt.Equal(t, got, []types.Label{"source"})
}

func TestEvaluateEmptyFileList(t *testing.T) {
	rs := mustRuleSet(t,
		rule("documentation", anyGlob("docs/**")),
		rule("never", allGlobs("!docs/**")),
	)

	for _, files := range [][]string{nil, {}, {""}, {"  "}, {"."}} {
		got, err := rs.Evaluate(files)
		gt.NoError(t, err)
		gt.Equal(t, len(got), 0)
	}
}

func TestEvaluateEmptyRuleSet(t *testing.T) {
	rs := mustRuleSet(t)

	got, err := rs.Evaluate([]string{"docs/intro.md", "src/main.go"})
	gt.NoError(t, err)
	gt.Equal(t, len(got), 0)
}

func TestEvaluateEmptyGlobList(t *testing.T) {
	// An empty glob list never matches, for either mode. Vacuous truth would
	// turn a half-written condition into a universal match.
	rs := mustRuleSet(t,
		rule("empty-any", model.Condition{Mode: model.AnyGlobToAnyFile}),
		rule("empty-all", model.Condition{Mode: model.AllGlobsToAllFiles}),
	)

	got, err := rs.Evaluate([]string{"anything.txt"})
	gt.NoError(t, err)
	gt.Equal(t, len(got), 0)
}

func TestEvaluateGroupCombinators(t *testing.T) {
	tests := []struct {
		name  string
		rule  *model.LabelRule
		files []string
		want  bool
	}{
		{
			name:  "group defaults to all across sibling conditions",
			rule:  rule("x", anyGlob("docs/**"), anyGlob("src/**")),
			files: []string{"docs/intro.md"},
			want:  false,
		},
		{
			name:  "group all satisfied when every condition holds",
			rule:  rule("x", anyGlob("docs/**"), anyGlob("src/**")),
			files: []string{"docs/intro.md", "src/main.go"},
			want:  true,
		},
		{
			name: "explicit any group needs only one condition",
			rule: &model.LabelRule{
				Label: "x",
				Groups: []model.RuleGroup{{
					Combine:    model.CombineAny,
					Conditions: []model.Condition{anyGlob("docs/**"), anyGlob("src/**")},
				}},
			},
			files: []string{"docs/intro.md"},
			want:  true,
		},
		{
			name: "rule defaults to any across groups",
			rule: &model.LabelRule{
				Label: "x",
				Groups: []model.RuleGroup{
					{Conditions: []model.Condition{anyGlob("docs/**")}},
					{Conditions: []model.Condition{anyGlob("src/**")}},
				},
			},
			files: []string{"src/main.go"},
			want:  true,
		},
		{
			name: "explicit all rule needs every group",
			rule: &model.LabelRule{
				Label:   "x",
				Combine: model.CombineAll,
				Groups: []model.RuleGroup{
					{Conditions: []model.Condition{anyGlob("docs/**")}},
					{Conditions: []model.Condition{anyGlob("src/**")}},
				},
			},
			files: []string{"src/main.go"},
			want:  false,
		},
		{
			name:  "rule with no groups never matches",
			rule:  &model.LabelRule{Label: "x"},
			files: []string{"anything.txt"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := mustRuleSet(t, tt.rule)
			got, err := rs.Evaluate(tt.files)
			gt.NoError(t, err)
			gt.Equal(t, len(got) == 1, tt.want)
		})
	}
}

func TestEvaluateDeterminism(t *testing.T) {
	rs := mustRuleSet(t,
		rule("documentation", anyGlob("docs/**"), allGlobs("!docs/api/**")),
		rule("kafka", anyGlob("faststream/kafka/**")),
		rule("dependencies", anyGlob("pyproject.toml")),
	)
	files := []string{"docs/intro.md", "faststream/kafka/broker.py", "pyproject.toml"}

	first, err := rs.Evaluate(files)
	gt.NoError(t, err)
	for i := 0; i < 10; i++ {
		got, err := rs.Evaluate(files)
		gt.NoError(t, err)
		gt.Equal(t, got, first)
	}

	// File order does not influence the result, which follows label
	// declaration order.
	reversed := []string{"pyproject.toml", "faststream/kafka/broker.py", "docs/intro.md"}
	got, err := rs.Evaluate(reversed)
	gt.NoError(t, err)
	gt.Equal(t, got, []types.Label{"documentation", "kafka", "dependencies"})
}

func TestEvaluateMonotonicity(t *testing.T) {
	rs := mustRuleSet(t,
		rule("documentation", anyGlob("docs/**"), allGlobs("!docs/api/**")),
		rule("kafka", anyGlob("faststream/kafka/**")),
	)

	base, err := rs.Evaluate([]string{"docs/intro.md"})
	gt.NoError(t, err)
	gt.Equal(t, base, []types.Label{"documentation"})

	// Adding a file that matches a positive glob and no negation only adds.
	grown, err := rs.Evaluate([]string{"docs/intro.md", "faststream/kafka/broker.py"})
	gt.NoError(t, err)
	gt.Equal(t, grown, []types.Label{"documentation", "kafka"})

	// Adding a file that trips a negation clause may remove a label.
	vetoed, err := rs.Evaluate([]string{"docs/intro.md", "docs/api/schema.py"})
	gt.NoError(t, err)
	gt.Equal(t, len(vetoed), 0)
}

func TestEvaluatePathNormalization(t *testing.T) {
	rs := mustRuleSet(t, rule("source", anyGlob("src/**")))

	tests := []struct {
		name string
		file string
	}{
		{name: "leading dot-slash", file: "./src/main.go"},
		{name: "backslash separators", file: `src\util\path.go`},
		{name: "duplicate separators", file: "src//main.go"},
		{name: "surrounding whitespace", file: "  src/main.go  "},
		{name: "dot segments", file: "src/util/../main.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rs.Evaluate([]string{tt.file})
			gt.NoError(t, err)
			gt.Equal(t, got, []types.Label{"source"})
		})
	}
}

func TestEvaluateDoesNotMutateInputs(t *testing.T) {
	rs := mustRuleSet(t, rule("documentation", anyGlob("docs/**")))

	files := []string{"docs/intro.md", "src/main.go"}
	_, err := rs.Evaluate(files)
	gt.NoError(t, err)

	gt.Equal(t, files, []string{"docs/intro.md", "src/main.go"})
	gt.Equal(t, rs.Labels(), []types.Label{"documentation"})
}

func TestEvaluateConcurrent(t *testing.T) {
	rs := mustRuleSet(t,
		rule("documentation", anyGlob("docs/**"), allGlobs("!docs/api/**")),
		rule("kafka", anyGlob("faststream/kafka/**")),
	)
	files := []string{"docs/intro.md", "faststream/kafka/broker.py"}
	want := []types.Label{"documentation", "kafka"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := rs.Evaluate(files)
			if err != nil {
				t.Errorf("Evaluate() error = %v", err)
				return
			}
			if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
				t.Errorf("Evaluate() = %v, want %v", got, want)
			}
		}()
	}
	wg.Wait()
}
