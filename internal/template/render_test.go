package template

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []string
	}{
		{
			name:     "dedup preserving first-seen order",
			content:  "Hi {name}, {id} again {name}",
			expected: []string{"name", "id"},
		},
		{
			name:     "no placeholders",
			content:  "plain text",
			expected: nil,
		},
		{
			name:     "japanese identifiers",
			content:  "{発信者}様から{時刻}に着信",
			expected: []string{"発信者", "時刻"},
		},
		{
			name:     "empty braces are not a placeholder",
			content:  "weird {} text {name}",
			expected: []string{"name"},
		},
		{
			name:     "adjacent placeholders",
			content:  "{a}{b}{a}",
			expected: []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractVariables(tt.content)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ExtractVariables() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		vars        map[string]string
		expected    string
		wantMissing []string
	}{
		{
			name:     "full substitution",
			content:  "{caller}様から{time}に着信",
			vars:     map[string]string{"caller": "田中", "time": "14:30"},
			expected: "田中様から14:30に着信",
		},
		{
			name:        "missing variable stays verbatim and is reported",
			content:     "Hi {name}, ref {id}",
			vars:        map[string]string{"name": "Alice"},
			expected:    "Hi Alice, ref {id}",
			wantMissing: []string{"id"},
		},
		{
			name:        "repeated missing variable reported once",
			content:     "{id} and {id}",
			vars:        map[string]string{},
			expected:    "{id} and {id}",
			wantMissing: []string{"id"},
		},
		{
			name:     "empty value is a present variable",
			content:  "x{v}y",
			vars:     map[string]string{"v": ""},
			expected: "xy",
		},
		{
			name:     "no placeholders passes through",
			content:  "static message",
			vars:     nil,
			expected: "static message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, missing := Render(tt.content, tt.vars)
			if rendered != tt.expected {
				t.Errorf("Render() = %q, want %q", rendered, tt.expected)
			}
			if !reflect.DeepEqual(missing, tt.wantMissing) {
				t.Errorf("Render() missing = %v, want %v", missing, tt.wantMissing)
			}
		})
	}
}

func TestAppendCustomMessage(t *testing.T) {
	if got := AppendCustomMessage("body", "extra {not-a-var}"); got != "body\nextra {not-a-var}" {
		t.Errorf("AppendCustomMessage() = %q", got)
	}
	if got := AppendCustomMessage("body", ""); got != "body" {
		t.Errorf("AppendCustomMessage() with empty custom = %q, want body", got)
	}
}

// Property-based test: rendering with every extracted variable supplied
// leaves no placeholder unresolved, and missing is always a subset of the
// extracted set.
func TestRender_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("full variable bag renders with no missing", prop.ForAll(
		func(names []string, value string) bool {
			var b strings.Builder
			for _, n := range names {
				if n == "" {
					continue
				}
				b.WriteString("text {")
				b.WriteString(n)
				b.WriteString("} ")
			}
			content := b.String()

			vars := make(map[string]string)
			for _, n := range ExtractVariables(content) {
				vars[n] = value
			}

			_, missing := Render(content, vars)
			return len(missing) == 0
		},
		gen.SliceOf(gen.AlphaString()),
		gen.AlphaString(),
	))

	properties.Property("missing is a subset of extracted variables", prop.ForAll(
		func(names []string) bool {
			var b strings.Builder
			for _, n := range names {
				if n == "" {
					continue
				}
				b.WriteString("{")
				b.WriteString(n)
				b.WriteString("}")
			}
			content := b.String()

			extracted := make(map[string]struct{})
			for _, n := range ExtractVariables(content) {
				extracted[n] = struct{}{}
			}

			_, missing := Render(content, nil)
			for _, m := range missing {
				if _, ok := extracted[m]; !ok {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
