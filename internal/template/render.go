// Package template implements placeholder extraction and rendering for
// notification templates.
package template

import (
	"regexp"
	"strings"
)

/*
 * Template rendering.
 *
 * Placeholder syntax is {identifier} where identifier is any non-empty run of
 * characters excluding '}'. Two operations:
 *
 *   - ExtractVariables: returns placeholder names deduplicated in
 *     first-occurrence order. Stable order is needed for the authoring UI's
 *     "available variables" display and for deterministic tests.
 *
 *   - Render: substitutes placeholders from a variable bag. Placeholders with
 *     no matching key stay verbatim in the output and their names are
 *     returned as missing. Missing variables are recoverable, not an error:
 *     partial information still reaches the recipient.
 *
 * A custom message, when configured on an action, is appended after the
 * rendered template separated by a newline and is never scanned for
 * placeholders (printed literally).
 */

// placeholderPattern matches {identifier} with a non-empty identifier.
// Identifier charset is deliberately wide (anything but '}') because the
// authoring UI accepts Japanese variable names.
var placeholderPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ExtractVariables returns the placeholder names in content, deduplicated
// while preserving first-occurrence order.
func ExtractVariables(content string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	vars := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		vars = append(vars, name)
	}
	return vars
}

// Render substitutes placeholders in content from vars.
// Unmatched placeholders remain verbatim and their names come back as
// missing (deduplicated, first-seen order). Never fails.
func Render(content string, vars map[string]string) (rendered string, missing []string) {
	seen := make(map[string]struct{})

	rendered = placeholderPattern.ReplaceAllStringFunc(content, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		if _, dup := seen[name]; !dup {
			seen[name] = struct{}{}
			missing = append(missing, name)
		}
		return placeholder
	})

	return rendered, missing
}

// AppendCustomMessage joins a rendered message with an optional literal
// custom message. The custom message is not scanned for variables.
func AppendCustomMessage(rendered, custom string) string {
	if custom == "" {
		return rendered
	}
	var b strings.Builder
	b.Grow(len(rendered) + 1 + len(custom))
	b.WriteString(rendered)
	b.WriteByte('\n')
	b.WriteString(custom)
	return b.String()
}
