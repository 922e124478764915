// Package prompt renders the {{variable}} templates sent to the LLM.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholder = regexp.MustCompile(`\{\{(\w+)\}\}`)

// MissingVarsError lists placeholders that had no value.
type MissingVarsError struct {
	Template string // empty for bare strings
	Names    []string
}

func (e *MissingVarsError) Error() string {
	if e.Template == "" {
		return "missing template variables: " + strings.Join(e.Names, ", ")
	}
	return fmt.Sprintf("template %s: missing variables: %s", e.Template, strings.Join(e.Names, ", "))
}

// Template is a system/user message pair rendered with the same variables.
type Template struct {
	Name   string
	System string
	User   string
}

// Variables lists every placeholder used by either message.
func (t Template) Variables() []string {
	return ExtractVariables(t.System + "\n" + t.User)
}

// Render fills both messages. Nothing is rendered unless every placeholder
// in either message has a value.
func (t Template) Render(vars map[string]string) (system, user string, err error) {
	if missing := missingVars(t.Variables(), vars); len(missing) > 0 {
		return "", "", &MissingVarsError{Template: t.Name, Names: missing}
	}
	return expand(t.System, vars), expand(t.User, vars), nil
}

// Render fills a single template string.
func Render(template string, vars map[string]string) (string, error) {
	if missing := missingVars(ExtractVariables(template), vars); len(missing) > 0 {
		return "", &MissingVarsError{Names: missing}
	}
	return expand(template, vars), nil
}

// expand assumes every placeholder has a value.
func expand(template string, vars map[string]string) string {
	var b strings.Builder
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(template[last:m[0]])
		b.WriteString(vars[template[m[2]:m[3]]])
		last = m[1]
	}
	b.WriteString(template[last:])
	return b.String()
}

// ExtractVariables returns placeholder names in order of first appearance.
func ExtractVariables(template string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

func missingVars(names []string, vars map[string]string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := vars[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}
