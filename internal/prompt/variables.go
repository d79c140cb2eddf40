package prompt

import "regexp"

var variablePattern = regexp.MustCompile(`<([^>=]+)(?:=([^>]*))?>`)

// Variable is a <name> or <name=default> placeholder in prompt content.
type Variable struct {
	Name       string
	Default    string
	HasDefault bool
}

// ParseVariables returns the placeholders in content in order of first
// appearance. A name that appears more than once is reported once.
func ParseVariables(content string) []Variable {
	var vars []Variable
	seen := map[string]bool{}
	for _, m := range variablePattern.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		if seen[name] {
			continue
		}
		seen[name] = true
		v := Variable{Name: name}
		if m[4] >= 0 {
			v.Default = content[m[4]:m[5]]
			v.HasDefault = true
		}
		vars = append(vars, v)
	}
	return vars
}

// ReplaceVariables substitutes every placeholder with its value from values,
// else its default, else the empty string.
func ReplaceVariables(content string, values map[string]string) string {
	return variablePattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := variablePattern.FindStringSubmatch(match)
		if v, ok := values[sub[1]]; ok {
			return v
		}
		return sub[2]
	})
}
