package gemini

import "strings"

// CheckFormat reports contract violations in a generated digest. Findings
// are advisory: a slightly off-format digest is still delivered, but the
// violations land in the logs so prompt drift gets noticed.
func CheckFormat(text string) []string {
	var problems []string

	if !strings.HasPrefix(text, Greeting) {
		problems = append(problems, "digest does not start with the fixed greeting")
	}
	if strings.Count(text, "---") < 2 {
		problems = append(problems, "missing section separators")
	}
	if !strings.Contains(text, SectionAdvancements) {
		problems = append(problems, "advancements section header missing")
	}
	if !strings.Contains(text, SectionGeneral) {
		problems = append(problems, "general news section header missing")
	}
	if !strings.Contains(text, "[Read More](") {
		problems = append(problems, "no source links present")
	}
	if strings.Contains(text, "**") {
		problems = append(problems, "double-star bold present")
	}
	if strings.Contains(stripLinkTargets(text), "_") {
		problems = append(problems, "underscore present outside link targets")
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			problems = append(problems, "markdown header present")
			break
		}
	}

	return problems
}

// stripLinkTargets removes the URL part of Markdown links; underscores are
// only safe inside those.
func stripLinkTargets(text string) string {
	var b strings.Builder
	for {
		start := strings.Index(text, "](")
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		end := strings.Index(text[start:], ")")
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:start+1])
		text = text[start+end+1:]
	}
}
