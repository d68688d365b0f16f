package prompts

import "strings"

// ParseInterpretations extracts title/description pairs from a model
// response. The only structure it relies on is the "## " heading marker:
// each heading opens an entry, the non-heading lines that follow (joined
// and trimmed) become its description, and a heading with no following
// text is dropped.
//
// Malformed input is not an error. Any response without at least one
// well-formed heading parses to an empty slice, which is the signal the
// orchestrator uses to retry.
func ParseInterpretations(raw string) []ParsedInterpretation {
	var (
		parsed  []ParsedInterpretation
		title   string
		body    []string
		inEntry bool
	)

	flush := func() {
		if !inEntry {
			return
		}
		desc := strings.TrimSpace(strings.Join(body, "\n"))
		if title != "" && desc != "" {
			parsed = append(parsed, ParsedInterpretation{Title: title, Description: desc})
		}
		title = ""
		body = nil
		inEntry = false
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		// Models occasionally wrap the response in a code fence
		// despite instructions; skip fence lines rather than letting
		// them pollute a description.
		if strings.HasPrefix(trimmed, "```") {
			continue
		}

		if strings.HasPrefix(trimmed, "## ") {
			flush()
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			if title != "" {
				inEntry = true
			}
			continue
		}

		if inEntry {
			body = append(body, trimmed)
		}
	}
	flush()

	return parsed
}

// RenderInterpretations is the inverse of ParseInterpretations: it
// renders pairs back into the heading format. Used for the do-not-repeat
// prompt block and round-trip tests.
func RenderInterpretations(interps []ParsedInterpretation) string {
	var sb strings.Builder
	for i, p := range interps {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## " + p.Title + "\n" + p.Description + "\n")
	}
	return sb.String()
}
