package prompts

import (
	"fmt"
	"strings"
)

// exampleFormat shows the model the expected response shape. The parser
// relies only on the "## " heading marker; everything else here is
// guidance.
const exampleFormat = `## The Mysterious Footprints
The footprints suggest someone sneaked into the cellar during the night. Based on their size and depth, they likely belong to a heavier individual carrying something substantial - possibly the stolen brandy barrel.

## An Inside Job
The lack of forced entry and the selective theft of only the special brandy barrel suggests this was done by someone familiar with the cellar layout and the value of that specific barrel.`

// ParsedInterpretation is one title/description pair extracted from a
// model response.
type ParsedInterpretation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Builder assembles an oracle interpretation prompt. It is pure: Build
// has no side effects and is deterministic for identical inputs.
type Builder struct {
	gameDescription  string
	sceneDescription string
	recentEvents     []string
	context          string
	oracleResults    string
	count            int
	previous         []ParsedInterpretation
	retryAttempt     int
}

// New creates a prompt builder with the default interpretation count.
func New() *Builder {
	return &Builder{count: 3}
}

// WithGame sets the game description.
func (b *Builder) WithGame(description string) *Builder {
	b.gameDescription = description
	return b
}

// WithScene sets the current scene description.
func (b *Builder) WithScene(description string) *Builder {
	b.sceneDescription = description
	return b
}

// WithRecentEvents sets the recent event descriptions, newest first.
func (b *Builder) WithRecentEvents(events []string) *Builder {
	b.recentEvents = events
	return b
}

// WithQuestion sets the player's question and the raw oracle results.
func (b *Builder) WithQuestion(context, oracleResults string) *Builder {
	b.context = context
	b.oracleResults = oracleResults
	return b
}

// WithCount sets how many interpretations to request.
func (b *Builder) WithCount(count int) *Builder {
	if count > 0 {
		b.count = count
	}
	return b
}

// WithRetry marks this prompt as a retry. previous lists interpretations
// the player (or a failed attempt) already rejected; retryAttempt is the
// zero-based attempt counter.
func (b *Builder) WithRetry(previous []ParsedInterpretation, retryAttempt int) *Builder {
	b.previous = previous
	b.retryAttempt = retryAttempt
	return b
}

// Build renders the complete prompt.
func (b *Builder) Build() string {
	var sb strings.Builder

	sb.WriteString("You are interpreting oracle results for a solo RPG player.\n\n")
	sb.WriteString("Game: " + b.gameDescription + "\n")
	sb.WriteString("Current Scene: " + b.sceneDescription + "\n")
	sb.WriteString("Recent Events:\n")
	sb.WriteString(formatEvents(b.recentEvents) + "\n\n")

	sb.WriteString("Player's Question/Context: " + b.context + "\n")
	sb.WriteString("Oracle Results: " + b.oracleResults + "\n\n")

	if prev := formatPrevious(b.previous, b.retryAttempt); prev != "" {
		sb.WriteString(prev)
	}
	if retry := retryText(b.retryAttempt); retry != "" {
		sb.WriteString(retry + "\n\n")
	}

	fmt.Fprintf(&sb, "Please provide %d different interpretations of these oracle results.\n", b.count)
	sb.WriteString("Each interpretation should make sense in the context of the game and scene.\n")
	sb.WriteString("Be creative but consistent with the established narrative.\n\n")

	sb.WriteString("Format your response using Markdown headers exactly as follows:\n\n")
	sb.WriteString("## [Title of first interpretation]\n")
	sb.WriteString("[Detailed description of first interpretation]\n\n")
	sb.WriteString("## [Title of second interpretation]\n")
	sb.WriteString("[Detailed description of second interpretation]\n\n")
	sb.WriteString("[and so on for each interpretation]\n\n")
	sb.WriteString("Here's an example of the format:\n\n")
	sb.WriteString(exampleFormat + "\n\n")
	sb.WriteString("Important:\n")
	sb.WriteString("- Start each interpretation with \"## \" followed by a descriptive title\n")
	sb.WriteString("- Then provide the detailed description on the next line(s)\n")
	sb.WriteString("- Make sure to separate interpretations with a blank line\n")
	sb.WriteString("- Do not include any text outside this format\n")
	sb.WriteString("- Do not number the interpretations\n")

	return sb.String()
}

// formatEvents renders recent events as a bulleted list, or a fixed
// sentence when there are none.
func formatEvents(events []string) string {
	if len(events) == 0 {
		return "No recent events"
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, "- "+e)
	}
	return strings.Join(lines, "\n")
}

// formatPrevious renders the do-not-repeat block for retries.
func formatPrevious(previous []ParsedInterpretation, retryAttempt int) string {
	if len(previous) == 0 || retryAttempt <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("=== PREVIOUS INTERPRETATIONS (DO NOT REPEAT THESE) ===\n\n")
	for _, p := range previous {
		sb.WriteString("## " + p.Title + "\n" + p.Description + "\n\n")
	}
	sb.WriteString("=== END OF PREVIOUS INTERPRETATIONS ===\n\n")
	return sb.String()
}

// retryText demands a different result on retry attempts.
func retryText(retryAttempt int) string {
	if retryAttempt <= 0 {
		return ""
	}
	return fmt.Sprintf("This is retry attempt #%d. Please provide COMPLETELY DIFFERENT interpretations than those listed above.", retryAttempt+1)
}

// BuildInterpretationPrompt is a convenience function for the common case.
func BuildInterpretationPrompt(
	gameDescription string,
	sceneDescription string,
	recentEvents []string,
	context string,
	oracleResults string,
	count int,
	previous []ParsedInterpretation,
	retryAttempt int,
) string {
	return New().
		WithGame(gameDescription).
		WithScene(sceneDescription).
		WithRecentEvents(recentEvents).
		WithQuestion(context, oracleResults).
		WithCount(count).
		WithRetry(previous, retryAttempt).
		Build()
}
