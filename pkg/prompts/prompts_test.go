package prompts

import (
	"strings"
	"testing"
)

func TestBuildBasicPrompt(t *testing.T) {
	prompt := New().
		WithGame("A noir mystery in a rain-soaked city.").
		WithScene("The detective's office, past midnight.").
		WithRecentEvents([]string{"A knock at the door", "The phone went dead"}).
		WithQuestion("Who is at the door?", "Betrayal, old friend").
		WithCount(2).
		Build()

	for _, want := range []string{
		"You are interpreting oracle results for a solo RPG player.",
		"Game: A noir mystery in a rain-soaked city.",
		"Current Scene: The detective's office, past midnight.",
		"- A knock at the door",
		"- The phone went dead",
		"Player's Question/Context: Who is at the door?",
		"Oracle Results: Betrayal, old friend",
		"Please provide 2 different interpretations",
		"## [Title of first interpretation]",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	if strings.Contains(prompt, "retry attempt") {
		t.Error("first attempt should not mention retries")
	}
	if strings.Contains(prompt, "PREVIOUS INTERPRETATIONS") {
		t.Error("first attempt should not carry a do-not-repeat block")
	}
}

func TestBuildNoEvents(t *testing.T) {
	prompt := New().WithQuestion("q", "r").Build()
	if !strings.Contains(prompt, "No recent events") {
		t.Error("expected fixed sentence for empty event list")
	}
}

func TestBuildRetryPrompt(t *testing.T) {
	previous := []ParsedInterpretation{
		{Title: "A Trap", Description: "The door is rigged."},
	}
	prompt := New().
		WithQuestion("q", "r").
		WithRetry(previous, 1).
		Build()

	for _, want := range []string{
		"=== PREVIOUS INTERPRETATIONS (DO NOT REPEAT THESE) ===",
		"## A Trap",
		"The door is rigged.",
		"=== END OF PREVIOUS INTERPRETATIONS ===",
		"This is retry attempt #2. Please provide COMPLETELY DIFFERENT",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("retry prompt missing %q", want)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	build := func() string {
		return New().
			WithGame("g").
			WithScene("s").
			WithRecentEvents([]string{"e1", "e2"}).
			WithQuestion("q", "r").
			Build()
	}
	if build() != build() {
		t.Error("identical inputs should produce identical prompts")
	}
}

func TestParseInterpretations(t *testing.T) {
	raw := `## The Hidden Passage
Behind the bookshelf, a draft betrays a hollow space.

## An Old Debt
The innkeeper recognizes the seal on the letter.
He owes its bearer his life.`

	parsed := ParseInterpretations(raw)
	if len(parsed) != 2 {
		t.Fatalf("expected 2 interpretations, got %d", len(parsed))
	}
	if parsed[0].Title != "The Hidden Passage" {
		t.Errorf("unexpected title: %q", parsed[0].Title)
	}
	if parsed[1].Description != "The innkeeper recognizes the seal on the letter.\nHe owes its bearer his life." {
		t.Errorf("unexpected multi-line description: %q", parsed[1].Description)
	}
}

func TestParseInterpretationsCodeFence(t *testing.T) {
	raw := "```markdown\n## Fenced\nStill parses.\n```"
	parsed := ParseInterpretations(raw)
	if len(parsed) != 1 {
		t.Fatalf("expected 1 interpretation, got %d", len(parsed))
	}
	if parsed[0].Title != "Fenced" || parsed[0].Description != "Still parses." {
		t.Errorf("unexpected result: %+v", parsed[0])
	}
}

func TestParseInterpretationsMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{name: "empty", raw: "", want: 0},
		{name: "prose only", raw: "The oracle is silent today.", want: 0},
		{name: "heading without body", raw: "## Just A Title\n\n## Another\nWith text.", want: 1},
		{name: "wrong heading level", raw: "# Top Level\nNot an entry.", want: 0},
		{name: "bare marker", raw: "## \ntext under empty heading", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := ParseInterpretations(tt.raw)
			if len(parsed) != tt.want {
				t.Errorf("got %d interpretations, want %d", len(parsed), tt.want)
			}
		})
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	interps := []ParsedInterpretation{
		{Title: "First", Description: "One thing happens."},
		{Title: "Second", Description: "Another thing happens."},
	}

	parsed := ParseInterpretations(RenderInterpretations(interps))
	if len(parsed) != len(interps) {
		t.Fatalf("round trip lost entries: got %d, want %d", len(parsed), len(interps))
	}
	for i := range interps {
		if parsed[i] != interps[i] {
			t.Errorf("entry %d changed: got %+v, want %+v", i, parsed[i], interps[i])
		}
	}
}
