package extractor

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/flashnotes/backend/internal/models"
)

func newTestExtractor() *Extractor {
	return New(rand.New(rand.NewSource(42)))
}

func findQuestion(t *testing.T, cards []models.CandidateCard, question string) models.CandidateCard {
	t.Helper()
	for _, c := range cards {
		if c.Question == question {
			return c
		}
	}
	t.Fatalf("no candidate with question %q; got %d candidates: %+v", question, len(cards), cards)
	return models.CandidateCard{}
}

func TestExtract_QuestionHeadingPreservedVerbatim(t *testing.T) {
	source := "## What is a closure?\nA function bundled with references to its lexical scope."

	cards := newTestExtractor().Extract(source)
	if len(cards) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(cards), cards)
	}

	c := cards[0]
	if c.Question != "What is a closure?" {
		t.Errorf("question = %q, want preserved heading", c.Question)
	}
	if c.Answer != "A function bundled with references to its lexical scope." {
		t.Errorf("answer = %q", c.Answer)
	}
	if c.Origin != models.OriginHeuristicHeading {
		t.Errorf("origin = %q, want %q", c.Origin, models.OriginHeuristicHeading)
	}
}

func TestExtract_PitfallsListItem(t *testing.T) {
	source := "## Common Pitfalls\n- **Memory Leak** - holding unneeded references"

	cards := newTestExtractor().Extract(source)

	c := findQuestion(t, cards, "What problem is memory leak?")
	if c.Answer != "holding unneeded references" {
		t.Errorf("answer = %q, want remainder of the list item", c.Answer)
	}
	if c.Origin != models.OriginHeuristicList {
		t.Errorf("origin = %q, want %q", c.Origin, models.OriginHeuristicList)
	}

	// The heading block itself is pure list markup and must not surface.
	for _, card := range cards {
		if card.Origin == models.OriginHeuristicHeading {
			t.Errorf("heading candidate %q should have been filtered as list markup", card.Question)
		}
	}
}

func TestExtract_PlainHeadingFallback(t *testing.T) {
	source := "## Goroutines\nA goroutine is a lightweight thread managed by the Go runtime scheduler."

	cards := newTestExtractor().Extract(source)
	findQuestion(t, cards, "What are Goroutines?")

	source = "## The Event Loop\nThe event loop processes queued callbacks one at a time on a single thread."
	cards = newTestExtractor().Extract(source)
	findQuestion(t, cards, "What is Event Loop?")
}

func TestExtract_TriggerTable(t *testing.T) {
	source := strings.Join([]string{
		"## Pitfalls of Goroutines",
		"Leaked goroutines block forever on channels nobody reads from anymore.",
		"",
		"## Benefits of Interfaces",
		"Interfaces decouple callers from concrete implementations at compile time.",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	findQuestion(t, cards, "What problems should you avoid with Goroutines?")
	findQuestion(t, cards, "Why is Interfaces important?")
}

func TestExtract_ComparisonHeading(t *testing.T) {
	source := "## Channels vs Mutexes\nChannels communicate by sharing; mutexes guard shared state directly."

	cards := newTestExtractor().Extract(source)
	if len(cards) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(cards))
	}

	q := cards[0].Question
	if !strings.Contains(q, "Channels") || !strings.Contains(q, "Mutexes") {
		t.Errorf("comparison question %q should name both sides", q)
	}
	if !strings.HasSuffix(q, "?") {
		t.Errorf("comparison question %q should be a question", q)
	}
}

func TestExtract_StructuralHeadingsSkipped(t *testing.T) {
	source := strings.Join([]string{
		"## Table of Contents",
		"Links to every section of this document live here for quick access.",
		"",
		"## References",
		"All external sources cited throughout this document are listed here.",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	if len(cards) != 0 {
		t.Errorf("expected no candidates from structural headings, got %+v", cards)
	}
}

func TestExtract_BoldDefinition(t *testing.T) {
	source := "**Closure**: a function value that captures variables from its enclosing scope."

	cards := newTestExtractor().Extract(source)
	c := findQuestion(t, cards, "What is Closure?")
	if c.Origin != models.OriginHeuristicDefinition {
		t.Errorf("origin = %q, want %q", c.Origin, models.OriginHeuristicDefinition)
	}
	if !strings.HasPrefix(c.Answer, "a function value") {
		t.Errorf("answer = %q", c.Answer)
	}
}

func TestExtract_BoldDefinitionTooShortSkipped(t *testing.T) {
	cards := newTestExtractor().Extract("**Slice**: a view.")
	if len(cards) != 0 {
		t.Errorf("expected short explanation to be skipped, got %+v", cards)
	}
}

func TestExtract_ListContinuationLines(t *testing.T) {
	source := strings.Join([]string{
		"## Benefits",
		"- **Composability** - small interfaces combine",
		"  into larger behaviors without inheritance",
		"- **Testability** - implementations swap freely in tests",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	c := findQuestion(t, cards, "Why is composability beneficial?")
	if !strings.Contains(c.Answer, "without inheritance") {
		t.Errorf("continuation line not folded into answer: %q", c.Answer)
	}
	findQuestion(t, cards, "Why is testability beneficial?")
}

func TestExtract_CodeBlockUnderHeading(t *testing.T) {
	source := strings.Join([]string{
		"## Worker Pools",
		"",
		"```go",
		"for i := 0; i < n; i++ {",
		"\tgo worker(jobs, results)",
		"}",
		"```",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	c := findQuestion(t, cards, "How do you implement Worker Pools?")
	if c.Origin != models.OriginHeuristicCode {
		t.Errorf("origin = %q, want %q", c.Origin, models.OriginHeuristicCode)
	}
	if !strings.Contains(c.Answer, "go worker(jobs, results)") {
		t.Errorf("answer should carry the code body, got %q", c.Answer)
	}
	if strings.Count(c.Answer, "```") != 2 {
		t.Errorf("answer fences unbalanced: %q", c.Answer)
	}
}

func TestExtract_CodeBlockAntiPattern(t *testing.T) {
	source := strings.Join([]string{
		"## Incorrect Mutex Usage",
		"",
		"```go",
		"mu.Lock()",
		"return cache[key] // never unlocked",
		"```",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	findQuestion(t, cards, "What problem does this code demonstrate?")
}

func TestExtract_CodeBlockProseMining(t *testing.T) {
	source := strings.Join([]string{
		"Use a buffered channel to limit concurrent requests.",
		"",
		"```go",
		"sem := make(chan struct{}, 10)",
		"```",
	}, "\n")

	cards := newTestExtractor().Extract(source)
	findQuestion(t, cards, "How do you limit concurrent requests?")
}

func TestExtract_CodeBlockNoContextSkipped(t *testing.T) {
	source := "```go\nfmt.Println(\"hello world\")\n```"
	cards := newTestExtractor().Extract(source)
	if len(cards) != 0 {
		t.Errorf("expected code block without context to be skipped, got %+v", cards)
	}
}

func TestExtract_DeterministicForSeed(t *testing.T) {
	source := strings.Join([]string{
		"## Maps vs Slices",
		"Maps give keyed lookup; slices give ordered sequential access to elements.",
		"",
		"## Error Handling",
		"Errors are values returned explicitly and checked at every call site.",
	}, "\n")

	first := New(rand.New(rand.NewSource(7))).Extract(source)
	second := New(rand.New(rand.NewSource(7))).Extract(source)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different candidates:\n%+v\n%+v", first, second)
	}
}

func TestExtract_DeduplicatesByNormalizedQuestion(t *testing.T) {
	source := strings.Join([]string{
		"## What is a closure?",
		"A function bundled with references to its lexical scope.",
		"",
		"**A Closure**: a function plus the environment it was declared in.",
	}, "\n")

	cards := newTestExtractor().Extract(source)

	count := 0
	for _, c := range cards {
		if NormalizeQuestion(c.Question) == "whatisaclosure" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 candidate after dedup, got %d", count)
	}
	// First occurrence wins.
	c := findQuestion(t, cards, "What is a closure?")
	if !strings.HasPrefix(c.Answer, "A function bundled") {
		t.Errorf("dedup kept the wrong occurrence: %q", c.Answer)
	}
}

func TestValidate(t *testing.T) {
	long := strings.Repeat("a", 40)
	tests := []struct {
		name     string
		question string
		answer   string
		want     bool
	}{
		{"valid", "What is a slice?", long, true},
		{"question too short", "Hm?", long, false},
		{"question too long", strings.Repeat("q", 501), long, false},
		{"answer too short", "What is a slice?", "short", false},
		{"answer too long", "What is a slice?", strings.Repeat("a", 1501), false},
		{"navigation question", "Navigation", long, false},
		{"dangling fence", "What is a slice?", "```go\n" + long, false},
		{"list markup answer", "What is a slice?", "- one item here okay\n- two items here okay", false},
		{"mixed list and prose", "What is a slice?", "Prose line explaining things first.\n- one\n- two\n- three\nMore prose at the end here.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(models.CandidateCard{Question: tt.question, Answer: tt.answer, Origin: models.OriginManual})
			if got != tt.want {
				t.Errorf("Validate(%q, %q) = %v, want %v", tt.question, tt.answer, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is a closure?", "whatisaclosure"},
		{"  What IS a Closure!  ", "whatisaclosure"},
		{"How do you use sync.WaitGroup?", "howdoyouusesyncwaitgroup"},
		{"???", ""},
	}
	for _, tt := range tests {
		if got := NormalizeQuestion(tt.in); got != tt.want {
			t.Errorf("NormalizeQuestion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsPlural(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Goroutines", true},
		{"Channels", true},
		{"Closure", false},
		{"Class", false},  // "ss"
		{"Radius", false}, // "us"
		{"Analysis", false}, // "is"
		{"s", false},
	}
	for _, tt := range tests {
		if got := isPlural(tt.in); got != tt.want {
			t.Errorf("isPlural(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
