package extractor

import (
	"math/rand"
	"regexp"
	"strings"
)

// structuralHeadings name sections that are navigation rather than
// content; heading blocks under them are never turned into cards.
var structuralHeadings = []string{
	"table of contents",
	"contents",
	"summary",
	"overview",
	"navigation",
	"references",
	"see also",
	"further reading",
	"index",
	"links",
}

// leadIns are generic heading prefixes stripped before template matching,
// longest first so "introduction to" wins over "the".
var leadIns = []string{
	"getting started with",
	"introduction to",
	"a deep dive into",
	"understanding",
	"working with",
	"overview of",
	"guide to",
	"intro to",
	"learning",
	"about",
	"using",
	"the",
	"an",
	"a",
}

// comparisonTemplates phrase a versus-style heading; one is picked at
// random per card for variety.
var comparisonTemplates = []func(a, b string) string{
	func(a, b string) string { return "What is the difference between " + a + " and " + b + "?" },
	func(a, b string) string { return "How does " + a + " differ from " + b + "?" },
	func(a, b string) string { return "When should you choose " + a + " over " + b + "?" },
}

var comparisonRe = regexp.MustCompile(`(?i)^(.{2,}?)\s+(?:vs\.?|versus)\s+(.{2,})$`)

// questionRule maps a trigger phrase found in a heading to a question
// template. Rules are matched in order; the first hit wins.
type questionRule struct {
	triggers []string
	template func(subject string) string
}

// questionRules is the priority-ordered trigger table for headings that
// are neither questions nor comparisons.
var questionRules = []questionRule{
	{
		triggers: []string{"pitfalls", "pitfall", "gotchas", "mistakes", "problems"},
		template: func(s string) string { return "What problems should you avoid with " + s + "?" },
	},
	{
		triggers: []string{"benefits", "advantages", "why use"},
		template: func(s string) string { return "Why is " + s + " important?" },
	},
	{
		triggers: []string{"types of", "types", "kinds of"},
		template: func(s string) string { return "What are the types of " + s + "?" },
	},
	{
		triggers: []string{"examples", "use cases"},
		template: func(s string) string { return "What are examples of " + s + "?" },
	},
	{
		triggers: []string{"features"},
		template: func(s string) string { return "What are the key features of " + s + "?" },
	},
	{
		triggers: []string{"steps", "process", "workflow"},
		template: func(s string) string { return "What are the steps of " + s + "?" },
	},
	{
		triggers: []string{"how to", "how do"},
		template: func(s string) string { return "How do you " + s + "?" },
	},
	{
		triggers: []string{"best practices"},
		template: func(s string) string { return "What are the best practices for " + s + "?" },
	},
}

// listContext classifies the heading a list appears under, selecting the
// question template for bold-led items beneath it.
type listContext int

const (
	ctxGeneric listContext = iota
	ctxBenefits
	ctxTypes
	ctxExamples
	ctxPitfalls
	ctxFeatures
	ctxSteps
)

func classifyListContext(heading string) listContext {
	h := strings.ToLower(heading)
	switch {
	case containsAny(h, "pitfall", "gotcha", "mistake", "problem"):
		return ctxPitfalls
	case containsAny(h, "benefit", "advantage"):
		return ctxBenefits
	case containsAny(h, "type", "kind"):
		return ctxTypes
	case containsAny(h, "example", "use case"):
		return ctxExamples
	case containsAny(h, "feature"):
		return ctxFeatures
	case containsAny(h, "step", "process", "workflow"):
		return ctxSteps
	default:
		return ctxGeneric
	}
}

// listQuestion renders a bold list-item term into a question appropriate
// for its heading context. Terms are lowercased to read as noun phrases.
func listQuestion(ctx listContext, term string) string {
	t := strings.ToLower(strings.TrimSpace(term))
	switch ctx {
	case ctxPitfalls:
		return "What problem is " + t + "?"
	case ctxBenefits:
		return "Why is " + t + " beneficial?"
	case ctxExamples:
		return "What does the " + t + " example show?"
	case ctxFeatures:
		return "What does " + t + " do?"
	case ctxSteps:
		return "What happens during " + t + "?"
	default: // ctxTypes and ctxGeneric
		return "What is " + t + "?"
	}
}

// antiPatternMarkers in a heading preceding a code block flip the
// question to ask what the code does wrong.
var antiPatternMarkers = []string{"wrong", "incorrect", "mistake", "anti-pattern", "antipattern", "avoid", "bad"}

// actionVerbs start prose lines that describe what a code block does.
var actionVerbs = []string{
	"create", "creates", "build", "builds", "implement", "implements",
	"configure", "configures", "install", "installs", "parse", "parses",
	"handle", "handles", "use", "uses", "write", "writes", "run", "runs",
	"define", "defines", "set", "sets", "convert", "converts",
	"validate", "validates", "sort", "sorts", "filter", "filters",
	"connect", "connects", "add", "adds", "declare", "declares",
}

// questionFromHeading turns a heading into a question. Already-phrased
// questions are kept verbatim; versus headings get a comparison template;
// otherwise the stripped noun phrase runs through the trigger table with a
// plural-aware "What is/are X?" fallback.
func questionFromHeading(heading string, rng *rand.Rand) string {
	h := strings.TrimSpace(heading)
	if strings.HasSuffix(h, "?") {
		return h
	}

	if m := comparisonRe.FindStringSubmatch(h); m != nil {
		tmpl := comparisonTemplates[rng.Intn(len(comparisonTemplates))]
		return tmpl(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	}

	topic := stripLeadIns(h)

	lower := strings.ToLower(topic)
	for _, rule := range questionRules {
		for _, trigger := range rule.triggers {
			if idx := strings.Index(lower, trigger); idx >= 0 {
				return rule.template(subjectFor(topic, idx, len(trigger)))
			}
		}
	}

	if isPlural(topic) {
		return "What are " + topic + "?"
	}
	return "What is " + topic + "?"
}

// stripLeadIns removes generic lead-in verbs/articles from the front of a
// heading, repeating so "Understanding the Event Loop" loses both words.
func stripLeadIns(s string) string {
	for {
		trimmed := strings.TrimSpace(s)
		lower := strings.ToLower(trimmed)
		stripped := false
		for _, lead := range leadIns {
			if strings.HasPrefix(lower, lead+" ") {
				s = trimmed[len(lead)+1:]
				stripped = true
				break
			}
		}
		if !stripped {
			return trimmed
		}
	}
}

// subjectFor extracts the noun phrase a trigger applies to: the text after
// the trigger (minus connective words), else the text before it (minus
// qualifiers), else the whole topic.
func subjectFor(topic string, idx, triggerLen int) string {
	after := strings.TrimSpace(topic[idx+triggerLen:])
	after = strings.TrimLeft(after, ":")
	afterLower := strings.ToLower(after)
	for _, conn := range []string{"of ", "in ", "with ", "for ", "when "} {
		if strings.HasPrefix(afterLower, conn) {
			after = strings.TrimSpace(after[len(conn):])
			break
		}
	}
	if after != "" {
		return after
	}

	before := strings.TrimSpace(topic[:idx])
	beforeLower := strings.ToLower(before)
	for _, qual := range []string{"common", "typical", "key", "main", "frequent"} {
		if beforeLower == qual {
			before = ""
		}
	}
	if before != "" {
		return before
	}
	return topic
}

// isPlural applies the simple trailing-s heuristic: a final "s" not
// preceded by "ss", "us", or "is".
func isPlural(s string) bool {
	w := strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndexByte(w, ' '); i >= 0 {
		w = w[i+1:]
	}
	if len(w) < 2 || !strings.HasSuffix(w, "s") {
		return false
	}
	for _, suffix := range []string{"ss", "us", "is"} {
		if strings.HasSuffix(w, suffix) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isStructuralHeading(heading string) bool {
	h := strings.ToLower(strings.TrimSpace(heading))
	for _, s := range structuralHeadings {
		if h == s || strings.HasPrefix(h, s+" ") {
			return true
		}
	}
	return false
}
