// Package tagging infers topic labels from document text using an
// ordered list of keyword rules.
package tagging

import (
	"regexp"
	"strings"
)

// MaxTags caps the number of tags inferred for one document.
const MaxTags = 5

// Rule maps a keyword set to a tag. A rule fires when any of its
// keywords appears in the document's token set.
type Rule struct {
	// Tag is the label applied when the rule fires.
	Tag string

	// Keywords are the lowercase trigger words.
	Keywords []string
}

// Tagger evaluates rules in order against a normalised token set.
// Rule order is significant: when more than MaxTags rules fire, the
// earliest win.
type Tagger struct {
	rules []Rule
}

var tokenPattern = regexp.MustCompile(`\b\w+\b`)

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{Tag: "Islamic Studies", Keywords: []string{"islam", "quran", "sharia", "ummah"}},
		{Tag: "Decolonial", Keywords: []string{"indigenous", "ancestral", "customary", "tribal"}},
		{Tag: "Political Theory", Keywords: []string{"sovereignty", "nationhood", "self-determination"}},
		{Tag: "Philosophy", Keywords: []string{"philosophy", "epistemology", "metaphysics"}},
		{Tag: "Geopolitics", Keywords: []string{"eurasia", "china", "russia", "usa", "geopolitics"}},
	}
}

// New creates a tagger with the given rules. Nil or empty rules fall
// back to DefaultRules.
func New(rules []Rule) *Tagger {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Tagger{rules: rules}
}

// Tags returns the tags whose rules fire on the text, in rule order,
// capped at MaxTags.
func (t *Tagger) Tags(text string) []string {
	tokens := tokenise(text)

	var tags []string
	for _, rule := range t.rules {
		if len(tags) == MaxTags {
			break
		}
		for _, kw := range rule.Keywords {
			if _, ok := tokens[kw]; ok {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	return tags
}

// tokenise lowercases the text and extracts its word tokens as a set.
func tokenise(text string) map[string]struct{} {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
