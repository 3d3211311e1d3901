// Package report extracts structured findings from free-text radiology
// reports: per tracked feature, whether it is mentioned, negated, hedged,
// and any measured value written next to its label. Matching is keyword and
// regex based; the output contract is independent of how sentences are
// segmented.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"radverify/internal/findings"
)

// Mention kinds.
const (
	KindMeasurement = "measurement"
	KindStructure   = "structure"
)

// Mention is the parsed verdict for one tracked feature.
type Mention struct {
	Feature         string   `json:"feature"`
	Kind            string   `json:"kind"`
	Category        string   `json:"category,omitempty"`
	Mentioned       bool     `json:"mentioned"`
	Negated         bool     `json:"negated"`
	Uncertain       bool     `json:"uncertain"`
	Value           *float64 `json:"value,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	ConfidenceTerms []string `json:"confidence_terms,omitempty"`
	Snippet         string   `json:"context_snippet,omitempty"`
}

// Findings is the full parser output, ordered like the catalog.
type Findings struct {
	Measurements []Mention `json:"measurements"`
	Structures   []Mention `json:"structures"`
	Sentences    int       `json:"sentences"`
}

// MeasurementByName returns the parsed measurement mention, or nil.
func (f *Findings) MeasurementByName(name string) *Mention {
	for i := range f.Measurements {
		if f.Measurements[i].Feature == name {
			return &f.Measurements[i]
		}
	}
	return nil
}

// StructureByName returns the parsed structure mention, or nil.
func (f *Findings) StructureByName(name string) *Mention {
	for i := range f.Structures {
		if f.Structures[i].Feature == name {
			return &f.Structures[i]
		}
	}
	return nil
}

// EmptyReportError reports a report that is empty after trimming.
type EmptyReportError struct{}

func (EmptyReportError) Error() string { return "report text is empty" }

const snippetWindow = 60

// Parser holds the compiled measurement patterns.
type Parser struct {
	measurementPatterns map[string]*regexp.Regexp
}

// NewParser compiles one pattern per tracked parameter from its label
// synonyms, e.g. "BPD: 47.0 mm" or "biparietal diameter 47 mm".
func NewParser() *Parser {
	patterns := make(map[string]*regexp.Regexp, len(findings.Parameters))
	for _, param := range findings.Parameters {
		alts := make([]string, len(param.Synonyms))
		for i, syn := range param.Synonyms {
			alts[i] = regexp.QuoteMeta(syn)
		}
		expr := fmt.Sprintf(`(?i)\b(?:%s)\b[^\d\n]{0,20}?(\d+(?:\.\d+)?)\s*(mm|cm)`, strings.Join(alts, "|"))
		patterns[param.Name] = regexp.MustCompile(expr)
	}
	return &Parser{measurementPatterns: patterns}
}

// Parse extracts mentions for every catalog feature. The notes record one
// audit entry per extraction step.
func (p *Parser) Parse(text string) (*Findings, []string, error) {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil, nil, EmptyReportError{}
	}

	var notes []string
	lowered := strings.ToLower(cleaned)
	sentences := splitSentences(cleaned)
	notes = append(notes, fmt.Sprintf("report cleaned, %d chars, %d sentences", len(cleaned), len(sentences)))

	measurements := p.parseMeasurements(cleaned, lowered)
	mentionedM := 0
	for _, m := range measurements {
		if m.Mentioned {
			mentionedM++
		}
	}
	notes = append(notes, fmt.Sprintf("%d of %d tracked measurements mentioned", mentionedM, len(measurements)))

	structures := parseStructures(lowered, sentences)
	mentionedS, negatedS := 0, 0
	for _, m := range structures {
		if m.Mentioned {
			mentionedS++
		}
		if m.Negated {
			negatedS++
		}
	}
	notes = append(notes, fmt.Sprintf("%d structures mentioned, %d negated", mentionedS, negatedS))

	return &Findings{
		Measurements: measurements,
		Structures:   structures,
		Sentences:    len(sentences),
	}, notes, nil
}

func (p *Parser) parseMeasurements(cleaned, lowered string) []Mention {
	mentions := make([]Mention, 0, len(findings.Parameters))
	for _, param := range findings.Parameters {
		mention := Mention{
			Feature: param.Name,
			Kind:    KindMeasurement,
			Unit:    param.Unit,
		}
		if m := p.measurementPatterns[param.Name].FindStringSubmatchIndex(cleaned); m != nil {
			raw := cleaned[m[2]:m[3]]
			unit := strings.ToLower(cleaned[m[4]:m[5]])
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				if unit == "cm" {
					value *= 10
				}
				mention.Mentioned = true
				mention.Value = &value
				mention.Snippet = contextSnippet(cleaned, m[0], m[1])
			}
		}
		if mention.Mentioned {
			mention.ConfidenceTerms = nearbyConfidenceTerms(lowered, mention.Snippet)
		}
		mentions = append(mentions, mention)
	}
	return mentions
}

func parseStructures(lowered string, sentences []string) []Mention {
	mentions := make([]Mention, 0, len(findings.Structures))
	for _, s := range findings.Structures {
		mention := Mention{
			Feature:  s.Name,
			Kind:     KindStructure,
			Category: s.Category,
		}
		for _, keyword := range s.Keywords {
			idx := strings.Index(lowered, keyword)
			if idx < 0 {
				continue
			}
			mention.Mentioned = true
			if mention.Snippet == "" {
				mention.Snippet = contextSnippet(lowered, idx, idx+len(keyword))
			}

			for _, sentence := range sentences {
				sl := strings.ToLower(sentence)
				if !strings.Contains(sl, keyword) {
					continue
				}
				if containsAnyWord(sl, negationKeywords) {
					mention.Negated = true
				}
				if containsAnyWord(sl, uncertaintyKeywords) {
					mention.Uncertain = true
				}
			}
		}
		// Negation wins over plain uncertainty when both occur in-context.
		if mention.Negated {
			mention.Uncertain = false
		}
		if mention.Mentioned {
			mention.ConfidenceTerms = nearbyConfidenceTerms(lowered, mention.Snippet)
		}
		mentions = append(mentions, mention)
	}
	return mentions
}

// nearbyConfidenceTerms collects certainty language from the snippet when
// one exists, falling back to the whole report.
func nearbyConfidenceTerms(lowered, snippet string) []string {
	scope := snippet
	if scope == "" {
		scope = lowered
	} else {
		scope = strings.ToLower(scope)
	}
	var terms []string
	for _, term := range confidenceTerms {
		if strings.Contains(scope, term) {
			terms = append(terms, term)
		}
	}
	if terms == nil && snippet != "" {
		// Widen to the whole report so global impression language
		// ("findings are otherwise normal") is still captured.
		for _, term := range confidenceTerms {
			if strings.Contains(lowered, term) {
				terms = append(terms, term)
			}
		}
	}
	return terms
}

// cleanText trims and collapses all whitespace runs to single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// splitSentences segments on terminal punctuation. Any segmentation
// strategy must leave the mention/negation/snippet contract unchanged, so
// the simple splitter is the canonical one.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == ';' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// contextSnippet returns a bounded window centered on the match for audit.
// Window edges are widened to rune boundaries so the snippet is always valid
// UTF-8.
func contextSnippet(text string, start, end int) string {
	lo := start - snippetWindow/2
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetWindow/2
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

// containsAnyWord reports whether the sentence contains any keyword with
// word boundaries, so "no" does not match inside "normal".
func containsAnyWord(sentence string, keywords []string) bool {
	for _, kw := range keywords {
		if containsWord(sentence, kw) {
			return true
		}
	}
	return false
}

func containsWord(s, word string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(s[start-1])
		afterOK := end == len(s) || !isWordChar(s[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
