package report

// Negation markers. A sentence containing a tracked keyword and any of these
// is read as negating the feature.
var negationKeywords = []string{
	"no", "not", "absent", "negative", "without", "unremarkable",
	"no evidence of", "fails to demonstrate", "does not show", "denies",
}

// Hedging markers. Negation takes precedence when both appear in-context.
var uncertaintyKeywords = []string{
	"possible", "probable", "likely", "suggests", "may indicate",
	"appears", "seems", "questionable", "uncertain", "may",
}

// Certainty/confidence language recorded verbatim when found near a mention.
var confidenceTerms = []string{
	"normal", "adequate", "clear", "intact", "stable", "unremarkable",
	"visualized", "well-defined",
}
