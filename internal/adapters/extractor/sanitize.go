package extractor

import "strings"

// sanitize strips non-printable/binary runes left over from PDF and DOCX
// decoding, keeping ASCII printable characters plus newline and tab.
func sanitize(content string) string {
	var cleaned strings.Builder
	for _, r := range content {
		if (r >= 32 && r < 127) || r == '\n' || r == '\t' {
			cleaned.WriteRune(r)
		}
	}
	return strings.TrimSpace(cleaned.String())
}

// wordCount is a cheap whitespace-delimited word counter used to populate
// DocumentMetadata.WordCount for every extractor.
func wordCount(text string) int {
	return len(strings.Fields(text))
}

// commonWords is a small fixed dictionary of stopwords per language, tallied
// over the first 100 tokens to pick the most likely language. The pipeline
// has no language-detection dependency in the corpus, so this stays a
// best-effort stdlib stand-in rather than a fabricated library choice.
var commonWords = map[string]map[string]bool{
	"en": {"the": true, "and": true, "is": true, "of": true, "to": true, "in": true, "a": true, "that": true, "for": true, "with": true},
	"es": {"el": true, "la": true, "de": true, "que": true, "y": true, "en": true, "los": true, "las": true, "un": true, "una": true},
	"fr": {"le": true, "la": true, "de": true, "et": true, "les": true, "des": true, "un": true, "une": true, "que": true, "dans": true},
}

// detectLanguage tallies occurrences of each language's dictionary over the
// first 100 tokens and returns the language with the highest count. Ties go
// to the first of "en", "es", "fr" in that order; no match at all gives "en",
// and blank text gives "unknown".
func detectLanguage(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}

	tokens := strings.Fields(text)
	if len(tokens) > 100 {
		tokens = tokens[:100]
	}

	counts := map[string]int{"en": 0, "es": 0, "fr": 0}
	for _, tok := range tokens {
		word := strings.ToLower(strings.Trim(tok, ".,;:!?\"'()"))
		for lang, dict := range commonWords {
			if dict[word] {
				counts[lang]++
			}
		}
	}

	best, bestCount := "en", 0
	for _, lang := range []string{"en", "es", "fr"} {
		if counts[lang] > bestCount {
			best, bestCount = lang, counts[lang]
		}
	}
	return best
}
