package chunker

import (
	"regexp"
	"strings"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

var (
	atxHeaderRe     = regexp.MustCompile(`^#{1,6}\s`)
	numberedLineRe  = regexp.MustCompile(`^\d+\.\s`)
	chapterPartRe   = regexp.MustCompile(`(?i)^(chapter\s+\d+|section\s+\d+|part\s+([ivxlcdm]+|\d+))\b`)
	allCapsLetterRe = regexp.MustCompile(`[A-Z]`)
	lowerLetterRe   = regexp.MustCompile(`[a-z]`)
)

// chunkByHeading splits text on markdown ATX headers, numbered section
// prefixes, ALL-CAPS lines and Chapter/Section/Part lines, applied in
// order against the current section list. Oversize sections recurse into
// paragraph-based splitting.
func chunkByHeading(text, docID string, chunkSize int) []entities.Chunk {
	sections := []string{text}
	sections = splitSections(sections, isATXHeader)
	sections = splitSections(sections, isNumberedLine)
	sections = splitSections(sections, isAllCapsLine)
	sections = splitSections(sections, isChapterPartLine)

	if len(sections) <= 1 {
		return nil // no heading markers found; let paragraph fallback handle it
	}

	var chunks []entities.Chunk
	index := 0
	for _, section := range sections {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		if len(section) > chunkSize {
			for _, sub := range chunkByParagraph(section, docID, chunkSize) {
				chunks = append(chunks, newChunk(docID, "heading", index, sub.Text))
				index++
			}
			continue
		}
		chunks = append(chunks, newChunk(docID, "heading", index, section))
		index++
	}
	return chunks
}

// splitSections splits every section on lines matching isHeading,
// carrying the heading line into the start of the new section.
func splitSections(sections []string, isHeading func(line string) bool) []string {
	var result []string
	for _, section := range sections {
		lines := strings.Split(section, "\n")
		var buf []string
		for _, line := range lines {
			if isHeading(line) && len(buf) > 0 {
				result = append(result, strings.Join(buf, "\n"))
				buf = nil
			}
			buf = append(buf, line)
		}
		if len(buf) > 0 {
			result = append(result, strings.Join(buf, "\n"))
		}
	}
	return result
}

func isATXHeader(line string) bool {
	return atxHeaderRe.MatchString(line)
}

func isNumberedLine(line string) bool {
	return numberedLineRe.MatchString(strings.TrimLeft(line, " \t"))
}

func isChapterPartLine(line string) bool {
	return chapterPartRe.MatchString(strings.TrimSpace(line))
}

// isAllCapsLine matches a non-empty line with at least two uppercase
// letters and no lowercase letters - a cheap heading heuristic.
func isAllCapsLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if lowerLetterRe.MatchString(trimmed) {
		return false
	}
	upperCount := len(allCapsLetterRe.FindAllString(trimmed, -1))
	return upperCount >= 2
}
