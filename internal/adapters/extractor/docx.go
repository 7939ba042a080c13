package extractor

import (
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

var xmlTagRe = regexp.MustCompile(`<[^>]*>`)

var xmlEntityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
)

// extractDocx reads the document body XML and strips markup down to plain
// text. nguyenthenguyen/docx hands back the raw WordprocessingML, so the
// tags and paragraph breaks have to be reconstructed the same way the
// teacher's PDF cleaner strips binary noise.
func extractDocx(path string) (string, entities.DocumentMetadata, error) {
	reader, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", entities.DocumentMetadata{}, err
	}
	defer reader.Close()

	raw := reader.Editable().GetContent()
	text := stripDocxXML(raw)
	text = sanitize(text)

	metadata := entities.DocumentMetadata{
		WordCount: wordCount(text),
		Language:  detectLanguage(text),
	}
	return text, metadata, nil
}

// stripDocxXML turns paragraph/break tags into newlines before stripping
// every remaining tag, so paragraph structure survives for the chunker's
// heading and paragraph detectors.
func stripDocxXML(raw string) string {
	replaced := strings.NewReplacer(
		"</w:p>", "\n",
		"<w:br/>", "\n",
		"<w:tab/>", "\t",
	).Replace(raw)

	stripped := xmlTagRe.ReplaceAllString(replaced, "")
	return xmlEntityReplacer.Replace(stripped)
}
