package extractor

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/savagelysubtle/appealsnavigator-rag/internal/domain/entities"
)

// pageBatchSize is how many pages are read per batch. Pages are read one at
// a time from the file opened by path; the plain text of every page is
// appended to a single buffer, and the whole document's text is returned
// at once.
const pageBatchSize = 10

// extractPDF reads page text in batches of pageBatchSize and fills in
// metadata on a best-effort basis; a metadata failure never fails
// extraction itself.
func extractPDF(path string) (string, entities.DocumentMetadata, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", entities.DocumentMetadata{}, err
	}
	defer file.Close()

	numPages := reader.NumPage()
	var sb strings.Builder

	for start := 1; start <= numPages; start += pageBatchSize {
		end := start + pageBatchSize - 1
		if end > numPages {
			end = numPages
		}
		for i := start; i <= end; i++ {
			page := reader.Page(i)
			if page.V.IsNull() {
				continue
			}
			text, err := page.GetPlainText(nil)
			if err != nil {
				continue
			}
			sb.WriteString(text)
			sb.WriteString("\n\n")
		}
	}

	text := sanitize(sb.String())
	metadata := entities.DocumentMetadata{
		PageCount: numPages,
		WordCount: wordCount(text),
		Language:  detectLanguage(text),
	}

	if info, err := pdfInfo(path); err == nil {
		if info.Title != "" {
			title := info.Title
			metadata.Title = &title
		}
		if info.Author != "" {
			author := info.Author
			metadata.Author = &author
		}
	}

	return text, metadata, nil
}

// pdfInfo calls the pdfcpu library purely for the document info dictionary
// (title/author); ledongthuc/pdf has no such accessor. pdfcpu can panic on
// malformed info dictionaries or corrupt xref tables, so the call is
// wrapped in a recover and treated as best-effort.
func pdfInfo(path string) (info *pdfmodel.PDFInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, entities.ErrExtractionFailed
		}
	}()

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	return pdfapi.PDFInfo(f, path, nil, pdfmodel.NewDefaultConfiguration())
}
