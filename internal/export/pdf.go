// Package export writes study material to files: notes as PDF, mock tests and mentor history as YAML.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mandolyte/mdtopdf"

	"github.com/at-ishikawa/tubenotes/internal/videoref"
)

// boldPattern matches **bold** text in markdown
var boldPattern = regexp.MustCompile(`\*\*([^*]+)\*\*`)

// NotesPath is the PDF path of the notes of a video under dir.
func NotesPath(dir string, ref videoref.VideoRef) string {
	return filepath.Join(dir, ref.String()+"-notes.pdf")
}

// NotesToPDF renders a markdown notes document as an A4 PDF at pdfPath and returns its absolute path.
func NotesToPDF(document, pdfPath string) (string, error) {
	if strings.TrimSpace(document) == "" {
		return "", fmt.Errorf("empty notes document")
	}
	if !strings.HasSuffix(pdfPath, ".pdf") {
		return "", fmt.Errorf("output file must have .pdf extension: %s", pdfPath)
	}
	if err := os.MkdirAll(filepath.Dir(pdfPath), 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(pdfPath), err)
	}

	content := removeBoldInBlockquotes([]byte(document))

	renderer := mdtopdf.NewPdfRenderer("P", "A4", pdfPath, "", nil, mdtopdf.LIGHT)
	renderer.UpdateBlockquoteStyler()
	if err := renderer.Process(content); err != nil {
		return "", fmt.Errorf("renderer.Process() > %w", err)
	}

	absPath, err := filepath.Abs(pdfPath)
	if err != nil {
		return pdfPath, nil
	}
	return absPath, nil
}

// removeBoldInBlockquotes strips **bold** markers from blockquote lines.
// mdtopdf renders blockquotes in italic with a multi-cell that ignores inline emphasis.
func removeBoldInBlockquotes(content []byte) []byte {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "> ") {
			lines[i] = boldPattern.ReplaceAllString(line, "$1")
		}
	}
	return []byte(strings.Join(lines, "\n"))
}
