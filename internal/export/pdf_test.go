package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesToPDF(t *testing.T) {
	tests := []struct {
		name       string
		document   string
		pdfPath    func(dir string) string
		wantErrMsg string
	}{
		{
			name:     "successful conversion",
			document: "# Lesson\n\nSome **important** notes.\n\n> A **quoted** idea\n\n---\n\n## Next\n\n- item\n",
			pdfPath: func(dir string) string {
				return filepath.Join(dir, "nested", "notes.pdf")
			},
		},
		{
			name:     "invalid extension",
			document: "# Lesson",
			pdfPath: func(dir string) string {
				return filepath.Join(dir, "notes.md")
			},
			wantErrMsg: "output file must have .pdf extension",
		},
		{
			name:     "empty document",
			document: "  \n",
			pdfPath: func(dir string) string {
				return filepath.Join(dir, "notes.pdf")
			},
			wantErrMsg: "empty notes document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.pdfPath(t.TempDir())
			got, err := NotesToPDF(tt.document, path)
			if tt.wantErrMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got))

			info, err := os.Stat(got)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRemoveBoldInBlockquotes(t *testing.T) {
	input := "**keep** bold\n> a **quoted** and **another**\n>not a quote **bold**"
	want := "**keep** bold\n> a quoted and another\n>not a quote **bold**"
	assert.Equal(t, want, string(removeBoldInBlockquotes([]byte(input))))
}

func TestNotesPath(t *testing.T) {
	assert.Equal(t, filepath.Join("outputs", "dQw4w9WgXcQ-notes.pdf"), NotesPath("outputs", "dQw4w9WgXcQ"))
}
