// Package export renders a run's summary as a Word document.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	Extension   = ".docx"

	fontName  = "Calibri"
	fontSize  = 11
	titleSize = 16
)

var reBullet = regexp.MustCompile(`^[\-\*•]\s+(.+)$`)

// SummaryDocx writes title and the summary to path. Lines starting with a
// dash or an asterisk become bullets, blank lines are dropped.
func SummaryDocx(title, summary, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("new document: %w", err)
	}

	addRun(doc.AddParagraph(""), title, true, titleSize)

	for _, line := range strings.Split(summary, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			trimmed = "• " + m[1]
		}
		addRun(doc.AddParagraph(""), trimmed, false, fontSize)
	}

	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// SummaryDocxBytes renders the document in a scratch directory and returns
// its bytes.
func SummaryDocxBytes(title, summary string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "audioflow-docx-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary"+Extension)
	if err := SummaryDocx(title, summary, path); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// FileName swaps the extension of a diagram or recording name for .docx.
func FileName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + Extension
}

func addRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}
