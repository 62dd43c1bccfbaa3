// Package diagram wraps model markup into a draw.io (mxfile) document.
package diagram

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kdduha/audioflow/internal/models"
)

const (
	FileExtension = ".drawio"
	ContentType   = "application/xml"

	DefaultAgent = "AudioFlow"
	host         = "Electron"
	version      = "21.0.6"
	diagramName  = "GeneratedFlow"

	// toISOString layout, always UTC.
	timestampLayout = "2006-01-02T15:04:05.000Z"
)

var (
	ErrMalformed = errors.New("diagram document is malformed")

	reProlog    = regexp.MustCompile(`(?s)<\?xml.*?\?>`)
	reFence     = regexp.MustCompile("(?i)```(?:xml)?")
	reExtension = regexp.MustCompile(`\.[^/.]+$`)
)

const envelope = `<?xml version="1.0" encoding="UTF-8"?>
<mxfile host="%s" modified="%s" agent="%s" version="%s" type="device">
  <diagram name="%s" id="%s">
    %s
  </diagram>
</mxfile>`

type Packager struct {
	NewID func() string
	Now   func() time.Time
	Agent string
}

func New() *Packager {
	return &Packager{
		NewID: uuid.NewString,
		Now:   time.Now,
		Agent: DefaultAgent,
	}
}

// Clean trims the markup, drops the XML prolog (the envelope has its own) and
// removes code fences the model left inside the xml field.
func Clean(markup string) string {
	out := strings.TrimSpace(markup)
	out = reProlog.ReplaceAllString(out, "")
	out = reFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

// Package returns the complete mxfile document for draft. Every call gets a
// new diagram id.
func (p *Packager) Package(draft models.DiagramDraft) string {
	return fmt.Sprintf(envelope,
		host,
		p.Now().UTC().Format(timestampLayout),
		p.Agent,
		version,
		diagramName,
		p.NewID(),
		Clean(draft.XML),
	)
}

// Check is a best-effort probe: the document must be well-formed XML holding
// exactly one mxfile with one diagram and a graph model inside.
func Check(doc string) error {
	dec := xml.NewDecoder(strings.NewReader(doc))
	counts := map[string]int{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if el, ok := tok.(xml.StartElement); ok {
			counts[el.Name.Local]++
		}
	}

	switch {
	case counts["mxfile"] != 1:
		return fmt.Errorf("%w: want one mxfile, got %d", ErrMalformed, counts["mxfile"])
	case counts["diagram"] != 1:
		return fmt.Errorf("%w: want one diagram, got %d", ErrMalformed, counts["diagram"])
	case counts["mxGraphModel"] == 0:
		return fmt.Errorf("%w: no mxGraphModel", ErrMalformed)
	}
	return nil
}

// FileName derives the download name: last extension dropped, .drawio added.
func FileName(original string) string {
	return reExtension.ReplaceAllString(original, "") + FileExtension
}
