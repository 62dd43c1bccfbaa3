// Package recovery extracts the {summary, xml} object from model output that
// is supposed to be pure JSON but often is not.
package recovery

import (
	"regexp"
	"strings"
)

// Strategy locates a JSON candidate inside raw model output. Extract reports
// false when the strategy does not apply to the text at all.
type Strategy struct {
	Name    string
	Extract func(raw string) (string, bool)
}

var (
	reFencedJSON = regexp.MustCompile("(?is)```json[ \\t]*\\r?\\n?(.*?)```")
	reFenceOpen  = regexp.MustCompile("(?i)```json[ \\t]*\\r?\\n?")
)

const fence = "```"

var (
	// DirectJSON treats the whole text as the JSON document.
	DirectJSON = Strategy{
		Name: "direct",
		Extract: func(raw string) (string, bool) {
			text := strings.TrimSpace(raw)
			return text, text != ""
		},
	}

	// FencedJSON takes the body of the first ```json fenced block.
	FencedJSON = Strategy{
		Name: "fenced_json",
		Extract: func(raw string) (string, bool) {
			m := reFencedJSON.FindStringSubmatch(raw)
			if m == nil {
				return "", false
			}
			body := strings.TrimSpace(m[1])
			return body, body != ""
		},
	}

	// FencedJSONOuter runs from the first ```json opener to the last fence in
	// the text, so a block whose xml value carries its own ```xml fence stays
	// whole.
	FencedJSONOuter = Strategy{
		Name: "fenced_json_outer",
		Extract: func(raw string) (string, bool) {
			loc := reFenceOpen.FindStringIndex(raw)
			if loc == nil {
				return "", false
			}
			rest := raw[loc[1]:]
			end := strings.LastIndex(rest, fence)
			if end < 0 {
				return "", false
			}
			body := strings.TrimSpace(rest[:end])
			return body, body != ""
		},
	}

	// BraceSpan takes everything from the first '{' to the last '}'.
	BraceSpan = Strategy{
		Name: "brace_span",
		Extract: func(raw string) (string, bool) {
			start := strings.Index(raw, "{")
			end := strings.LastIndex(raw, "}")
			if start < 0 || end <= start {
				return "", false
			}
			return raw[start : end+1], true
		},
	}
)

// DefaultStrategies returns the chain in the order it is attempted.
func DefaultStrategies() []Strategy {
	return []Strategy{DirectJSON, FencedJSON, FencedJSONOuter, BraceSpan}
}
