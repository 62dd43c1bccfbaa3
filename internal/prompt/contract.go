// Package prompt holds the instructions that tell the model how to draw the
// swimlane diagram and how to shape its answer.
package prompt

import "strings"

const (
	LanguageEnglish  = "en"
	LanguageJapanese = "ja"
)

// Style strings shared by every language. draw.io refuses documents whose
// edges lack a relative geometry, hence EdgeGeometry.
const (
	LaneStyle    = "swimlane;html=1;startSize=20;horizontal=1;container=1;collapsible=0;rounded=0;fillColor=#ffffff;"
	ProcessStyle = "rounded=1;whiteSpace=wrap;html=1;absoluteArcSize=1;arcSize=14;strokeWidth=2;fillColor=#ffffff;align=center;verticalAlign=middle;"
	CalloutStyle = "shape=callout;whiteSpace=wrap;html=1;perimeter=calloutPerimeter;fillColor=#fff2cc;strokeColor=#d6b656;position2=0.5;"
	IssueStyle   = "shape=note;whiteSpace=wrap;html=1;backgroundOutline=1;darkOpacity=0.05;fillColor=#f8cecc;strokeColor=#b85450;align=left;spacingLeft=6;"
	EdgeStyle    = "edgeStyle=orthogonalEdgeStyle;rounded=0;orthogonalLoop=1;jettySize=auto;html=1;strokeWidth=2;strokeColor=#000000;"
	EdgeGeometry = `<mxGeometry relative="1" as="geometry" />`

	graphModelSkeleton = `<mxGraphModel dx="1422" dy="794" grid="1" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="827" pageHeight="1169" math="0" shadow="0">
  <root>
    <mxCell id="0" />
    <mxCell id="1" parent="0" />
    <!-- lanes, nodes and edges go here -->
  </root>
</mxGraphModel>`
)

// Contract is the pair of instructions sent with every request, plus the text
// used when the model leaves the summary out.
type Contract struct {
	Language       string
	System         string
	User           string
	MissingSummary string
}

// For returns the contract for lang, falling back to English.
func For(lang string) Contract {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case LanguageJapanese:
		return Contract{
			Language:       LanguageJapanese,
			System:         render(systemJA),
			User:           userJA,
			MissingSummary: "概要が生成されませんでした。",
		}
	default:
		return Contract{
			Language:       LanguageEnglish,
			System:         render(systemEN),
			User:           userEN,
			MissingSummary: "No summary was generated.",
		}
	}
}

func render(tmpl string) string {
	return strings.NewReplacer(
		"{{skeleton}}", graphModelSkeleton,
		"{{lane}}", LaneStyle,
		"{{process}}", ProcessStyle,
		"{{callout}}", CalloutStyle,
		"{{issue}}", IssueStyle,
		"{{edge}}", EdgeStyle,
		"{{edgeGeometry}}", EdgeGeometry,
	).Replace(tmpl)
}
