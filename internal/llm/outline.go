package llm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roboco-io/koimport/internal/ir"
)

// maxOutlineShapes bounds the number of shapes listed in a prompt.
const maxOutlineShapes = 200

var systemPrompts = map[string]string{
	"ko": `당신은 벡터 그림을 설명하는 도우미입니다.
도형 목록을 보고 그림이 무엇을 나타내는지 Markdown으로 간결하게 설명하세요.
첫 줄은 대체 텍스트로 쓸 수 있는 한 문장 요약이어야 합니다.
좌표나 색상 값을 그대로 나열하지 말고 구성과 의미를 설명하세요.`,
	"en": `You describe vector drawings.
Given a list of shapes, explain in concise Markdown what the drawing depicts.
The first line must be a one-sentence summary usable as alt text.
Describe composition and meaning instead of repeating coordinates or color values.`,
}

// SystemPrompt returns the built-in system prompt for language, falling
// back to Korean.
func SystemPrompt(language string) string {
	if p, ok := systemPrompts[language]; ok {
		return p
	}
	return systemPrompts["ko"]
}

// BuildOutline renders the document as a plain text shape list.
func BuildOutline(doc *ir.Document) string {
	var sb strings.Builder

	if doc.Metadata.Title != "" {
		fmt.Fprintf(&sb, "title: %s\n", doc.Metadata.Title)
	}
	fmt.Fprintf(&sb, "page: %.2f x %.2f %s\n", doc.Page.Width, doc.Page.Height, doc.Unit)

	counts := make(map[ir.ShapeType]int)
	for _, s := range doc.Shapes() {
		counts[s.Type]++
	}
	types := make([]string, 0, len(counts))
	for t, n := range counts {
		types = append(types, fmt.Sprintf("%s %d", t, n))
	}
	sort.Strings(types)
	fmt.Fprintf(&sb, "shapes: %d (%s)\n", len(doc.Shapes()), strings.Join(types, ", "))
	if n := doc.Images().Len(); n > 0 {
		fmt.Fprintf(&sb, "images: %d\n", n)
	}

	sb.WriteString("\n")
	for i, s := range doc.Shapes() {
		if i == maxOutlineShapes {
			fmt.Fprintf(&sb, "... %d more\n", len(doc.Shapes())-i)
			break
		}
		fmt.Fprintf(&sb, "%d. %s%s\n", i+1, s, shapeDetail(s))
	}
	return sb.String()
}

func shapeDetail(s *ir.Shape) string {
	var parts []string
	switch {
	case s.Ellipse != nil && s.Ellipse.Kind != ir.EllipseFull:
		parts = append(parts, fmt.Sprintf("%s %.0f°-%.0f°", s.Ellipse.Kind, s.Ellipse.StartAngle, s.Ellipse.EndAngle))
	case s.Rect != nil && s.Rect.CornerRadiusX > 0:
		parts = append(parts, "rounded")
	case s.Path != nil:
		parts = append(parts, fmt.Sprintf("%d points", len(s.Path.Points())))
	}
	if s.Stroke != nil {
		parts = append(parts, fmt.Sprintf("stroke %s %.2f %s", s.Stroke.Color.Hex(), s.Stroke.Width, s.Stroke.Dash))
	}
	if s.Fill != nil {
		switch {
		case s.Fill.ImageID != "":
			parts = append(parts, "pattern fill")
		case s.Fill.Hatch != "":
			parts = append(parts, fmt.Sprintf("hatch %s %s", s.Fill.Hatch, s.Fill.Color.Hex()))
		default:
			parts = append(parts, "fill "+s.Fill.Color.Hex())
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return ", " + strings.Join(parts, ", ")
}
