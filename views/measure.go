package views

import (
	"math"
	"strings"
	"sync"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"

	"github.com/gogpu/gglayout"
)

// TextMeasurer measures TextViews: the text is wrapped to the available
// width and the view is as tall as its lines plus padding. In a bounded
// width the view takes the whole width; otherwise it is as wide as its
// longest line.
//
// The zero value is ready to use. Face access is serialized, so one
// TextMeasurer may serve several layouts.
type TextMeasurer struct {
	mu sync.Mutex
}

// Measure implements gglayout.Measurer.
func (m *TextMeasurer) Measure(v gglayout.View, availableWidth, _ float64, scale float64) gglayout.ScaledSize {
	tv, ok := v.(*TextView)
	if !ok {
		return gglayout.EmptySize(scale)
	}
	tv.dirty = false
	if tv.Text == "" {
		return gglayout.EmptySize(scale)
	}
	st := tv.style()
	pad := st.Padding * scale
	bounded := !math.IsInf(availableWidth, 0) && availableWidth > 0

	maxWidth := math.Inf(1)
	if bounded {
		maxWidth = availableWidth - 2*pad
	}

	m.mu.Lock()
	face := st.face()
	lines := Wrap(face, tv.Text, maxWidth)
	var widest float64
	if !bounded {
		for _, line := range lines {
			widest = max(widest, advance(face, line))
		}
	}
	lh := st.lineHeight()
	m.mu.Unlock()

	w := widest + 2*pad
	if bounded {
		w = availableWidth
	}
	h := float64(len(lines))*lh + 2*pad
	return gglayout.SizeFromPixels(w, h, scale)
}

func advance(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// Wrap splits text into lines no wider than maxWidth pixels when drawn
// with face. Lines break at Unicode line break opportunities; a grapheme
// cluster wider than the remaining space starts a new line even inside a
// word. Mandatory breaks always end a line. A non-positive or infinite
// maxWidth only breaks at mandatory breaks.
func Wrap(face font.Face, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}
	limit := maxWidth > 0 && !math.IsInf(maxWidth, 1)

	var (
		lines               []string
		state               = -1
		lineWidth, optWidth float64
		lineLen, optLen     int
	)
	rest := text
	for len(rest) > 0 {
		var (
			cluster    string
			boundaries int
		)
		cluster, rest, boundaries, state = uniseg.StepString(rest, state)
		w := advance(face, cluster)

		// Trailing spaces hang past the limit.
		if limit && lineLen > 0 && lineWidth+w > maxWidth && strings.TrimSpace(cluster) != "" {
			if optLen == 0 {
				lines = append(lines, text[:lineLen])
				text = text[lineLen:]
				lineWidth, lineLen = 0, 0
			} else {
				lines = append(lines, strings.TrimRight(text[:optLen], " "))
				text = text[optLen:]
				lineWidth -= optWidth
				lineLen -= optLen
			}
			optLen, optWidth = 0, 0
		}

		lineWidth += w
		lineLen += len(cluster)

		switch boundaries & uniseg.MaskLine {
		case uniseg.LineCanBreak:
			optLen, optWidth = lineLen, lineWidth
		case uniseg.LineMustBreak:
			if rest == "" && !uniseg.HasTrailingLineBreakInString(cluster) {
				break
			}
			lines = append(lines, strings.TrimRight(text[:lineLen], "\r\n"))
			text = text[lineLen:]
			lineWidth, lineLen, optLen, optWidth = 0, 0, 0, 0
		}
	}
	if text != "" {
		lines = append(lines, text)
	}
	return lines
}
