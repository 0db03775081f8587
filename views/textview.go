package views

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/gglayout"
)

// TextView is a view showing one line-wrapped label.
type TextView struct {
	// Index is the item the view is bound to, or -1.
	Index int
	Text  string
	Style *Style

	// HAlign positions the view inside its slot. The zero value is
	// AlignStart.
	HAlign gglayout.Alignment

	// SizeKey is the recycling key of the cell the view was drawn for.
	SizeKey float64

	template string
	dirty    bool
}

// NewTextView returns an unbound view with the given style.
func NewTextView(style *Style) *TextView {
	return &TextView{Index: -1, Style: style}
}

// CanDraw reports whether the view has text.
func (v *TextView) CanDraw() bool {
	return v.Text != ""
}

// Alignment implements gglayout.Aligned.
func (v *TextView) Alignment() (gglayout.Alignment, gglayout.Alignment) {
	return v.HAlign, gglayout.AlignStart
}

// Template returns the template id the view was created for, or "" for a
// live view.
func (v *TextView) Template() string {
	return v.template
}

func (v *TextView) style() *Style {
	if v.Style == nil {
		return defaultStyle
	}
	return v.Style
}

// SetText changes the text of a live view. The layout measures the view
// again the next time it draws it.
func (v *TextView) SetText(text string) {
	if text == v.Text {
		return
	}
	v.Text = text
	v.dirty = true
}

// NeedsMeasure implements gglayout.Resizable.
func (v *TextView) NeedsMeasure() bool {
	return v.dirty
}

func (v *TextView) bind(index int, text string) {
	v.Index = index
	v.Text = text
	v.dirty = false
}

func (v *TextView) unbind() {
	v.Index = -1
	v.Text = ""
	v.SizeKey = 0
	v.dirty = false
}

// Paint draws the background and the wrapped text into dest.
func (v *TextView) Paint(c *gg.Context, dest gglayout.Rect, scale float64) {
	w, h := dest.Width(), dest.Height()
	if c == nil || w <= 0 || h <= 0 {
		return
	}
	st := v.style()

	if st.Background != nil {
		c.SetColor(st.Background)
		c.DrawRoundedRectangle(dest.Left, dest.Top, w, h, st.Radius*scale)
		if err := c.Fill(); err != nil {
			gglayout.Logger().Warn("views: fill failed", "index", v.Index, "err", err)
			return
		}
	}

	if img := v.rasterize(st, w, h, scale); img != nil {
		c.DrawImage(gg.ImageBufFromImage(img), dest.Left, dest.Top)
	}
}

// rasterize draws the text lines into a transparent image of the view size.
func (v *TextView) rasterize(st *Style, w, h, scale float64) *image.RGBA {
	if v.Text == "" || st.Foreground == nil {
		return nil
	}
	face := st.face()
	pad := st.Padding * scale
	lines := Wrap(face, v.Text, w-2*pad)
	if len(lines) == 0 {
		return nil
	}

	img := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(w)), int(math.Ceil(h))))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(st.Foreground),
		Face: face,
	}
	ascent := face.Metrics().Ascent.Ceil()
	lh := int(st.lineHeight())
	for i, line := range lines {
		y := int(pad) + ascent + i*lh
		if y > img.Bounds().Dy() {
			break
		}
		d.Dot = fixed.P(int(pad), y)
		d.DrawString(line)
	}
	return img
}
