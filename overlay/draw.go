package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Style controls how an instruction is drawn.
type Style struct {
	Text       color.Color
	Background color.Color
	Padding    int
	// Margin is the distance from the bottom edge.
	Margin int
}

// DefaultStyle is white text on a translucent black band.
var DefaultStyle = Style{
	Text:       color.White,
	Background: color.RGBA{A: 0xa0},
	Padding:    4,
	Margin:     12,
}

// Draw renders text centered near the bottom of dst and returns the band
// it covered. Text wider than dst is clipped.
func Draw(dst draw.Image, text string, st Style) image.Rectangle {
	if text == "" {
		return image.Rectangle{}
	}
	face := basicfont.Face7x13
	b := dst.Bounds()

	width := font.MeasureString(face, text).Ceil()
	m := face.Metrics()
	height := (m.Ascent + m.Descent).Ceil()

	x := b.Min.X + (b.Dx()-width)/2
	baseline := b.Max.Y - st.Margin - st.Padding - m.Descent.Ceil()

	band := image.Rect(x-st.Padding, baseline-m.Ascent.Ceil()-st.Padding,
		x+width+st.Padding, baseline-m.Ascent.Ceil()+height+st.Padding).Intersect(b)
	if st.Background != nil {
		draw.Draw(dst, band, image.NewUniform(st.Background), image.Point{}, draw.Over)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(st.Text),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
	return band
}
