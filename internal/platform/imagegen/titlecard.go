package imagegen

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	cardWidth  = 1280
	cardHeight = 720
)

var cardPalette = []color.NRGBA{
	{R: 0x1e, G: 0x3a, B: 0x8a, A: 0xff},
	{R: 0x0f, G: 0x76, B: 0x6e, A: 0xff},
	{R: 0x7c, G: 0x2d, B: 0x12, A: 0xff},
	{R: 0x4c, G: 0x1d, B: 0x95, A: 0xff},
	{R: 0x16, G: 0x65, B: 0x34, A: 0xff},
}

// TitleCard renders the prompt onto a gradient card locally. It never calls a
// remote service.
type TitleCard struct {
	font *truetype.Font
}

func NewTitleCard() (*TitleCard, error) {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse title card font: %w", err)
	}
	return &TitleCard{font: parsed}, nil
}

func (t *TitleCard) Generate(ctx context.Context, prompt string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	base := pickCardColor(prompt)

	// Faces cache glyphs without locking, so each call gets its own.
	face := truetype.NewFace(t.font, &truetype.Options{
		Size:    44,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	defer face.Close()

	dc := gg.NewContext(cardWidth, cardHeight)
	grad := gg.NewLinearGradient(0, 0, cardWidth, cardHeight)
	grad.AddColorStop(0, base)
	grad.AddColorStop(1, color.NRGBA{R: base.R / 3, G: base.G / 3, B: base.B / 3, A: 0xff})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, cardWidth, cardHeight)
	dc.Fill()

	dc.SetFontFace(face)
	dc.SetColor(color.White)
	dc.DrawStringWrapped(prompt, cardWidth/2, cardHeight/2, 0.5, 0.5, cardWidth*0.8, 1.4, gg.AlignCenter)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return Image{}, fmt.Errorf("encode title card: %w", err)
	}
	return Image{Bytes: buf.Bytes(), MimeType: "image/png"}, nil
}

func pickCardColor(prompt string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return cardPalette[h.Sum32()%uint32(len(cardPalette))]
}
