package services

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	_ "golang.org/x/image/webp"
)

const posterTitleSize = 72

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}

// renderPoster re-encodes raw as PNG. With a face, the title is drawn
// centered on a translucent band across the top third.
func renderPoster(raw []byte, title string, face font.Face) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode poster image: %w", err)
	}
	dc := gg.NewContextForImage(img)
	title = strings.TrimSpace(title)
	if face != nil && title != "" {
		w := float64(dc.Width())
		h := float64(dc.Height())
		dc.SetFontFace(face)

		lines := dc.WordWrap(title, w*0.85)
		lineHeight := dc.FontHeight() * 1.3
		bandH := lineHeight*float64(len(lines)) + lineHeight
		top := h/6 - bandH/2
		if top < 0 {
			top = 0
		}
		dc.SetRGBA(0, 0, 0, 0.45)
		dc.DrawRectangle(0, top, w, bandH)
		dc.Fill()

		dc.SetRGB(1, 1, 1)
		y := top + lineHeight
		for _, line := range lines {
			dc.DrawStringAnchored(line, w/2, y, 0.5, 0.5)
			y += lineHeight
		}
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode poster: %w", err)
	}
	return buf.Bytes(), nil
}
