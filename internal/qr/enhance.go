package qr

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

const (
	// minQRSize rejects images too small to hold a usable symbol.
	minQRSize = 60

	// quietZonePx is the white margin re-added around a candidate image.
	// PDFs frequently embed the QR cropped to its modules, but decoders
	// require the surrounding quiet zone.
	quietZonePx = 16

	binarizeThreshold = 128
)

// An enhancement is one image-transform strategy of the decode ladder.
type enhancement struct {
	name  string
	apply func(image.Image) image.Image
}

// ladder is tried in order until a stage yields a decodable symbol. New
// recovery strategies slot in here.
var ladder = []enhancement{
	{"quiet-zone", quietZone},
	{"upscale-binarize", upscaleBinarize},
}

func decodeWithLadder(img image.Image) (text, stage string, ok bool) {
	for _, e := range ladder {
		if text, ok := decodeSymbol(e.apply(img)); ok {
			return text, e.name, true
		}
	}
	return "", "", false
}

func quietZone(img image.Image) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*quietZonePx, b.Dy()+2*quietZonePx, color.White)
	return imaging.Paste(canvas, img, image.Pt(quietZonePx, quietZonePx))
}

// upscaleBinarize recovers low-resolution or anti-aliased symbols: 2x
// Lanczos upscale, hard threshold to pure black and white, quiet zone.
func upscaleBinarize(img image.Image) image.Image {
	b := img.Bounds()
	up := imaging.Resize(img, b.Dx()*2, b.Dy()*2, imaging.Lanczos)
	return quietZone(binarize(up, binarizeThreshold))
}

func binarize(img image.Image, threshold uint8) *image.NRGBA {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := uint8(255)
			if gray.NRGBAAt(x, y).R <= threshold {
				v = 0
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

func decodeSymbol(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := qrcode.NewQRCodeReader().Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", false
	}
	return result.GetText(), true
}
