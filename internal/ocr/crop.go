package ocr

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/lcastro-fr/arg-invoice-parser/internal/pdfimg"
)

const (
	// headerBandRatio is the fraction of page height the header occupies.
	headerBandRatio = 0.3

	// minOCRWidth: images narrower than this are upscaled before OCR,
	// both engines degrade sharply below ~300dpi equivalents.
	minOCRWidth = 1000
)

// headerBand extracts the page-1 raster images, picks the largest (a scanned
// invoice embeds the whole page as one image) and crops its top band. The
// band is measured against that image's own height, not the page box, so on
// documents that embed only the header block as an image the crop covers the
// top of that block.
func headerBand(pdfBytes []byte) (image.Image, error) {
	images, err := pdfimg.Images(pdfBytes, []string{"1"})
	if err != nil {
		return nil, err
	}

	var page image.Image
	var maxArea int
	for _, img := range images {
		b := img.Bounds()
		if area := b.Dx() * b.Dy(); area > maxArea {
			page, maxArea = img, area
		}
	}
	if page == nil {
		return nil, ErrNoHeaderImage
	}

	b := page.Bounds()
	band := imaging.Crop(page, image.Rect(
		b.Min.X, b.Min.Y,
		b.Max.X, b.Min.Y+int(float64(b.Dy())*headerBandRatio),
	))
	if band.Bounds().Dx() < minOCRWidth {
		band = imaging.Resize(band, band.Bounds().Dx()*2, 0, imaging.Lanczos)
	}
	return band, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
