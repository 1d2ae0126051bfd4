// Package pdfimg enumerates the raster images embedded in a PDF document.
package pdfimg

import (
	"bytes"
	"image"
	"sort"

	_ "image/jpeg"
	_ "image/png"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Images returns the decoded raster images of the selected pages in
// encounter order (page by page, ascending object number). pages follows
// pdfcpu's page selection syntax; nil selects all pages. Images in formats
// the standard decoders cannot handle are silently skipped.
func Images(pdfBytes []byte, pages []string) ([]image.Image, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pageImages, err := pdfapi.ExtractImagesRaw(bytes.NewReader(pdfBytes), pages, conf)
	if err != nil {
		return nil, err
	}

	var out []image.Image
	for _, byObj := range pageImages {
		objNrs := make([]int, 0, len(byObj))
		for nr := range byObj {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)
		for _, nr := range objNrs {
			img, _, err := image.Decode(byObj[nr])
			if err != nil {
				continue
			}
			out = append(out, img)
		}
	}
	return out, nil
}
