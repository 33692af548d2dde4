// Copyright (c) 2026 Yomikata. All rights reserved.

package archive

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/yomikata/ingest/internal/platform/apperr"
	"github.com/yomikata/ingest/internal/platform/constants"
)

// Thumbnail decodes an encoded image (from FirstPageBytes or Extract) and
// resizes it to fit within constants.ThumbnailMaxWidth by
// constants.ThumbnailMaxHeight, preserving aspect ratio, then re-encodes it
// as JPEG at constants.ThumbnailJPEGQuality. Images already smaller than the
// bounding box are not upscaled.
func Thumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.ReadFailure(err)
	}

	bounds := src.Bounds()
	width, height := fitBounds(bounds.Dx(), bounds.Dy(), constants.ThumbnailMaxWidth, constants.ThumbnailMaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: constants.ThumbnailJPEGQuality}); err != nil {
		return nil, apperr.ReadFailure(err)
	}
	return buf.Bytes(), nil
}

// fitBounds returns the largest width/height pair no bigger than
// maxWidth/maxHeight that preserves srcW/srcH's aspect ratio, without
// upscaling past the source dimensions.
func fitBounds(srcW, srcH, maxWidth, maxHeight int) (int, int) {
	if srcW <= maxWidth && srcH <= maxHeight {
		return srcW, srcH
	}

	widthRatio := float64(maxWidth) / float64(srcW)
	heightRatio := float64(maxHeight) / float64(srcH)
	ratio := widthRatio
	if heightRatio < ratio {
		ratio = heightRatio
	}

	width := int(float64(srcW) * ratio)
	height := int(float64(srcH) * ratio)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}
