package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"github.com/nfnt/resize"
)

const (
	MaxImageSize  = 5 << 20
	MaxImageWidth = 800
)

var (
	ErrUnsupportedImage = errors.New("invalid file type, upload JPG, PNG or WebP images only")
	ErrImageTooLarge    = errors.New("file too large, upload images smaller than 5MB")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DetectImage sniffs the content type and checks it against the accepted
// formats and the size limit. It returns the content type and file extension.
func DetectImage(data []byte) (string, string, error) {
	if len(data) > MaxImageSize {
		return "", "", ErrImageTooLarge
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", ErrUnsupportedImage
	}
	return contentType, ext, nil
}

// ShrinkImage scales jpeg and png images down to MaxImageWidth keeping the
// aspect ratio. Other formats and narrow images are returned untouched.
func ShrinkImage(data []byte, contentType string) ([]byte, error) {
	if contentType != "image/jpeg" && contentType != "image/png" {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Dx() <= MaxImageWidth {
		return data, nil
	}

	resized := resize.Resize(MaxImageWidth, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	if contentType == "image/png" {
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 80})
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}
