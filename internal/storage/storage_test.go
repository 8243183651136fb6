package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingUploader struct {
	calls int
}

func (f *failingUploader) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	f.calls++
	return "", errors.New("bucket unavailable")
}

func TestLocalUploaderWritesUnderDir(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	url, err := u.Upload(context.Background(), "screenshots/order-1.png", "image/png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/screenshots/order-1.png", url)

	b, err := os.ReadFile(filepath.Join(dir, "screenshots", "order-1.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))
}

func TestLocalUploaderStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	u := NewLocalUploader(dir)

	url, err := u.Upload(context.Background(), "../../escape.txt", "text/plain", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/escape.txt", url)
	assert.FileExists(t, filepath.Join(dir, "escape.txt"))
}

func TestFallbackUsedWhenPrimaryFails(t *testing.T) {
	log, hook := test.NewNullLogger()
	primary := &failingUploader{}
	u := NewFallbackUploader(primary, NewLocalUploader(t.TempDir()), log)

	url, err := u.Upload(context.Background(), "screenshots/a.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, "/uploads/screenshots/a.png", url)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFallbackWithoutPrimary(t *testing.T) {
	log, _ := test.NewNullLogger()
	u := NewFallbackUploader(nil, NewLocalUploader(t.TempDir()), log)

	url, err := u.Upload(context.Background(), "products/p.png", "image/png", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/products/p.png", url)
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDetectImage(t *testing.T) {
	contentType, ext, err := DetectImage(encodePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, ".png", ext)

	_, _, err = DetectImage([]byte("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, _, err = DetectImage(make([]byte, MaxImageSize+1))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestShrinkImage(t *testing.T) {
	wide := encodePNG(t, 1600, 20)
	out, err := ShrinkImage(wide, "image/png")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, MaxImageWidth, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())

	narrow := encodePNG(t, 100, 100)
	out, err = ShrinkImage(narrow, "image/png")
	require.NoError(t, err)
	assert.Equal(t, narrow, out)

	webp := []byte("RIFF....WEBP")
	out, err = ShrinkImage(webp, "image/webp")
	require.NoError(t, err)
	assert.Equal(t, webp, out)
}
