package background

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var ErrBadDataURL = errors.New("malformed data URL")

// EncodeDataURL packs image bytes as a base64 data URL.
func EncodeDataURL(data []byte, contentType string) string {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL reverses EncodeDataURL.
func DecodeDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", ErrBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", ErrBadDataURL
	}
	contentType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", ErrBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return data, contentType, nil
}

// tintSize bounds the thumbnail the average is taken over.
const tintSize = 64

// AverageColor decodes an image and returns its mean color as a hex
// lipgloss color. The mean is taken over a small thumbnail.
func AverageColor(data []byte) (lipgloss.Color, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return "", errors.New("decode image: empty bounds")
	}

	thumb := imaging.Fit(img, tintSize, tintSize, imaging.Box)

	var r, g, b, n uint64
	for i := 0; i+3 < len(thumb.Pix); i += 4 {
		r += uint64(thumb.Pix[i])
		g += uint64(thumb.Pix[i+1])
		b += uint64(thumb.Pix[i+2])
		n++
	}
	if n == 0 {
		return "", errors.New("decode image: no pixels")
	}

	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r/n, g/n, b/n)), nil
}
