package stream

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"

	"github.com/disintegration/imaging"

	"github.com/RyanLangman/CM3070-FinalProject/internal/camera"
)

// EncodeFrame resizes a frame to the transport width (keeping aspect ratio),
// JPEG encodes it and base64 encodes the result, ready for a text WebSocket
// frame or JSON payload.
func EncodeFrame(f *camera.Frame, width, quality int) ([]byte, error) {
	img := f.ToImage()
	if width > 0 && f.Width > width {
		img = imaging.Resize(img, width, 0, imaging.Linear)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	out := make([]byte, base64.StdEncoding.EncodedLen(buf.Len()))
	base64.StdEncoding.Encode(out, buf.Bytes())
	return out, nil
}
