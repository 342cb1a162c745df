package clip_helper

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const dataURLPrefix = "data:image/"

// IsImageDataURL reports whether s looks like a base64 image data URL.
func IsImageDataURL(s string) bool {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return false
	}
	return strings.Contains(s, ";base64,")
}

// ParseImageDataURL decodes a data:image/...;base64,... string into a
// DIBImage (premultiplied BGRA + canonical PNG).
func ParseImageDataURL(s string) (*DIBImage, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return nil, fmt.Errorf("%w: not an image data URL", ErrDecode)
	}
	idx := strings.Index(s, ";base64,")
	if idx < 0 {
		return nil, fmt.Errorf("%w: missing base64 marker", ErrDecode)
	}
	raw, err := base64.StdEncoding.DecodeString(s[idx+len(";base64,"):])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return DecodeImage(raw)
}

// PNGDataURL wraps raw PNG bytes in a data URL.
func PNGDataURL(pngBytes []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}
