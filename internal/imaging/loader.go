package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// MaxBytes caps how much image data Read and Load will consume.
const MaxBytes = 32 << 20

// MaxPixels caps the decoded size of an image. The header is checked
// before any pixel data is allocated.
const MaxPixels = 64 << 20

var (
	// ErrEmpty is returned for images whose bounds enclose no pixels.
	ErrEmpty = errors.New("image has zero area")
	// ErrTooManyPixels is returned when a header declares more pixels than allowed.
	ErrTooManyPixels = errors.New("image has too many pixels")
)

// Formats lists the registered decoders.
var Formats = []string{"jpeg", "png", "gif", "bmp", "webp"}

// Decode decodes image bytes in any registered format (JPEG, PNG, GIF, BMP,
// WEBP) and returns the image with the detected format name. Images over
// MaxPixels are rejected.
func Decode(data []byte) (image.Image, string, error) {
	return DecodeLimit(data, MaxPixels)
}

// DecodeLimit is Decode with a custom pixel cap. A non-positive maxPixels
// means MaxPixels.
func DecodeLimit(data []byte, maxPixels int) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("decoding image: no data")
	}
	if maxPixels <= 0 {
		maxPixels = MaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image header (supported: %s): %w", strings.Join(Formats, ", "), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", ErrEmpty
	}
	if cfg.Width > maxPixels/cfg.Height {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image (supported: %s): %w", strings.Join(Formats, ", "), err)
	}
	if img.Bounds().Empty() {
		return nil, "", ErrEmpty
	}
	return img, format, nil
}

// Read reads at most MaxBytes from r and decodes the result.
func Read(r io.Reader) (image.Image, string, error) {
	return ReadLimit(r, MaxPixels)
}

// ReadLimit is Read with a custom pixel cap.
func ReadLimit(r io.Reader, maxPixels int) (image.Image, string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	if len(data) > MaxBytes {
		return nil, "", fmt.Errorf("reading image: larger than %d bytes", MaxBytes)
	}
	return DecodeLimit(data, maxPixels)
}

// Load reads an image file from disk. The format is detected from the
// content, not the extension. The path is normalized: ~ is expanded to the
// user's home directory, and relative paths are resolved to absolute.
func Load(path string) (image.Image, error) {
	path = ExpandPath(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, _, err := Read(f)
	return img, err
}

// SavePNG writes an image to disk as PNG.
// The path is normalized: ~ is expanded and relative paths are resolved.
func SavePNG(path string, img image.Image) error {
	path = ExpandPath(path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// ExpandPath normalizes a file path by expanding ~ to the user's home
// directory and resolving relative paths to absolute.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	// On Windows, also handle ~\
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "~\\") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return filepath.Clean(path)
}
