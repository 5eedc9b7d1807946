// Package palette defines the six physical face colors of a cube.
package palette

import (
	"fmt"
	"strings"

	"github.com/maax3v3/cubemosaic/internal/color"
)

// Color identifies one of the six face colors.
type Color uint8

// Face colors in canonical order. Quantization ties resolve to the
// earliest entry, so this order must not change.
const (
	White Color = iota
	Yellow
	Orange
	Red
	Green
	Blue
)

// Size is the number of palette entries.
const Size = 6

// All lists the palette in canonical order.
var All = [Size]Color{White, Yellow, Orange, Red, Green, Blue}

var entries = [Size]struct {
	name   string
	letter string
	rgb    color.RGB
}{
	White:  {"White", "W", color.RGB{R: 0xFF, G: 0xFF, B: 0xFF}},
	Yellow: {"Yellow", "Y", color.RGB{R: 0xFF, G: 0xD5, B: 0x00}},
	Orange: {"Orange", "O", color.RGB{R: 0xFF, G: 0x58, B: 0x00}},
	Red:    {"Red", "R", color.RGB{R: 0xC4, G: 0x1E, B: 0x3A}},
	Green:  {"Green", "G", color.RGB{R: 0x00, G: 0x9E, B: 0x60}},
	Blue:   {"Blue", "B", color.RGB{R: 0x00, G: 0x51, B: 0xBA}},
}

// Valid reports whether c is a palette member.
func (c Color) Valid() bool {
	return int(c) < Size
}

// RGB returns the canonical color value. Like Hex and Letter it panics
// unless c is Valid; values come from this package's constants or Parse
// and FromHex.
func (c Color) RGB() color.RGB {
	return entries[c].rgb
}

// Hex returns the canonical value as "#RRGGBB". c must be Valid.
func (c Color) Hex() string {
	return entries[c].rgb.Hex()
}

// Letter returns a one-letter abbreviation used on printed guides. c must
// be Valid.
func (c Color) Letter() string {
	return entries[c].letter
}

// String returns the color name, or "Color(n)" for invalid values.
func (c Color) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Color(%d)", uint8(c))
	}
	return entries[c].name
}

// Parse looks a color up by name, case-insensitively.
func Parse(name string) (Color, error) {
	for _, c := range All {
		if strings.EqualFold(entries[c].name, strings.TrimSpace(name)) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown palette color %q", name)
}

// FromHex returns the palette entry whose canonical value equals hex.
// Any color outside the palette is an error.
func FromHex(hex string) (Color, error) {
	rgb, err := color.ParseHex(hex)
	if err != nil {
		return 0, err
	}
	for _, c := range All {
		if entries[c].rgb == rgb {
			return c, nil
		}
	}
	return 0, fmt.Errorf("color %s is not a palette color", rgb.Hex())
}

// Counts tallies occurrences of each palette color, indexed by Color.
type Counts [Size]int

// Add records one occurrence of c.
func (n *Counts) Add(c Color) {
	n[c]++
}

// Total returns the sum of all counts.
func (n Counts) Total() int {
	total := 0
	for _, v := range n {
		total += v
	}
	return total
}

// Map returns the non-zero counts keyed by canonical hex value.
func (n Counts) Map() map[string]int {
	m := make(map[string]int, Size)
	for _, c := range All {
		if n[c] > 0 {
			m[c.Hex()] = n[c]
		}
	}
	return m
}
