package aggregation

import (
	"github.com/maax3v3/cubemosaic/internal/palette"
)

// Tally counts how many faces of each palette color appear in faces.
func Tally(faces []palette.Color) palette.Counts {
	var n palette.Counts
	for _, c := range faces {
		n.Add(c)
	}
	return n
}

// Dominant returns the most frequent color in faces. Equal counts resolve to
// the color earliest in palette order; an empty input yields palette.White.
func Dominant(faces []palette.Color) palette.Color {
	n := Tally(faces)
	best := palette.All[0]
	for _, c := range palette.All[1:] {
		if n[c] > n[best] {
			best = c
		}
	}
	return best
}

// Shopping is one line of a material list: a color and how many faces need it.
type Shopping struct {
	Color palette.Color
	Faces int
}

// ShoppingList returns the non-zero counts ordered by descending face count,
// with palette order breaking ties.
func ShoppingList(n palette.Counts) []Shopping {
	list := make([]Shopping, 0, palette.Size)
	for _, c := range palette.All {
		if n[c] > 0 {
			list = append(list, Shopping{Color: c, Faces: n[c]})
		}
	}
	// Insertion sort keeps equal counts in palette order (small N).
	for i := 1; i < len(list); i++ {
		for j := i; j > 0 && list[j].Faces > list[j-1].Faces; j-- {
			list[j], list[j-1] = list[j-1], list[j]
		}
	}
	return list
}
