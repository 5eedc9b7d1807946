package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/maax3v3/cubemosaic/internal/aggregation"
	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/palette"
	"github.com/maax3v3/cubemosaic/internal/parallel"
)

// Config holds rendering configuration.
type Config struct {
	FaceSize   int // pixels per face in the mosaic preview
	CubeBorder int // separator width between cubes in the mosaic preview

	LegendPadding    int // vertical padding above the legend
	LegendCircleSize int // diameter of legend color circles
	LegendSpacing    int // horizontal spacing between legend items
	LegendMargin     int // left/right margin for the legend area

	PageFaceSize int // pixels per face on a guide page card
	PageMargin   int
	Layout       guide.Layout
}

// DefaultConfig returns sensible default rendering configuration.
func DefaultConfig() Config {
	return Config{
		FaceSize:         12,
		CubeBorder:       2,
		LegendPadding:    20,
		LegendCircleSize: 30,
		LegendSpacing:    15,
		LegendMargin:     20,
		PageFaceSize:     40,
		PageMargin:       24,
		Layout:           guide.DefaultLayout,
	}
}

var (
	white     = color.RGBA{255, 255, 255, 255}
	separator = color.RGBA{32, 32, 32, 255}
	faceEdge  = color.RGBA{0, 0, 0, 255}
)

// RenderMosaic draws the full mosaic face by face, with dark separators
// between cubes and a legend of face counts appended at the bottom.
func RenderMosaic(m *mosaic.Mosaic, font FontRenderer, cfg Config) *image.RGBA {
	dims := m.Dimensions()
	gridW := facesExtent(dims.DisplayWidth, cfg)
	gridH := facesExtent(dims.DisplayHeight, cfg)

	items := aggregation.ShoppingList(m.ColorCount())
	legendHeight := calculateLegendHeight(len(items), cfg, gridW)
	totalH := gridH + legendHeight

	out := image.NewRGBA(image.Rect(0, 0, gridW, totalH))
	fillRect(out, image.Rect(0, 0, gridW, gridH), separator)
	fillRect(out, image.Rect(0, gridH, gridW, totalH), white)

	// Each face row owns a distinct band of output rows.
	parallel.Rows(dims.DisplayHeight, func(startY, endY int) {
		for r := startY; r < endY; r++ {
			y := faceOffset(r, cfg)
			for c := 0; c < dims.DisplayWidth; c++ {
				x := faceOffset(c, cfg)
				fillRect(out, image.Rect(x, y, x+cfg.FaceSize, y+cfg.FaceSize), m.At(r, c).RGB().ToStdColor())
			}
		}
	})

	drawLegend(out, items, font, cfg, gridW, gridH)

	return out
}

// facesExtent returns the pixel length of n faces including cube separators
// on both outer edges.
func facesExtent(n int, cfg Config) int {
	cubes := n / mosaic.FacesPerSide
	return n*cfg.FaceSize + (cubes+1)*cfg.CubeBorder
}

// faceOffset returns the pixel position of face index i along one axis.
func faceOffset(i int, cfg Config) int {
	return i*cfg.FaceSize + (i/mosaic.FacesPerSide+1)*cfg.CubeBorder
}

func legendItemWidth(cfg Config) int {
	// Circle followed by room for a four-digit count.
	return cfg.LegendCircleSize*3 + cfg.LegendSpacing
}

func calculateLegendHeight(numItems int, cfg Config, imgW int) int {
	if numItems == 0 {
		return 0
	}
	itemsPerRow := legendItemsPerRow(cfg, imgW)
	numRows := (numItems + itemsPerRow - 1) / itemsPerRow
	rowHeight := cfg.LegendCircleSize + cfg.LegendSpacing
	return cfg.LegendPadding + numRows*rowHeight + cfg.LegendPadding
}

func legendItemsPerRow(cfg Config, imgW int) int {
	availableW := imgW - 2*cfg.LegendMargin
	itemsPerRow := availableW / legendItemWidth(cfg)
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}
	return itemsPerRow
}

func drawLegend(img *image.RGBA, items []aggregation.Shopping, font FontRenderer, cfg Config, imgW, drawingH int) {
	if len(items) == 0 {
		return
	}

	// Draw a thin separator line
	separatorY := drawingH + cfg.LegendPadding/2
	for x := cfg.LegendMargin; x < imgW-cfg.LegendMargin; x++ {
		img.SetRGBA(x, separatorY, color.RGBA{200, 200, 200, 255})
	}

	itemWidth := legendItemWidth(cfg)
	itemsPerRow := legendItemsPerRow(cfg, imgW)
	fontSize := cfg.LegendCircleSize * 2 / 3
	radius := cfg.LegendCircleSize / 2

	for i, item := range items {
		row := i / itemsPerRow
		col := i % itemsPerRow

		cx := cfg.LegendMargin + col*itemWidth + radius
		cy := drawingH + cfg.LegendPadding + row*(cfg.LegendCircleSize+cfg.LegendSpacing) + radius

		drawFilledCircle(img, cx, cy, radius, item.Color.RGB().ToStdColor())
		drawCircleBorder(img, cx, cy, radius, color.RGBA{100, 100, 100, 255})
		font.DrawString(img, item.Color.Letter(), cx, cy, labelColor(item.Color), fontSize)

		count := fmt.Sprintf("%d", item.Faces)
		w, _ := font.MeasureString(count, fontSize)
		font.DrawString(img, count, cx+radius+cfg.LegendSpacing/2+w/2, cy, color.Black, fontSize)
	}
}

// RenderPage draws one guide page: a card per cube, labelled with its
// assembly index and (column, row) position, showing its 3x3 faces.
func RenderPage(page guide.Page, font FontRenderer, cfg Config) *image.RGBA {
	l := cfg.Layout
	if l.Validate() != nil {
		l = guide.DefaultLayout
	}

	labelSize := 14
	_, labelH := font.MeasureString("0", labelSize)
	labelH += cfg.PageMargin / 2
	block := cfg.PageFaceSize * mosaic.FacesPerSide
	cardW := block + cfg.PageMargin
	cardH := labelH + block + cfg.PageMargin

	w := l.Columns*cardW + cfg.PageMargin
	h := l.Rows*cardH + cfg.PageMargin
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(out, out.Bounds(), white)

	letterSize := cfg.PageFaceSize / 2
	for _, p := range page.Cubes {
		ox := cfg.PageMargin + p.Slot.X*cardW
		oy := cfg.PageMargin + p.Slot.Y*cardH

		label := fmt.Sprintf("%d (%d,%d)", p.Index, p.Cube.X, p.Cube.Y)
		font.DrawString(out, label, ox+block/2, oy+labelH/2, color.Black, labelSize)

		by := oy + labelH
		for r := 0; r < mosaic.FacesPerSide; r++ {
			for c := 0; c < mosaic.FacesPerSide; c++ {
				face := p.Cube.Faces[r][c]
				x := ox + c*cfg.PageFaceSize
				y := by + r*cfg.PageFaceSize
				rect := image.Rect(x, y, x+cfg.PageFaceSize, y+cfg.PageFaceSize)
				fillRect(out, rect, faceEdge)
				fillRect(out, rect.Inset(1), face.RGB().ToStdColor())
				font.DrawString(out, face.Letter(), x+cfg.PageFaceSize/2, y+cfg.PageFaceSize/2, labelColor(face), letterSize)
			}
		}
	}

	return out
}

func labelColor(c palette.Color) color.Color {
	if c.RGB().IsLight() {
		return color.Black
	}
	return color.White
}

func fillRect(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	draw.Draw(img, r, &image.Uniform{C: col}, image.Point{}, draw.Src)
}

func drawFilledCircle(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				px, py := cx+dx, cy+dy
				if px >= 0 && px < img.Bounds().Dx() && py >= 0 && py < img.Bounds().Dy() {
					img.SetRGBA(px, py, col)
				}
			}
		}
	}
}

func drawCircleBorder(img *image.RGBA, cx, cy, radius int, col color.RGBA) {
	for angle := 0.0; angle < 2*math.Pi; angle += 0.01 {
		px := cx + int(math.Round(float64(radius)*math.Cos(angle)))
		py := cy + int(math.Round(float64(radius)*math.Sin(angle)))
		if px >= 0 && px < img.Bounds().Dx() && py >= 0 && py < img.Bounds().Dy() {
			img.SetRGBA(px, py, col)
		}
	}
}
