package guide

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/maax3v3/cubemosaic/internal/aggregation"
	"github.com/maax3v3/cubemosaic/internal/color"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/palette"
)

// Options configures the printed guide.
type Options struct {
	Layout   Layout
	Title    string
	PageSize string // "Letter" or "A4"
}

// DefaultOptions returns the reference guide configuration.
func DefaultOptions() Options {
	return Options{
		Layout:   DefaultLayout,
		Title:    "Your Rubik's Cube Mosaic",
		PageSize: "Letter",
	}
}

// documentDate is stamped on every guide so identical mosaics produce
// identical bytes.
var documentDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	margin      = 15.0 // mm
	faceSize    = 11.0 // mm, one face on an instruction card
	cardLabelH  = 7.0
	mosaicMaxH  = 130.0
	maxCellSize = 8.0

	instructionHeaderH = 17.0 // title, caption and gap above the cards
	footerH            = 8.0
)

// pageSizes holds the supported portrait page sizes in mm, keyed by
// lowercase name.
var pageSizes = map[string]fpdf.SizeType{
	"letter": {Wd: 215.9, Ht: 279.4},
	"a4":     {Wd: 210, Ht: 297},
}

// Validate checks that the page size is supported and that every card of
// the layout has room for a full 3×3 face block.
func (o Options) Validate() error {
	size, ok := pageSizes[strings.ToLower(o.PageSize)]
	if !ok {
		return fmt.Errorf("unsupported page size %q (want Letter or A4)", o.PageSize)
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	cardW, cardH := cardSize(size, o.Layout)
	block := faceSize * mosaic.FacesPerSide
	if cardW < block || cardH < cardLabelH+1+block {
		return fmt.Errorf("page layout %dx%d does not fit on a %s page: cards are %.1fx%.1f mm, need %.1fx%.1f mm",
			o.Layout.Columns, o.Layout.Rows, o.PageSize, cardW, cardH, block, cardLabelH+1+block)
	}
	return nil
}

// cardSize returns the width and height of one card slot on an
// instruction page.
func cardSize(size fpdf.SizeType, l Layout) (w, h float64) {
	w = (size.Wd - 2*margin) / float64(l.Columns)
	h = (size.Ht - margin - footerH - (margin + instructionHeaderH)) / float64(l.Rows)
	return w, h
}

// WritePDF renders the guide for m to w: a cover page with the full mosaic,
// specifications and shopping list, then one page per Paginate page.
func WritePDF(w io.Writer, m *mosaic.Mosaic, opts Options) error {
	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout
	}
	if opts.Title == "" {
		opts.Title = DefaultOptions().Title
	}
	if opts.PageSize == "" {
		opts.PageSize = "Letter"
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	pages, err := Paginate(m, opts.Layout)
	if err != nil {
		return err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           pageSizes[strings.ToLower(opts.PageSize)],
	})
	pdf.SetCreationDate(documentDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(opts.Title, false)
	pdf.SetCreator("cubemosaic", false)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 3)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	writeCover(pdf, m, opts)
	for _, page := range pages {
		writeInstructionPage(pdf, m, page, opts.Layout, len(pages))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing guide PDF: %w", err)
	}
	return nil
}

func writeCover(pdf *fpdf.Fpdf, m *mosaic.Mosaic, opts Options) {
	pdf.AddPage()
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margin

	pdf.SetFont("Helvetica", "B", 24)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentW, 14, opts.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	dims := m.Dimensions()
	cell := contentW / float64(dims.DisplayWidth)
	if byH := mosaicMaxH / float64(dims.DisplayHeight); byH < cell {
		cell = byH
	}
	if cell > maxCellSize {
		cell = maxCellSize
	}
	gridW := cell * float64(dims.DisplayWidth)
	gridH := cell * float64(dims.DisplayHeight)
	x0 := margin + (contentW-gridW)/2
	y0 := pdf.GetY()

	for r := 0; r < dims.DisplayHeight; r++ {
		for c := 0; c < dims.DisplayWidth; c++ {
			setFill(pdf, m.At(r, c).RGB())
			pdf.Rect(x0+float64(c)*cell, y0+float64(r)*cell, cell, cell, "F")
		}
	}

	// Cube boundaries.
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	cubeSize := cell * mosaic.FacesPerSide
	for cx := 0; cx <= dims.Width; cx++ {
		x := x0 + float64(cx)*cubeSize
		pdf.Line(x, y0, x, y0+gridH)
	}
	for cy := 0; cy <= dims.Height; cy++ {
		y := y0 + float64(cy)*cubeSize
		pdf.Line(x0, y, x0+gridW, y)
	}

	pdf.SetY(y0 + gridH + 8)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Mosaic Specifications", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	specs := []string{
		fmt.Sprintf("Cube Grid: %d x %d cubes", dims.Width, dims.Height),
		fmt.Sprintf("Total Cubes: %d", dims.Total),
		fmt.Sprintf("Total Faces: %d", dims.TotalFaces),
		fmt.Sprintf("Display Resolution: %d x %d faces", dims.DisplayWidth, dims.DisplayHeight),
		fmt.Sprintf("Instruction Pages: %d (%d cubes per page)", PageCount(m, opts.Layout), opts.Layout.Capacity()),
	}
	for _, line := range specs {
		pdf.CellFormat(contentW, 6, "- "+line, "", 1, "L", false, 0, "")
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Faces Needed by Color", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range aggregation.ShoppingList(m.ColorCount()) {
		y := pdf.GetY()
		setFill(pdf, item.Color.RGB())
		pdf.SetDrawColor(80, 80, 80)
		pdf.Rect(margin, y+1, 4, 4, "FD")
		pdf.SetX(margin + 6)
		pdf.CellFormat(contentW-6, 6, fmt.Sprintf("%s: %d faces", item.Color, item.Faces), "", 1, "L", false, 0, "")
	}
}

func writeInstructionPage(pdf *fpdf.Fpdf, m *mosaic.Mosaic, page Page, l Layout, totalPages int) {
	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*margin

	first := page.Cubes[0]
	last := page.Cubes[len(page.Cubes)-1]
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(contentW, 8,
		fmt.Sprintf("Cube Instructions %d/%d: cubes %d-%d", page.Number, totalPages, first.Index, last.Index),
		"", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5,
		fmt.Sprintf("Positions are (column, row) in the %d x %d cube grid, counted from the top-left cube (0, 0).",
			m.Settings().Width, m.Settings().Height),
		"", 1, "L", false, 0, "")

	top := margin + instructionHeaderH
	cardW, cardH := cardSize(fpdf.SizeType{Wd: pageW, Ht: pageH}, l)
	block := faceSize * mosaic.FacesPerSide

	for _, p := range page.Cubes {
		cx := margin + float64(p.Slot.X)*cardW
		cy := top + float64(p.Slot.Y)*cardH

		pdf.SetXY(cx, cy)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(cardW, cardLabelH,
			fmt.Sprintf("Cube %d (%d, %d)", p.Index, p.Cube.X, p.Cube.Y),
			"", 0, "C", false, 0, "")

		bx := cx + (cardW-block)/2
		by := cy + cardLabelH + 1
		pdf.SetLineWidth(0.3)
		pdf.SetFont("Helvetica", "B", 9)
		for r := 0; r < mosaic.FacesPerSide; r++ {
			for c := 0; c < mosaic.FacesPerSide; c++ {
				face := p.Cube.Faces[r][c]
				x := bx + float64(c)*faceSize
				y := by + float64(r)*faceSize
				setFill(pdf, face.RGB())
				pdf.SetDrawColor(0, 0, 0)
				pdf.Rect(x, y, faceSize, faceSize, "FD")
				setLabelColor(pdf, face)
				pdf.SetXY(x, y)
				pdf.CellFormat(faceSize, faceSize, face.Letter(), "", 0, "CM", false, 0, "")
			}
		}
	}
}

func setFill(pdf *fpdf.Fpdf, c color.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setLabelColor(pdf *fpdf.Fpdf, face palette.Color) {
	if face.RGB().IsLight() {
		pdf.SetTextColor(0, 0, 0)
		return
	}
	pdf.SetTextColor(255, 255, 255)
}
