package mosaic

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maax3v3/cubemosaic/internal/imaging"
	"github.com/maax3v3/cubemosaic/internal/palette"
	"github.com/maax3v3/cubemosaic/internal/quantize"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: uint8((x + y) * 255 / (w + h)),
				A: 255,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		s       Settings
		wantErr bool
	}{
		{Settings{8, 8}, false},
		{Settings{32, 32}, false},
		{Settings{16, 20}, false},
		{Settings{7, 16}, true},
		{Settings{16, 33}, true},
		{Settings{0, 0}, true},
		{Settings{-8, 8}, true},
	}
	for _, tt := range tests {
		err := tt.s.Validate()
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidSettings, "%+v", tt.s)
		} else {
			assert.NoError(t, err, "%+v", tt.s)
		}
	}
}

func TestAssemble_BoundarySettings(t *testing.T) {
	img := gradientImage(200, 150)

	m, err := Assemble(img, Settings{Width: 8, Height: 8}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 24, m.Dimensions().DisplayWidth)
	assert.Equal(t, 24, m.Dimensions().DisplayHeight)
	assert.Len(t, m.Rows(), 24)

	m, err = Assemble(img, Settings{Width: 32, Height: 32}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 96, m.Dimensions().DisplayWidth)
	assert.Equal(t, 96, m.Dimensions().DisplayHeight)
	assert.Len(t, m.Rows()[95], 96)

	_, err = Assemble(img, Settings{Width: 7, Height: 16}, Options{})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = Assemble(img, Settings{Width: 16, Height: 33}, Options{})
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestAssemble_PartitionCompleteness(t *testing.T) {
	img := gradientImage(123, 77)
	for _, s := range []Settings{{8, 8}, {8, 32}, {13, 21}, {32, 8}} {
		m, err := Assemble(img, s, Options{})
		require.NoError(t, err)

		counts := m.ColorCount()
		assert.Equal(t, s.Width*s.Height*9, counts.Total(), "%+v", s)

		for _, row := range m.Rows() {
			for _, c := range row {
				assert.True(t, c.Valid())
			}
		}
		sum := 0
		for _, n := range m.Document().ColorCount {
			sum += n
		}
		assert.Equal(t, m.Dimensions().TotalFaces, sum)
	}
}

func TestAssemble_CubeOwnership(t *testing.T) {
	s := Settings{Width: 11, Height: 9}
	m, err := Assemble(gradientImage(64, 64), s, Options{})
	require.NoError(t, err)

	dims := m.Dimensions()
	owner := make([][]int, dims.DisplayHeight)
	for r := range owner {
		owner[r] = make([]int, dims.DisplayWidth)
	}

	cubes := m.Cubes()
	require.Len(t, cubes, s.Width*s.Height)
	for i, cube := range cubes {
		// Row-major enumeration.
		assert.Equal(t, i%s.Width, cube.X)
		assert.Equal(t, i/s.Width, cube.Y)
		for r := 0; r < FacesPerSide; r++ {
			for c := 0; c < FacesPerSide; c++ {
				row, col := cube.Y*3+r, cube.X*3+c
				owner[row][col]++
				assert.Equal(t, m.At(row, col), cube.Faces[r][c])
			}
		}
	}
	for r := range owner {
		for c := range owner[r] {
			require.Equal(t, 1, owner[r][c], "face (%d,%d)", r, c)
		}
	}
}

func TestAssemble_SolidWhite(t *testing.T) {
	img := solidImage(40, 30, color.RGBA{255, 255, 255, 255})
	for _, s := range []Settings{{8, 8}, {16, 12}, {32, 32}} {
		m, err := Assemble(img, s, Options{})
		require.NoError(t, err)

		for _, row := range m.Rows() {
			for _, c := range row {
				require.Equal(t, palette.White, c)
			}
		}
		assert.Equal(t, map[string]int{"#FFFFFF": s.Width * s.Height * 9}, m.Document().ColorCount)
	}
}

func TestAssemble_MonotonicScaling(t *testing.T) {
	img := gradientImage(100, 100)
	small, err := Assemble(img, Settings{Width: 8, Height: 10}, Options{})
	require.NoError(t, err)
	large, err := Assemble(img, Settings{Width: 16, Height: 20}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4*small.Dimensions().Total, large.Dimensions().Total)
	assert.Equal(t, 4*small.Dimensions().TotalFaces, large.Dimensions().TotalFaces)
}

func TestAssemble_Deterministic(t *testing.T) {
	data := encodePNG(t, gradientImage(317, 211))
	s := Settings{Width: 24, Height: 16}

	var first bytes.Buffer
	m, err := AssembleBytes(data, s, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Encode(&first))

	for i := 0; i < 5; i++ {
		var next bytes.Buffer
		m, err := AssembleBytes(data, s, Options{})
		require.NoError(t, err)
		require.NoError(t, m.Encode(&next))
		require.Equal(t, first.String(), next.String(), "run %d", i)
	}
}

func TestAssemble_LabMetric(t *testing.T) {
	img := solidImage(30, 30, color.RGBA{196, 30, 58, 255})
	m, err := Assemble(img, Settings{Width: 8, Height: 8}, Options{Metric: quantize.MetricLab})
	require.NoError(t, err)
	assert.Equal(t, 8*8*9, m.ColorCount()[palette.Red])
}

func TestAssemble_InvalidImage(t *testing.T) {
	_, err := Assemble(nil, Settings{Width: 8, Height: 8}, Options{})
	assert.ErrorIs(t, err, ErrInvalidImage)

	empty := image.NewRGBA(image.Rect(0, 0, 0, 10))
	_, err = Assemble(empty, Settings{Width: 8, Height: 8}, Options{})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = AssembleBytes([]byte("definitely not an image"), Settings{Width: 8, Height: 8}, Options{})
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestAssembleBytes_SettingsCheckedFirst(t *testing.T) {
	_, err := AssembleBytes([]byte("garbage"), Settings{Width: 40, Height: 8}, Options{})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.False(t, errors.Is(err, ErrInvalidImage))
}

func TestDominantColor(t *testing.T) {
	img := solidImage(30, 30, color.RGBA{0, 81, 186, 255})
	m, err := Assemble(img, Settings{Width: 8, Height: 8}, Options{})
	require.NoError(t, err)
	assert.Equal(t, palette.Blue, m.DominantColor(3, 5))
}

func TestRowsReturnsCopy(t *testing.T) {
	m, err := Assemble(solidImage(10, 10, color.White), Settings{Width: 8, Height: 8}, Options{})
	require.NoError(t, err)

	rows := m.Rows()
	rows[0][0] = palette.Blue
	assert.Equal(t, palette.White, m.At(0, 0))
}

func TestAssemble_Enhance(t *testing.T) {
	// A dull red-orange that sits just on the Red side of the boundary.
	img := solidImage(24, 24, color.RGBA{225, 60, 30, 255})
	s := Settings{Width: 8, Height: 8}

	plain, err := Assemble(img, s, Options{})
	require.NoError(t, err)
	assert.Equal(t, 8*8*9, plain.ColorCount()[palette.Red])

	enhanced, err := Assemble(img, s, Options{Enhance: true})
	require.NoError(t, err)
	assert.Equal(t, 8*8*9, enhanced.ColorCount()[palette.Orange])

	again, err := Assemble(img, s, Options{Metric: quantize.MetricRGB})
	require.NoError(t, err)
	assert.Equal(t, plain.Rows(), again.Rows(), "enhancement must stay opt-in")
}

func TestAssembleBytes_PixelCap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1000, 1000))))
	require.Less(t, buf.Len(), 64<<10)

	_, err := AssembleBytes(buf.Bytes(), Settings{Width: 8, Height: 8}, Options{MaxPixels: 500_000})
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.ErrorIs(t, err, imaging.ErrTooManyPixels)

	m, err := AssembleBytes(buf.Bytes(), Settings{Width: 8, Height: 8}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 8*8*9, m.ColorCount().Total())
}
