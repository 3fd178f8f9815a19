// Package terminal renders the particle backdrop onto a tcell screen.
// Each terminal cell stands for a block of virtual pixels; particles are
// accumulated per cell and shown as shade glyphs.
package terminal

import (
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
)

// shades maps increasing cell coverage to glyphs.
var shades = []rune{'.', '·', '∙', '•', '●'}

// cell accumulates the particles drawn into one terminal cell.
type cell struct {
	coverage float64 // composited coverage in [0, 1]
	weight   float64 // sum of particle alphas
	r, g, b  float64 // alpha-weighted colour sums
}

// Surface implements a drawing surface and viewport over a tcell screen.
type Surface struct {
	screen     tcell.Screen
	cellWidth  int
	cellHeight int
	background tcell.Color

	width, height int // surface size in virtual pixels
	cols, rows    int
	cells         []cell
}

// NewSurface creates a surface where one terminal cell covers
// cellWidth x cellHeight virtual pixels. Sizes below 1 are treated as 1.
func NewSurface(screen tcell.Screen, cellWidth, cellHeight int, background color.NRGBA) *Surface {
	return &Surface{
		screen:     screen,
		cellWidth:  max(cellWidth, 1),
		cellHeight: max(cellHeight, 1),
		background: tcell.NewRGBColor(int32(background.R), int32(background.G), int32(background.B)),
	}
}

// Size reports the terminal size in virtual pixels.
func (s *Surface) Size() (int, int) {
	cols, rows := s.screen.Size()
	return cols * s.cellWidth, rows * s.cellHeight
}

// SetSize resizes the surface to width x height virtual pixels and
// discards the accumulated frame.
func (s *Surface) SetSize(width, height int) {
	s.width, s.height = width, height
	s.cols = ceilDiv(width, s.cellWidth)
	s.rows = ceilDiv(height, s.cellHeight)
	s.cells = make([]cell, s.cols*s.rows)
	s.screen.Clear()
}

// Clear erases the accumulated frame.
func (s *Surface) Clear() {
	clear(s.cells)
}

// FillCircle composites a circle into the cell containing its centre.
// Coverage scales with the circle's diameter relative to the cell width.
func (s *Surface) FillCircle(x, y, radius float64, fill color.NRGBA) {
	if s.cols == 0 || s.rows == 0 || x < 0 || y < 0 || x > float64(s.width) || y > float64(s.height) {
		return
	}
	// x == width lands on the last column
	col := min(int(x)/s.cellWidth, s.cols-1)
	row := min(int(y)/s.cellHeight, s.rows-1)

	a := float64(fill.A) / 255 * math.Min(1, 2*radius/float64(s.cellWidth))
	if a <= 0 {
		return
	}
	c := &s.cells[row*s.cols+col]
	c.coverage = 1 - (1-c.coverage)*(1-a)
	c.weight += a
	c.r += a * float64(fill.R)
	c.g += a * float64(fill.G)
	c.b += a * float64(fill.B)
}

// Present writes every cell to the screen and shows it.
func (s *Surface) Present() {
	blank := tcell.StyleDefault.Background(s.background)
	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			c := s.cells[row*s.cols+col]
			if c.coverage <= 0 {
				s.screen.SetContent(col, row, ' ', nil, blank)
				continue
			}
			s.screen.SetContent(col, row, shade(c.coverage), nil, blank.Foreground(c.color()))
		}
	}
	s.screen.Show()
}

// Grid returns the surface size in terminal cells.
func (s *Surface) Grid() (cols, rows int) {
	return s.cols, s.rows
}

// Coverage returns the composited coverage of a cell, 0 outside the grid.
func (s *Surface) Coverage(col, row int) float64 {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return 0
	}
	return s.cells[row*s.cols+col].coverage
}

// color averages the cell's particle colours and dims them by coverage.
func (c cell) color() tcell.Color {
	if c.weight <= 0 {
		return tcell.ColorDefault
	}
	k := (0.4 + 0.6*c.coverage) / c.weight
	return tcell.NewRGBColor(channel(c.r*k), channel(c.g*k), channel(c.b*k))
}

func shade(coverage float64) rune {
	i := int(coverage * float64(len(shades)))
	return shades[min(max(i, 0), len(shades)-1)]
}

func channel(v float64) int32 {
	return int32(min(max(v, 0), 255))
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
