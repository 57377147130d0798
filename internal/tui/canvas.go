package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fitts/internal/experiment"
	"github.com/verte-zerg/fitts/internal/geometry"
)

// cellAspect is the height of a terminal cell relative to its width.
const cellAspect = 2.0

// viewport maps terminal cells onto the experiment canvas. The canvas keeps
// its aspect ratio and is centred in the drawing area.
type viewport struct {
	cols, rows int
	// scale is canvas units per column; a row spans scale*cellAspect units.
	scale            float64
	offsetX, offsetY float64
}

func newViewport(cols, rows int, canvasW, canvasH float64) viewport {
	cols = max(cols, 1)
	rows = max(rows, 1)
	scale := math.Max(canvasW/float64(cols), canvasH/(float64(rows)*cellAspect))
	return viewport{
		cols:    cols,
		rows:    rows,
		scale:   scale,
		offsetX: (float64(cols) - canvasW/scale) / 2,
		offsetY: (float64(rows) - canvasH/(scale*cellAspect)) / 2,
	}
}

// toCanvas returns the canvas point at the centre of a cell.
func (v viewport) toCanvas(col, row int) geometry.Point {
	return geometry.Point{
		X: (float64(col) + 0.5 - v.offsetX) * v.scale,
		Y: (float64(row) + 0.5 - v.offsetY) * v.scale * cellAspect,
	}
}

// toCell returns the cell containing a canvas point.
func (v viewport) toCell(p geometry.Point) (int, int) {
	col := int(math.Floor(p.X/v.scale + v.offsetX))
	row := int(math.Floor(p.Y/(v.scale*cellAspect) + v.offsetY))
	return col, row
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellTarget
	cellMarked
	cellToggleOff
	cellToggleOn
	cellCursor
)

var cellStyles = map[cellKind]lipgloss.Style{
	cellEmpty:     lipgloss.NewStyle(),
	cellTarget:    lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	cellMarked:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	cellToggleOff: lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A")),
	cellToggleOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#2E7D32")),
	cellCursor:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true),
}

type cell struct {
	kind cellKind
	ch   rune
}

// frame is a rows x cols grid of cells.
type frame struct {
	v     viewport
	cells [][]cell
}

func newFrame(v viewport) *frame {
	cells := make([][]cell, v.rows)
	for r := range cells {
		cells[r] = make([]cell, v.cols)
		for c := range cells[r] {
			cells[r][c] = cell{kind: cellEmpty, ch: ' '}
		}
	}
	return &frame{v: v, cells: cells}
}

func (f *frame) put(col, row int, c cell) {
	if row < 0 || row >= len(f.cells) || col < 0 || col >= len(f.cells[row]) {
		return
	}
	f.cells[row][col] = c
}

// disc fills every cell whose centre lies within the target. Half a cell is
// added to the radius so that small targets stay visible.
func (f *frame) disc(t geometry.Target, kind cellKind) {
	reach := t.Radius + f.v.scale/2
	minCol, minRow := f.v.toCell(geometry.Point{X: t.Center.X - reach, Y: t.Center.Y - reach})
	maxCol, maxRow := f.v.toCell(geometry.Point{X: t.Center.X + reach, Y: t.Center.Y + reach})
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if geometry.Dist(f.v.toCanvas(col, row), t.Center) <= reach {
				f.put(col, row, cell{kind: kind, ch: '█'})
			}
		}
	}
}

func (f *frame) rect(r experiment.Rect, kind cellKind, label string) {
	minCol, minRow := f.v.toCell(geometry.Point{X: r.X, Y: r.Y})
	maxCol, maxRow := f.v.toCell(geometry.Point{X: r.X + r.W, Y: r.Y + r.H})
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			f.put(col, row, cell{kind: kind, ch: ' '})
		}
	}
	f.text((minCol+maxCol+1)/2, (minRow+maxRow)/2, label, kind)
}

// text writes s centred on col.
func (f *frame) text(col, row int, s string, kind cellKind) {
	runes := []rune(s)
	start := col - len(runes)/2
	for i, r := range runes {
		f.put(start+i, row, cell{kind: kind, ch: r})
	}
}

// render joins runs of equally styled cells into styled strings.
func (f *frame) render() string {
	lines := make([]string, len(f.cells))
	for r, row := range f.cells {
		var b strings.Builder
		var run []rune
		kind := cellEmpty
		flush := func() {
			if len(run) > 0 {
				b.WriteString(cellStyles[kind].Render(string(run)))
				run = run[:0]
			}
		}
		for _, c := range row {
			if c.kind != kind {
				flush()
				kind = c.kind
			}
			run = append(run, c.ch)
		}
		flush()
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
