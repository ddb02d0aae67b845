package ansimake

import (
	"golang.org/x/sync/errgroup"
)

// Cell is one character position of the output grid. HasFG/HasBG track
// which colors are live; a cell with neither renders as a bare space so
// the terminal's own background shows through.
type Cell struct {
	Glyph rune
	FG    Color
	BG    Color
	HasFG bool
	HasBG bool
}

// DefaultAspectRatio is the vertical correction applied when deriving one
// grid dimension from the other. Terminal cells are roughly twice as tall
// as they are wide, so half of the source rows map to each cell row. The
// exact value is a tuning constant, overridable via Config.AspectRatio.
const DefaultAspectRatio = 0.5

// DeriveSize resolves the output grid dimensions. When only one of width
// or height is given, the other is derived from the source aspect ratio
// with the vertical correction applied; when both are given the source
// aspect ratio is overridden. Both absent is ErrInvalidDimensions.
func DeriveSize(srcW, srcH, width, height int, aspect float64) (cols, rows int, err error) {
	if aspect <= 0 {
		aspect = DefaultAspectRatio
	}

	switch {
	case width > 0 && height > 0:
		return width, height, nil
	case width > 0:
		rows = int(float64(width)*float64(srcH)/float64(srcW)*aspect + 0.5)
		if rows < 1 {
			rows = 1
		}
		return width, rows, nil
	case height > 0:
		cols = int(float64(height)*float64(srcW)/float64(srcH)/aspect + 0.5)
		if cols < 1 {
			cols = 1
		}
		return cols, height, nil
	default:
		return 0, 0, ErrInvalidDimensions
	}
}

// FitSize derives the largest grid that fits within (maxCols, maxRows)
// while preserving the source aspect ratio. Used for the terminal-size
// default in the CLI and server.
func FitSize(srcW, srcH, maxCols, maxRows int, aspect float64) (cols, rows int) {
	if aspect <= 0 {
		aspect = DefaultAspectRatio
	}
	if maxCols < 1 {
		maxCols = 1
	}
	if maxRows < 1 {
		maxRows = 1
	}

	cols = maxCols
	rows = int(float64(cols)*float64(srcH)/float64(srcW)*aspect + 0.5)
	if rows > maxRows {
		rows = maxRows
		cols = int(float64(rows)*float64(srcW)/float64(srcH)/aspect + 0.5)
		if cols > maxCols {
			cols = maxCols
		}
	}
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// span is a half-open source pixel range along one axis, covering at
// least one pixel. When the target grid outsizes the source the computed
// range collapses, and the span degrades to the nearest source pixel.
func span(index, cells, srcLen int) (lo, hi int) {
	lo = index * srcLen / cells
	hi = (index + 1) * srcLen / cells
	if hi <= lo {
		hi = lo + 1
	}
	if hi > srcLen {
		hi = srcLen
		if lo >= hi {
			lo = hi - 1
		}
	}
	return lo, hi
}

// averageRegion box-filters a source region into one color: the mean of
// each channel across all covered pixels, rounded to nearest. The second
// return reports whether the averaged alpha clears the threshold.
func averageRegion(buf *PixelBuffer, x0, x1, y0, y1 int, alphaThreshold uint8) (Color, bool) {
	var r, g, b, a, n int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px := buf.at(x, y)
			r += int(px.R)
			g += int(px.G)
			b += int(px.B)
			a += int(px.A)
			n++
		}
	}

	avg := Color{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((b + n/2) / n),
		A: uint8((a + n/2) / n),
	}
	return avg, avg.A >= alphaThreshold
}

// resampleGrid maps the buffer onto a cols x rows cell grid. In half-block
// mode each cell's source region is split into top and bottom halves that
// contribute independent colors; in block mode the full region averages
// into a single color. Rows may be produced in parallel; every goroutine
// owns a disjoint range of output rows, so the result is independent of
// worker count.
func resampleGrid(buf *PixelBuffer, cfg Config, cols, rows int) [][]Cell {
	grid := make([][]Cell, rows)
	for i := range grid {
		grid[i] = make([]Cell, cols)
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	var eg errgroup.Group
	chunk := (rows + workers - 1) / workers
	for start := 0; start < rows; start += chunk {
		start := start
		end := start + chunk
		if end > rows {
			end = rows
		}
		eg.Go(func() error {
			for cy := start; cy < end; cy++ {
				for cx := 0; cx < cols; cx++ {
					grid[cy][cx] = buildCell(buf, cfg, cx, cy, cols, rows)
				}
			}
			return nil
		})
	}
	// Workers never fail; the group exists for the join.
	_ = eg.Wait()

	return grid
}

func buildCell(buf *PixelBuffer, cfg Config, cx, cy, cols, rows int) Cell {
	x0, x1 := span(cx, cols, buf.Width())

	if cfg.UseBlocks {
		y0, y1 := span(cy, rows, buf.Height())
		avg, visible := averageRegion(buf, x0, x1, y0, y1, cfg.AlphaThreshold)
		if !visible {
			return Cell{Glyph: ' '}
		}
		glyph := glyphFullBlock
		if cfg.Shade {
			glyph = shadeGlyph(avg.luma())
		}
		return Cell{Glyph: glyph, FG: avg, HasFG: true}
	}

	// Half-block mode samples a virtual grid of rows*2 sub-rows.
	ty0, ty1 := span(cy*2, rows*2, buf.Height())
	by0, by1 := span(cy*2+1, rows*2, buf.Height())
	top, topVisible := averageRegion(buf, x0, x1, ty0, ty1, cfg.AlphaThreshold)
	bot, botVisible := averageRegion(buf, x0, x1, by0, by1, cfg.AlphaThreshold)

	switch {
	case topVisible && botVisible:
		return Cell{Glyph: glyphUpperHalf, FG: top, BG: bot, HasFG: true, HasBG: true}
	case topVisible:
		return Cell{Glyph: glyphUpperHalf, FG: top, HasFG: true}
	case botVisible:
		return Cell{Glyph: glyphLowerHalf, FG: bot, HasFG: true}
	default:
		return Cell{Glyph: ' '}
	}
}

// quantizeGrid rewrites cell colors through a tolerance quantizer,
// visiting cells row-major with foreground before background so cluster
// formation follows a stable order.
func quantizeGrid(grid [][]Cell, tolerance float64) {
	if tolerance <= 0 {
		return
	}

	q := NewQuantizer(tolerance)
	for _, row := range grid {
		for i := range row {
			if row[i].HasFG {
				rep := q.Lookup(row[i].FG)
				row[i].FG.R, row[i].FG.G, row[i].FG.B = rep.R, rep.G, rep.B
			}
			if row[i].HasBG {
				rep := q.Lookup(row[i].BG)
				row[i].BG.R, row[i].BG.G, row[i].BG.B = rep.R, rep.G, rep.B
			}
		}
	}
}
