package grid

import (
	"fmt"
	"math"

	"github.com/skypies/geo"
)

// Config describes the binned area.
type Config struct {
	LatBinSize float64
	LngBinSize float64
	// Box is inclusive on all four edges.
	Box geo.LatlongBox
	// MaxCells refuses to allocate grids larger than this. Zero means no limit.
	MaxCells int
}

// Cell is one bin of the grid. Set is false until the first fix lands in it.
type Cell struct {
	Count int
	Set   bool
}

// Grid is a dense, cumulative 2D histogram of fixes. Rows are latitude bins,
// columns are longitude bins. Cells are never reset.
type Grid struct {
	cfg Config

	rows, cols int
	// Absolute bin index of row 0 / column 0.
	latBin0, lngBin0 int

	cells []Cell
	total int
}

// maxBinIndex keeps absolute bin indices exactly representable.
const maxBinIndex = 1 << 53

// hardMaxCells applies even when Config.MaxCells is zero.
const hardMaxCells = 1 << 40

func New(cfg Config) (*Grid, error) {
	if !(cfg.LatBinSize > 0) || !(cfg.LngBinSize > 0) || math.IsInf(cfg.LatBinSize, 0) || math.IsInf(cfg.LngBinSize, 0) {
		return nil, fmt.Errorf("grid: bin sizes must be finite and > 0")
	}
	box := cfg.Box
	for _, v := range []float64{box.SW.Lat, box.SW.Long, box.NE.Lat, box.NE.Long} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("grid: bounding box corners must be finite")
		}
	}
	if box.LatHeight() < 0 || box.LongWidth() < 0 {
		return nil, fmt.Errorf("grid: bounding box corners are inverted")
	}

	rows, latBin0, err := span(box.SW.Lat, box.NE.Lat, box.LatHeight(), cfg.LatBinSize)
	if err != nil {
		return nil, fmt.Errorf("grid: latitude: %w", err)
	}
	cols, lngBin0, err := span(box.SW.Long, box.NE.Long, box.LongWidth(), cfg.LngBinSize)
	if err != nil {
		return nil, fmt.Errorf("grid: longitude: %w", err)
	}

	cells := rows * cols
	if cells > hardMaxCells || (cfg.MaxCells > 0 && cells > float64(cfg.MaxCells)) {
		limit := cfg.MaxCells
		if limit <= 0 || limit > hardMaxCells {
			limit = hardMaxCells
		}
		return nil, fmt.Errorf("grid: %gx%g cells exceeds limit of %d", rows, cols, limit)
	}

	return &Grid{
		cfg:     cfg,
		rows:    int(rows),
		cols:    int(cols),
		latBin0: int(latBin0),
		lngBin0: int(lngBin0),
		cells:   make([]Cell, int(rows)*int(cols)),
	}, nil
}

// span returns the number of bins needed between lo and hi, and the absolute
// bin of lo. The count covers both ceil(width/size)+1 and every bin a point
// in [lo, hi] can floor into, which differ under rounding.
func span(lo, hi, width, size float64) (n, bin0 float64, err error) {
	bin0 = math.Floor(lo / size)
	binN := math.Floor(hi / size)
	if math.Abs(bin0) > maxBinIndex || math.Abs(binN) > maxBinIndex {
		return 0, 0, fmt.Errorf("bin size %g too small", size)
	}
	n = math.Max(math.Ceil(width/size)+1, binN-bin0+1)
	if math.IsInf(n, 0) || math.IsNaN(n) || n > hardMaxCells {
		return 0, 0, fmt.Errorf("bin size %g too small", size)
	}
	return n, bin0, nil
}

func binIndex(v, size float64) int {
	return int(math.Floor(v / size))
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }

// Total is the number of fixes accepted since the grid was created.
func (g *Grid) Total() int { return g.total }

// Contains reports whether p lies inside the bounding box.
func (g *Grid) Contains(p geo.Latlong) bool {
	return g.cfg.Box.Contains(p)
}

// Index returns the row/column of the bin holding p.
func (g *Grid) Index(p geo.Latlong) (row, col int, ok bool) {
	if !g.Contains(p) {
		return 0, 0, false
	}
	row = binIndex(p.Lat, g.cfg.LatBinSize) - g.latBin0
	col = binIndex(p.Long, g.cfg.LngBinSize) - g.lngBin0
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return 0, 0, false
	}
	return row, col, true
}

// Add counts p in its bin. It returns false, leaving the grid untouched, when
// p is outside the bounding box.
func (g *Grid) Add(p geo.Latlong) bool {
	row, col, ok := g.Index(p)
	if !ok {
		return false
	}
	c := &g.cells[row*g.cols+col]
	c.Count++
	c.Set = true
	g.total++
	return true
}

func (g *Grid) Cell(row, col int) Cell {
	return g.cells[row*g.cols+col]
}

// BinCoordinate returns the absolute degrees of the lower-left corner of a
// bin.
func (g *Grid) BinCoordinate(row, col int) (lat, lng float64) {
	return float64(row+g.latBin0) * g.cfg.LatBinSize, float64(col+g.lngBin0) * g.cfg.LngBinSize
}
