// Package grid holds the read-only two-dimensional input of a reduction.
//
// Rows may have different lengths. A Grid never changes after construction
// and is safe to share between goroutines without synchronization.
package grid

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeebo/xxh3"

	"github.com/ib-77/gridsum/pkg/types"
)

// Grid is an immutable sequence of float64 rows.
type Grid struct {
	rows [][]float64
}

// New wraps rows without copying them. The caller keeps ownership and must
// not modify rows while the Grid is in use. A nil row is an absent row and is
// rejected; an empty row is fine.
func New(rows [][]float64) (*Grid, error) {
	for i, r := range rows {
		if r == nil {
			return nil, fmt.Errorf("%w: row %d is absent", types.ErrInvalidArgument, i)
		}
	}
	return &Grid{rows: rows}, nil
}

// MustNew is New that panics on error. Intended for literals in tests and
// examples.
func MustNew(rows [][]float64) *Grid {
	g, err := New(rows)
	if err != nil {
		panic(err)
	}
	return g
}

// FromRows copies rows into a new Grid.
func FromRows(rows [][]float64) (*Grid, error) {
	cp := make([][]float64, len(rows))
	for i, r := range rows {
		if r == nil {
			return nil, fmt.Errorf("%w: row %d is absent", types.ErrInvalidArgument, i)
		}
		cp[i] = append(make([]float64, 0, len(r)), r...)
	}
	return &Grid{rows: cp}, nil
}

// Generate builds a rows x cols grid whose cells are fn(row, col).
func Generate(rows, cols int, fn func(r, c int) float64) (*Grid, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", types.ErrInvalidArgument, rows, cols)
	}
	data := make([][]float64, rows)
	for r := range data {
		data[r] = make([]float64, cols)
		for c := range data[r] {
			data[r][c] = fn(r, c)
		}
	}
	return &Grid{rows: data}, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int {
	return len(g.rows)
}

// Row returns row i. The slice aliases the grid's storage and must be
// treated as read-only.
func (g *Grid) Row(i int) []float64 {
	return g.rows[i]
}

// Len returns the number of elements over all rows.
func (g *Grid) Len() int {
	n := 0
	for _, r := range g.rows {
		n += len(r)
	}
	return n
}

// Sequential sums every element in row order on the calling goroutine.
func Sequential(g *Grid) float64 {
	var sum float64
	for _, r := range g.rows {
		for _, e := range r {
			sum += e
		}
	}
	return sum
}

// Fingerprint returns a content hash of g. Grids with the same rows (including
// row boundaries) have the same fingerprint.
func Fingerprint(g *Grid) uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, r := range g.rows {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(r)))
		_, _ = h.Write(buf[:])
		for _, e := range r {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e))
			_, _ = h.Write(buf[:])
		}
	}
	return h.Sum64()
}
