package mesh

import (
	"fmt"
	"sort"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/floats"
)

// ElementType represents different element types
type ElementType int

const (
	Line ElementType = iota
	Triangle
	Quad
	Tetra
	Hexa
	Pyra
	Wedge
)

func (e ElementType) String() string {
	return [...]string{"Line", "Triangle", "Quad", "Tetra", "Hexa", "Pyra", "Wedge"}[e]
}

// NumNodes returns the fixed node count (arity) for the element type.
func (e ElementType) NumNodes() int {
	return [...]int{2, 3, 4, 4, 8, 5, 6}[e]
}

// ElementTypes lists all element types in a fixed, deterministic order.
func ElementTypes() []ElementType {
	return []ElementType{Line, Triangle, Quad, Tetra, Hexa, Pyra, Wedge}
}

// Mesh is an unstructured mesh: a flat point array plus connectivity
// grouped by element type. Point indices in Cells are 0-based into Points.
type Mesh struct {
	Points [][]float64             // Point coordinates [npoints][2 or 3]
	Cells  map[ElementType][][]int // Connectivity per element type [ncells][arity]

	// Auxiliary data carried alongside the mesh. The msh codec passes
	// these through untouched.
	PointData map[string][]float64
	CellData  map[string][]float64
	FieldData map[string]float64
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{
		Cells:     make(map[ElementType][][]int),
		PointData: make(map[string][]float64),
		CellData:  make(map[string][]float64),
		FieldData: make(map[string]float64),
	}
}

func (m *Mesh) NumPoints() int {
	return len(m.Points)
}

// NumCells returns the total cell count across all element types.
func (m *Mesh) NumCells() int {
	var n int
	for _, group := range m.Cells {
		n += len(group)
	}
	return n
}

// Dimension is 2 when every point's third coordinate is exactly zero
// (or absent), else 3.
func (m *Mesh) Dimension() int {
	for _, p := range m.Points {
		if len(p) > 2 && p[2] != 0.0 {
			return 3
		}
	}
	return 2
}

// BoundingBox returns per-axis minima and maxima over all points.
// Both slices are empty for a mesh without points.
func (m *Mesh) BoundingBox() (min, max []float64) {
	if len(m.Points) == 0 {
		return nil, nil
	}
	dim := len(m.Points[0])
	axis := make([]float64, len(m.Points))
	for d := 0; d < dim; d++ {
		for i, p := range m.Points {
			axis[i] = p[d]
		}
		min = append(min, floats.Min(axis))
		max = append(max, floats.Max(axis))
	}
	return min, max
}

// VertexValence returns, per point, the number of cells referencing it,
// computable from the sparse point-to-cell incidence matrix.
func (m *Mesh) VertexValence() []int {
	np := m.NumPoints()
	nc := m.NumCells()
	if np == 0 || nc == 0 {
		return make([]int, np)
	}
	incidence := sparse.NewDOK(np, nc)
	col := 0
	for _, et := range ElementTypes() {
		for _, cell := range m.Cells[et] {
			for _, v := range cell {
				if v >= 0 && v < np {
					incidence.Set(v, col, 1)
				}
			}
			col++
		}
	}
	csr := incidence.ToCSR()
	valence := make([]int, np)
	for i := range valence {
		valence[i] = csr.RowNNZ(i)
	}
	return valence
}

// Summary captures the mesh statistics in a serializable form.
type Summary struct {
	NumPoints  int            `yaml:"NumPoints"`
	NumCells   int            `yaml:"NumCells"`
	Dimension  int            `yaml:"Dimension"`
	CellCounts map[string]int `yaml:"CellCounts"`
	BoundsMin  []float64      `yaml:"BoundsMin,omitempty"`
	BoundsMax  []float64      `yaml:"BoundsMax,omitempty"`
}

func (m *Mesh) Summary() Summary {
	counts := make(map[string]int)
	for et, group := range m.Cells {
		if len(group) > 0 {
			counts[et.String()] = len(group)
		}
	}
	min, max := m.BoundingBox()
	return Summary{
		NumPoints:  m.NumPoints(),
		NumCells:   m.NumCells(),
		Dimension:  m.Dimension(),
		CellCounts: counts,
		BoundsMin:  min,
		BoundsMax:  max,
	}
}

// PrintStatistics prints mesh statistics
func (m *Mesh) PrintStatistics() {
	fmt.Printf("Mesh Statistics:\n")
	fmt.Printf("  Points: %d\n", m.NumPoints())
	fmt.Printf("  Cells: %d\n", m.NumCells())
	fmt.Printf("  Dimension: %d\n", m.Dimension())

	types := make([]ElementType, 0, len(m.Cells))
	for et := range m.Cells {
		types = append(types, et)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Printf("  Cell types:\n")
	for _, et := range types {
		fmt.Printf("    %s: %d\n", et, len(m.Cells[et]))
	}

	if min, max := m.BoundingBox(); len(min) > 0 {
		fmt.Printf("  Bounding box:\n")
		names := []string{"X", "Y", "Z"}
		for d := range min {
			fmt.Printf("    %sMin/%sMax = %5.3f, %5.3f\n", names[d], names[d], min[d], max[d])
		}
	}
}
