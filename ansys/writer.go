package ansys

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/notargets/mshio/mesh"
)

// WriteMsh writes a mesh as an Ansys msh file. The version string is
// embedded verbatim in the header record.
func WriteMsh(filename string, m *mesh.Mesh, version string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return Write(file, m, version)
}

// Write serializes a mesh to the ASCII subset of the msh format: header,
// dimensionality, count declarations, point block, one cell block per
// element type. Only volume cell types are supported; Line or mixed
// groups cannot be expressed and abort the encode.
func Write(w io.Writer, m *mesh.Mesh, version string) error {
	for et := range m.Cells {
		if _, ok := cellElementCode[et]; !ok {
			return fmt.Errorf("%w: cannot write %s cells", ErrUnsupportedType, et)
		}
	}

	bw := bufio.NewWriter(w)

	// Header and dimensionality.
	fmt.Fprintf(bw, "(1 \"%s\")\n", version)
	fmt.Fprintf(bw, "(2 %d)\n", m.Dimension())

	// Total counts; node and cell numbering starts at 1.
	const firstNodeIndex = 1
	fmt.Fprintf(bw, "(10 (0 %x %x 0))\n", firstNodeIndex, m.NumPoints())
	fmt.Fprintf(bw, "(12 (0 1 %x 0))\n", m.NumCells())

	// Point block.
	dim := 3
	if len(m.Points) > 0 {
		dim = len(m.Points[0])
	}
	fmt.Fprintf(bw, "(10 (1 %x %x 1 %x))(\n", firstNodeIndex, m.NumPoints(), dim)
	for _, p := range m.Points {
		for d, c := range p {
			if d > 0 {
				fmt.Fprint(bw, " ")
			}
			fmt.Fprintf(bw, "%.15e", c)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprint(bw, "))\n")

	// Cell blocks, one per element type, with contiguous index ranges.
	firstIndex := 1
	for _, et := range mesh.ElementTypes() {
		group := m.Cells[et]
		if len(group) == 0 {
			continue
		}
		lastIndex := firstIndex + len(group) - 1
		fmt.Fprintf(bw, "(12 (1 %x %x 1 %d)(\n", firstIndex, lastIndex, cellElementCode[et])
		for _, cell := range group {
			for i, v := range cell {
				if i > 0 {
					fmt.Fprint(bw, " ")
				}
				fmt.Fprintf(bw, "%x", v+firstNodeIndex)
			}
			fmt.Fprintln(bw)
		}
		fmt.Fprint(bw, "))\n")
		firstIndex = lastIndex + 1
	}

	return bw.Flush()
}
