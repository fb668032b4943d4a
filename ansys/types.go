package ansys

import (
	"errors"

	"github.com/notargets/mshio/mesh"
)

// Errors returned by the codec. Malformed input or an unwritable mesh
// aborts the whole call; there is no partial result to salvage.
var (
	ErrFormat          = errors.New("malformed msh input")
	ErrUnsupportedType = errors.New("unsupported element type")
)

// encoding selects how a zone's payload is laid out, derived from the
// leading digit of the section tag (10 is ASCII, 2010 single precision
// binary, 3010 double precision binary, same scheme for 12 and 13).
type encoding int

const (
	encASCII encoding = iota
	encBinary32
	encBinary64
)

// itemSize is the byte width of one binary value.
func (e encoding) itemSize() int {
	if e == encBinary32 {
		return 4
	}
	return 8
}

// family is the tag prefix naming the encoding in binary section
// terminators ("End of Binary Section 3010)").
func (e encoding) family() string {
	if e == encBinary32 {
		return "20"
	}
	return "30"
}

// mixedElement marks a zone whose rows each carry their own type.
const mixedElement = 0

// cellElementTable maps the element-type field of volume cell sections
// (tags 12/2012/3012) to element types.
var cellElementTable = map[int]mesh.ElementType{
	1: mesh.Triangle,
	2: mesh.Tetra,
	3: mesh.Quad,
	4: mesh.Hexa,
	5: mesh.Pyra,
	6: mesh.Wedge,
}

// faceElementTable maps the element-type field of face sections
// (tags 13/2013/3013); the codomain differs from the cell table.
var faceElementTable = map[int]mesh.ElementType{
	2: mesh.Line,
	3: mesh.Triangle,
	4: mesh.Quad,
}

// cellElementCode is the writer-side inverse of cellElementTable. Face
// types (Line) and mixed zones are not serializable.
var cellElementCode = map[mesh.ElementType]int{
	mesh.Triangle: 1,
	mesh.Tetra:    2,
	mesh.Quad:     3,
	mesh.Hexa:     4,
	mesh.Pyra:     5,
	mesh.Wedge:    6,
}
