package ansys

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/mshio/mesh"
)

var (
	sectionTagRe = regexp.MustCompile(`^\s*\(\s*([0-9]+)`)
	zoneHeaderRe = regexp.MustCompile(`^\s*\(\s*[0-9]+\s*\(([^)]*)\)`)
	// A line ending in "))" closes a skipped mixed cell section.
	doubleCloseRe = regexp.MustCompile(`\)\s*\)\s*$`)
)

// zone describes one point/cell/face section header: zone id, inclusive
// 1-based index range, a type flag, and an element-type (or, for point
// zones, coordinate dimension) field. All fields are hex in the file.
type zone struct {
	id    int
	first int
	last  int
	flag  int
	elem  int
}

func (z zone) count() int {
	return z.last - z.first + 1
}

func parseZone(line string) (zone, error) {
	m := zoneHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return zone{}, fmt.Errorf("%w: bad zone header %q", ErrFormat, strings.TrimSpace(line))
	}
	fields := strings.Fields(m[1])
	if len(fields) < 5 {
		return zone{}, fmt.Errorf("%w: zone header %q has %d fields, need 5",
			ErrFormat, strings.TrimSpace(line), len(fields))
	}
	vals := make([]int, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseInt(fields[i], 16, 64)
		if err != nil {
			return zone{}, fmt.Errorf("%w: zone field %q is not hex", ErrFormat, fields[i])
		}
		vals[i] = int(v)
	}
	return zone{id: vals[0], first: vals[1], last: vals[2], flag: vals[3], elem: vals[4]}, nil
}

// selfContained reports whether a section header line balances its own
// parens, meaning it is a bare count declaration with no body.
func selfContained(line string) bool {
	return strings.Count(line, "(") == strings.Count(line, ")")
}

func openDepth(line string) int {
	return strings.Count(line, "(") - strings.Count(line, ")")
}

// mshReader accumulates decode state for a single pass over one stream.
type mshReader struct {
	s *sectionScanner

	pointChunks [][][]float64
	cells       map[mesh.ElementType][][]int

	// File-native point numbering, tracked to enforce contiguity of
	// successive point zones and to rebase connectivity afterwards.
	firstPointIndex int
	lastPointIndex  int
}

// ReadMsh reads an Ansys msh file
func ReadMsh(filename string) (*mesh.Mesh, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

// Read decodes an Ansys msh stream into a mesh. The stream is consumed in
// a single forward pass; any format error aborts the decode with no
// usable result.
func Read(r io.Reader) (*mesh.Mesh, error) {
	rd := &mshReader{
		s:               newSectionScanner(r),
		cells:           make(map[mesh.ElementType][][]int),
		firstPointIndex: -1,
		lastPointIndex:  -1,
	}

	for {
		line, err := rd.s.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		m := sectionTagRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("%w: expected section header, got %q",
				ErrFormat, strings.TrimSpace(line))
		}

		switch tag := m[1]; tag {
		case "0", "1", "2":
			// Comment, header string, dimensionality: self-describing.
			err = rd.s.skipBalanced(openDepth(line))

		case "10":
			err = rd.readPointsASCII(line)

		case "2010":
			err = rd.readPointsBinary(line, encBinary32)
		case "3010":
			err = rd.readPointsBinary(line, encBinary64)

		case "12":
			err = rd.readCellsASCII(line)

		case "2012":
			err = rd.readCellsBinary(line, encBinary32)
		case "3012":
			err = rd.readCellsBinary(line, encBinary64)

		case "13":
			err = rd.readFacesASCII(line)

		case "2013":
			err = rd.readFacesBinary(line, encBinary32)
		case "3013":
			err = rd.readFacesBinary(line, encBinary64)

		default:
			log.Warnf("ansys: unknown section tag %s, skipping", tag)
			err = rd.s.skipBalanced(openDepth(line))
		}
		if err != nil {
			return nil, err
		}
	}

	return rd.finalize()
}

// trackPointZone enforces that successive point zones tile the index
// space with no gap and records the very first index for rebasing.
func (rd *mshReader) trackPointZone(z zone) error {
	if rd.firstPointIndex < 0 {
		rd.firstPointIndex = z.first
	}
	if rd.lastPointIndex >= 0 && rd.lastPointIndex+1 != z.first {
		return fmt.Errorf("%w: point zone starts at %d, expected %d",
			ErrFormat, z.first, rd.lastPointIndex+1)
	}
	rd.lastPointIndex = z.last
	return nil
}

func (rd *mshReader) readPointsASCII(line string) error {
	// A self-contained line is merely a declaration of the total
	// point count.
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}
	if err = rd.trackPointZone(z); err != nil {
		return err
	}
	dim := z.elem

	// Skip ahead to the line that opens the data block (might be the
	// current line already).
	for !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if line, err = rd.s.readLine(); err != nil {
			return fmt.Errorf("%w: EOF before point data block", ErrFormat)
		}
	}

	pts := make([][]float64, z.count())
	for k := range pts {
		// Skip ahead to the next line with data.
		line = ""
		for strings.TrimSpace(line) == "" {
			if line, err = rd.s.readLine(); err != nil {
				return fmt.Errorf("%w: EOF inside point zone", ErrFormat)
			}
		}
		fields := strings.Fields(line)
		if len(fields) != dim {
			return fmt.Errorf("%w: point row has %d coordinates, expected %d",
				ErrFormat, len(fields), dim)
		}
		p := make([]float64, dim)
		for d, f := range fields {
			if p[d], err = strconv.ParseFloat(f, 64); err != nil {
				return fmt.Errorf("%w: bad coordinate %q", ErrFormat, f)
			}
		}
		pts[k] = p
	}
	rd.pointChunks = append(rd.pointChunks, pts)

	// Make sure the section is properly closed.
	return rd.s.skipBalanced(2)
}

func (rd *mshReader) readPointsBinary(line string, enc encoding) error {
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}
	if err = rd.trackPointZone(z); err != nil {
		return err
	}
	dim := z.elem

	// The binary payload opens at the next '(', which need not sit on a
	// line boundary.
	if !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if err = rd.s.skipTo('('); err != nil {
			return fmt.Errorf("%w: EOF before binary point data", ErrFormat)
		}
	}

	buf, err := rd.s.readExact(dim * enc.itemSize() * z.count())
	if err != nil {
		return fmt.Errorf("%w: truncated binary point zone: %v", ErrFormat, err)
	}
	pts := make([][]float64, z.count())
	br := bytes.NewReader(buf)
	for k := range pts {
		p := make([]float64, dim)
		if enc == encBinary32 {
			row := make([]float32, dim)
			binary.Read(br, binary.LittleEndian, &row)
			for d, v := range row {
				p[d] = float64(v)
			}
		} else {
			binary.Read(br, binary.LittleEndian, &p)
		}
		pts[k] = p
	}
	rd.pointChunks = append(rd.pointChunks, pts)

	if err = rd.s.skipTo(')'); err != nil {
		return fmt.Errorf("%w: EOF after binary point data", ErrFormat)
	}

	// The section runs on until its terminator line.
	terminator := fmt.Sprintf("End of Binary Section %s10)", enc.family())
	for {
		line, err = rd.s.readLine()
		if err != nil {
			return fmt.Errorf("%w: missing %q", ErrFormat, terminator)
		}
		if strings.TrimSpace(line) == terminator {
			return nil
		}
	}
}

func (rd *mshReader) readCellsASCII(line string) error {
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}

	if z.elem == mixedElement {
		log.Warnf("ansys: cannot deal with mixed cell zones, skipping")
		// Skip ahead to the next line with two closing brackets.
		for !doubleCloseRe.MatchString(line) {
			if line, err = rd.s.readLine(); err != nil {
				return fmt.Errorf("%w: EOF inside mixed cell zone", ErrFormat)
			}
		}
		return nil
	}

	et, ok := cellElementTable[z.elem]
	if !ok {
		return fmt.Errorf("%w: cell zone element type %d", ErrFormat, z.elem)
	}
	arity := et.NumNodes()

	if !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if err = rd.s.skipTo('('); err != nil {
			return fmt.Errorf("%w: EOF before cell data block", ErrFormat)
		}
	}

	data := make([][]int, z.count())
	for k := range data {
		if line, err = rd.s.readLine(); err != nil {
			return fmt.Errorf("%w: EOF inside cell zone", ErrFormat)
		}
		if data[k], err = parseHexRow(line, arity); err != nil {
			return err
		}
	}
	rd.cells[et] = append(rd.cells[et], data...)

	return rd.s.skipBalanced(2)
}

func (rd *mshReader) readCellsBinary(line string, enc encoding) error {
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}
	if z.elem == mixedElement {
		return fmt.Errorf("%w: mixed binary cell zone", ErrFormat)
	}
	et, ok := cellElementTable[z.elem]
	if !ok {
		return fmt.Errorf("%w: cell zone element type %d", ErrFormat, z.elem)
	}
	arity := et.NumNodes()

	if !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if err = rd.s.skipTo('('); err != nil {
			return fmt.Errorf("%w: EOF before binary cell data", ErrFormat)
		}
	}

	data, err := rd.readBinaryRows(z.count(), arity, enc)
	if err != nil {
		return fmt.Errorf("%w: truncated binary cell zone: %v", ErrFormat, err)
	}
	rd.cells[et] = append(rd.cells[et], data...)

	return rd.s.skipBalanced(2)
}

func (rd *mshReader) readFacesASCII(line string) error {
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}

	var et mesh.ElementType
	var arity int
	mixed := z.elem == mixedElement
	if !mixed {
		var ok bool
		if et, ok = faceElementTable[z.elem]; !ok {
			return fmt.Errorf("%w: face zone element type %d", ErrFormat, z.elem)
		}
		arity = et.NumNodes()
	}

	if !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if err = rd.s.skipTo('('); err != nil {
			return fmt.Errorf("%w: EOF before face data block", ErrFormat)
		}
	}

	data := make(map[mesh.ElementType][][]int)
	for k := 0; k < z.count(); k++ {
		if line, err = rd.s.readLine(); err != nil {
			return fmt.Errorf("%w: EOF inside face zone", ErrFormat)
		}
		fields := strings.Fields(line)

		rowType, rowArity := et, arity
		if mixed {
			// Each row carries its own face type ahead of the nodes:
			//   type v0 v1 ... cr cl
			if len(fields) == 0 {
				return fmt.Errorf("%w: empty face row", ErrFormat)
			}
			ft, err := strconv.ParseInt(fields[0], 16, 64)
			if err != nil || ft == mixedElement {
				return fmt.Errorf("%w: bad face row type %q", ErrFormat, fields[0])
			}
			var ok bool
			if rowType, ok = faceElementTable[int(ft)]; !ok {
				return fmt.Errorf("%w: face row element type %d", ErrFormat, ft)
			}
			rowArity = rowType.NumNodes()
			fields = fields[1:]
		}

		// Each row trails two adjacent-cell ids which are dropped.
		if len(fields) != rowArity+2 {
			return fmt.Errorf("%w: face row has %d fields, expected %d",
				ErrFormat, len(fields), rowArity+2)
		}
		nodes := make([]int, rowArity)
		for i := 0; i < rowArity; i++ {
			v, err := strconv.ParseInt(fields[i], 16, 64)
			if err != nil {
				return fmt.Errorf("%w: bad face node %q", ErrFormat, fields[i])
			}
			nodes[i] = int(v)
		}
		data[rowType] = append(data[rowType], nodes)
	}
	for key, rows := range data {
		rd.cells[key] = append(rd.cells[key], rows...)
	}

	return rd.s.skipBalanced(2)
}

func (rd *mshReader) readFacesBinary(line string, enc encoding) error {
	if selfContained(line) {
		return nil
	}
	z, err := parseZone(line)
	if err != nil {
		return err
	}
	if z.elem == mixedElement {
		return fmt.Errorf("%w: mixed binary face zone", ErrFormat)
	}
	et, ok := faceElementTable[z.elem]
	if !ok {
		return fmt.Errorf("%w: face zone element type %d", ErrFormat, z.elem)
	}
	arity := et.NumNodes()

	if !strings.HasSuffix(strings.TrimSpace(line), "(") {
		if err = rd.s.skipTo('('); err != nil {
			return fmt.Errorf("%w: EOF before binary face data", ErrFormat)
		}
	}

	// Rows carry arity+2 values; the trailing adjacent-cell ids are cut.
	data, err := rd.readBinaryRows(z.count(), arity+2, enc)
	if err != nil {
		return fmt.Errorf("%w: truncated binary face zone: %v", ErrFormat, err)
	}
	for k, row := range data {
		data[k] = row[:arity]
	}
	rd.cells[et] = append(rd.cells[et], data...)

	return rd.s.skipBalanced(2)
}

// readBinaryRows reads rows*cols fixed-width integers and reshapes them.
func (rd *mshReader) readBinaryRows(rows, cols int, enc encoding) ([][]int, error) {
	buf, err := rd.s.readExact(rows * cols * enc.itemSize())
	if err != nil {
		return nil, err
	}
	br := bytes.NewReader(buf)
	out := make([][]int, rows)
	for k := range out {
		row := make([]int, cols)
		if enc == encBinary32 {
			vals := make([]int32, cols)
			binary.Read(br, binary.LittleEndian, &vals)
			for i, v := range vals {
				row[i] = int(v)
			}
		} else {
			vals := make([]int64, cols)
			binary.Read(br, binary.LittleEndian, &vals)
			for i, v := range vals {
				row[i] = int(v)
			}
		}
		out[k] = row
	}
	return out, nil
}

func parseHexRow(line string, arity int) ([]int, error) {
	fields := strings.Fields(line)
	if len(fields) != arity {
		return nil, fmt.Errorf("%w: row has %d fields, expected %d",
			ErrFormat, len(fields), arity)
	}
	row := make([]int, arity)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad node index %q", ErrFormat, f)
		}
		row[i] = int(v)
	}
	return row, nil
}

// finalize concatenates the point chunks and rebases all connectivity to
// the 0-based output numbering.
func (rd *mshReader) finalize() (*mesh.Mesh, error) {
	m := mesh.NewMesh()
	for _, chunk := range rd.pointChunks {
		m.Points = append(m.Points, chunk...)
	}
	for et, group := range rd.cells {
		if rd.firstPointIndex > 0 {
			for _, row := range group {
				for i := range row {
					row[i] -= rd.firstPointIndex
				}
			}
		}
		m.Cells[et] = group
	}
	return m, nil
}
