package ansys

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/mshio/mesh"
)

// Helper function to create temporary test files
func createTempMshFile(t *testing.T, content []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.msh")
	if err := os.WriteFile(tmpFile, content, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

func TestReadASCIIPointsAndCells(t *testing.T) {
	content := `(1 "tet mesh")
(2 3)
(0 "comment record")
(10 (0 1 4 0))
(10 (1 1 4 1 3)(
0.0 0.0 0.0
1.0 0.0 0.0
0.0 1.0 0.0
0.0 0.0 1.0
))
(12 (0 1 1 0))
(12 (1 1 1 1 2)(
1 2 3 4
))
`
	tmpFile := createTempMshFile(t, []byte(content))

	m, err := ReadMsh(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumPoints())
	assert.Equal(t, []float64{0, 1, 0}, m.Points[2])
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, m.Cells[mesh.Tetra])
}

func TestReadPointZoneContiguity(t *testing.T) {
	header := `(10 (0 1 6 0))
`
	zone := func(first, last string, coords string) string {
		return "(10 (1 " + first + " " + last + " 1 2)(\n" + coords + "))\n"
	}

	t.Run("Contiguous", func(t *testing.T) {
		content := header +
			zone("1", "2", "0.0 0.0\n1.0 0.0\n") +
			zone("3", "4", "2.0 0.0\n3.0 0.0\n")
		m, err := Read(strings.NewReader(content))
		require.NoError(t, err)
		assert.Equal(t, 4, m.NumPoints())
		assert.Equal(t, []float64{3, 0}, m.Points[3])
	})

	t.Run("Gap", func(t *testing.T) {
		content := header +
			zone("1", "2", "0.0 0.0\n1.0 0.0\n") +
			zone("4", "5", "2.0 0.0\n3.0 0.0\n")
		_, err := Read(strings.NewReader(content))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFormat)
	})
}

func TestReadIndexRebasing(t *testing.T) {
	// First file-native point index is 5; output indexing starts at 0.
	content := `(10 (1 5 7 1 3)(
0.0 0.0 0.0
1.0 0.0 0.0
0.0 1.0 0.0
))
(12 (1 1 1 1 1)(
5 6 7
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumPoints())
	assert.Equal(t, [][]int{{0, 1, 2}}, m.Cells[mesh.Triangle])
}

func TestReadBinaryPointsMatchASCII(t *testing.T) {
	coords := []float64{0, 0, 0, 1.5, 0, 0, 0, 2.5, 0, 0, 0, 3.5}

	ascii := `(10 (1 1 4 1 3)(
0.0 0.0 0.0
1.5 0.0 0.0
0.0 2.5 0.0
0.0 0.0 3.5
))
`
	var bin bytes.Buffer
	bin.WriteString("(3010 (1 1 4 1 3)(\n")
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, coords))
	bin.WriteString(")\nEnd of Binary Section 3010)\n")

	ma, err := Read(strings.NewReader(ascii))
	require.NoError(t, err)
	mb, err := Read(bytes.NewReader(bin.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, ma.Points, mb.Points)
}

func TestReadBinaryPointsFloat32(t *testing.T) {
	coords := []float32{0, 0, 1, 0, 0, 1}

	var bin bytes.Buffer
	bin.WriteString("(2010 (1 1 3 1 2)(\n")
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, coords))
	bin.WriteString(")\nEnd of Binary Section 2010)\n")

	m, err := Read(bytes.NewReader(bin.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {0, 1}}, m.Points)
}

func TestReadBinaryCells(t *testing.T) {
	var bin bytes.Buffer
	bin.WriteString("(10 (1 1 5 1 3)(\n")
	bin.WriteString("0 0 0\n1 0 0\n0 1 0\n0 0 1\n1 1 1\n")
	bin.WriteString("))\n")
	bin.WriteString("(2012 (1 1 2 1 2)(\n")
	conn := []int32{1, 2, 3, 4, 2, 3, 4, 5}
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, conn))
	bin.WriteString("))\n")

	m, err := Read(bytes.NewReader(bin.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2, 3}, {1, 2, 3, 4}}, m.Cells[mesh.Tetra])
}

func TestReadBinaryMixedCellsFatal(t *testing.T) {
	content := "(2012 (1 1 2 1 0)(\n"
	_, err := Read(strings.NewReader(content))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReadASCIIMixedCellsSkipped(t *testing.T) {
	// Mixed volume cell zones are unsupported but recoverable.
	content := `(10 (1 1 3 1 2)(
0.0 0.0
1.0 0.0
0.0 1.0
))
(12 (1 1 1 1 0)(
1 1 2 3
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumPoints())
	assert.Equal(t, 0, m.NumCells())
}

func TestReadMixedFaceZone(t *testing.T) {
	content := `(13 (1 1 2 3 0)(
3 1 2 3 10 11
2 4 5 12 13
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 2, 3}}, m.Cells[mesh.Triangle])
	assert.Equal(t, [][]int{{4, 5}}, m.Cells[mesh.Line])
}

func TestReadFaceZoneDropsAdjacency(t *testing.T) {
	// Fixed-type face rows trail two adjacent-cell ids.
	content := `(13 (2 1 2 3 3)(
1 2 3 a b
2 3 4 b c
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}}, m.Cells[mesh.Triangle])
}

func TestReadFaceZonesMerge(t *testing.T) {
	content := `(13 (2 1 1 3 3)(
1 2 3 a b
))
(13 (3 2 2 3 3)(
4 5 6 b c
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}}, m.Cells[mesh.Triangle])
}

func TestReadBinaryFaceZone(t *testing.T) {
	var bin bytes.Buffer
	bin.WriteString("(3013 (2 1 2 3 2)(\n")
	rows := []int64{1, 2, 16, 17, 2, 3, 17, 18} // line faces: n0 n1 cr cl
	require.NoError(t, binary.Write(&bin, binary.LittleEndian, rows))
	bin.WriteString("))\n")

	m, err := Read(bytes.NewReader(bin.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {2, 3}}, m.Cells[mesh.Line])
}

func TestReadUnknownTagSkipped(t *testing.T) {
	content := `(10 (1 1 2 1 2)(
0.0 0.0
1.0 0.0
))
(39 (1 wall)(
1 2 3
))
(10 (2 3 4 1 2)(
2.0 0.0
3.0 0.0
))
`
	m, err := Read(strings.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, 4, m.NumPoints())
	assert.Equal(t, []float64{2, 0}, m.Points[2])
	assert.Equal(t, []float64{3, 0}, m.Points[3])
}

func TestReadMalformedHeaderFatal(t *testing.T) {
	for name, content := range map[string]string{
		"NotARecord":   "nonsense\n",
		"ShortZone":    "(10 (1 1)(\n",
		"BadHexField":  "(10 (1 zz 4 1 3)(\n",
		"BadElemType":  "(12 (1 1 1 1 9)(\n1 2 3\n))\n",
		"ShortPointRow": `(10 (1 1 1 1 3)(
0.0 0.0
))
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestReadTruncatedBinaryFatal(t *testing.T) {
	var bin bytes.Buffer
	bin.WriteString("(3010 (1 1 4 1 3)(\n")
	bin.Write(make([]byte, 17)) // far short of 4*3*8 bytes
	_, err := Read(bytes.NewReader(bin.Bytes()))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
}
