package npy

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/swapsort/pkg/canvas"
	"github.com/matzehuels/swapsort/pkg/errors"
)

// numpyFile builds a stream the way numpy.save lays it out.
func numpyFile(t *testing.T, header string, data []byte) []byte {
	t.Helper()
	total := 10 + len(header) + 1
	header += strings.Repeat(" ", (64-total%64)%64) + "\n"
	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY\x01\x00")
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	buf.Write(data)
	return buf.Bytes()
}

func TestReadNumpyLayout(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data, math.Float32bits(1.5))
	binary.LittleEndian.PutUint32(data[4:], math.Float32bits(-2))

	raw := numpyFile(t, "{'descr': '<f4', 'fortran_order': False, 'shape': (2,), }", data)
	a, err := Read(bytes.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, Float32, a.DType)
	assert.Equal(t, []int{2}, a.Shape)
	assert.Equal(t, []float64{1.5, -2}, a.Data)
}

func TestWriteReadRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		dtype DType
		data  []float64
	}{
		{"float32", Float32, []float64{0, 0.25, -3.5, 1e6, 1, 2, 3, 4}},
		{"float64", Float64, []float64{math.Pi, -math.E, 0, 1, 2, 3, 4, 5}},
		{"uint16", Uint16, []float64{0, 1, 10496, 65535, 7, 8, 9, 10}},
		{"uint8", Uint8, []float64{0, 255, 128, 1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := &Array{DType: tt.dtype, Shape: []int{2, 1, 4}, Data: tt.data}
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, in))

			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x93NUMPY")))

			out, err := Read(&buf)
			require.NoError(t, err)
			assert.Equal(t, in.DType, out.DType)
			assert.Equal(t, in.Shape, out.Shape)
			assert.Equal(t, in.Data, out.Data)
		})
	}
}

func TestReadRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		code errors.Code
	}{
		{"bad magic", []byte("NOTNUMPYxx"), errors.ErrCodeInvalidFormat},
		{"fortran", numpyFile(t, "{'descr': '<f4', 'fortran_order': True, 'shape': (1,), }", make([]byte, 4)), errors.ErrCodeUnsupported},
		{"int32", numpyFile(t, "{'descr': '<i4', 'fortran_order': False, 'shape': (1,), }", make([]byte, 4)), errors.ErrCodeUnsupported},
		{"truncated", numpyFile(t, "{'descr': '<f8', 'fortran_order': False, 'shape': (4,), }", make([]byte, 8)), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(bytes.NewReader(tt.raw))
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestWriteRejectsUnknownDType(t *testing.T) {
	err := Write(&bytes.Buffer{}, &Array{DType: "<i4", Shape: []int{1}, Data: []float64{1}})
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestWriteRejectsOutOfRange(t *testing.T) {
	err := Write(&bytes.Buffer{}, &Array{DType: Uint16, Shape: []int{1}, Data: []float64{70000}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	err = Write(&bytes.Buffer{}, &Array{DType: Uint16, Shape: []int{2}, Data: []float64{1}})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidShape))
}

func TestSaveLoadCanvas(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.npy")

	pix := []float64{
		10496, 10496, 10496, 255, 0, 1, 2, 0,
		3, 4, 5, 255, 6, 7, 8, 255,
	}
	c, err := canvas.New(2, 2, canvas.Uint16, pix)
	require.NoError(t, err)
	require.NoError(t, SaveCanvas(path, c))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must not be left behind")

	got, err := LoadCanvas(path)
	require.NoError(t, err)
	assert.Equal(t, canvas.Uint16, got.Format)
	assert.Equal(t, 2, got.Width)
	assert.Equal(t, 2, got.Height)
	assert.Equal(t, pix, got.Pix)
}

func TestLoadCanvasErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCanvas(filepath.Join(dir, "missing.npy"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	flat := filepath.Join(dir, "flat.npy")
	require.NoError(t, Save(flat, &Array{DType: Float32, Shape: []int{4}, Data: []float64{1, 2, 3, 4}}))
	_, err = LoadCanvas(flat)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidShape))
}
