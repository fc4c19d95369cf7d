// Package npy reads and writes NumPy .npy files.
//
// Encoding and decoding go through github.com/kshedden/gonpy; this package
// narrows it to the arrays swapsort exchanges with NumPy tooling (C-ordered
// float32, float64, uint16 or uint8) and holds values as float64 in memory
// regardless of the on-disk type.
package npy

import (
	"bufio"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/kshedden/gonpy"

	"github.com/matzehuels/swapsort/pkg/errors"
)

// DType is a NumPy type descriptor.
type DType string

// Supported descriptors.
const (
	Float32 DType = "<f4"
	Float64 DType = "<f8"
	Uint16  DType = "<u2"
	Uint8   DType = "|u1"
)

// parseDType maps a descriptor as gonpy reports it, with or without the
// byte-order character, to a supported DType.
func parseDType(s string) (DType, bool) {
	switch strings.TrimLeft(s, "<>|=") {
	case "f4":
		return Float32, true
	case "f8":
		return Float64, true
	case "u2":
		return Uint16, true
	case "u1":
		return Uint8, true
	}
	return "", false
}

// Array is a dense C-ordered n-dimensional array.
type Array struct {
	DType DType
	Shape []int
	Data  []float64
}

// Len returns the number of elements implied by Shape.
func (a *Array) Len() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Read decodes one .npy stream.
func Read(r io.Reader) (*Array, error) {
	rdr, err := gonpy.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read npy header")
	}
	if rdr.ColumnMajor {
		return nil, errors.New(errors.ErrCodeUnsupported, "fortran-ordered arrays are not supported")
	}
	dt, ok := parseDType(rdr.Dtype)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "npy dtype %q is not supported", rdr.Dtype)
	}

	a := &Array{DType: dt, Shape: append([]int(nil), rdr.Shape...)}
	switch dt {
	case Float32:
		var v []float32
		v, err = rdr.GetFloat32()
		a.Data = widen(v)
	case Float64:
		a.Data, err = rdr.GetFloat64()
	case Uint16:
		var v []uint16
		v, err = rdr.GetUint16()
		a.Data = widen(v)
	default:
		var v []uint8
		v, err = rdr.GetUint8()
		a.Data = widen(v)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read npy data")
	}
	return a, nil
}

func widen[T float32 | uint16 | uint8](v []T) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// narrow converts data to an unsigned integer type, rejecting values that
// do not round into [0, maxV].
func narrow[T uint16 | uint8](data []float64, maxV float64) ([]T, error) {
	out := make([]T, len(data))
	for i, v := range data {
		r := math.Round(v)
		if r < 0 || r > maxV {
			return nil, errors.New(errors.ErrCodeInvalidInput, "value %v at %d does not fit %T", v, i, out[0])
		}
		out[i] = T(r)
	}
	return out, nil
}

// nopCloser keeps gonpy from closing a writer it does not own.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Write encodes a as a .npy stream.
func Write(w io.Writer, a *Array) error {
	if _, ok := parseDType(string(a.DType)); !ok {
		return errors.New(errors.ErrCodeUnsupported, "npy dtype %q is not supported", a.DType)
	}
	if len(a.Data) != a.Len() {
		return errors.New(errors.ErrCodeInvalidShape, "array holds %d values, shape %v needs %d", len(a.Data), a.Shape, a.Len())
	}

	wtr, err := gonpy.NewWriter(nopCloser{w})
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create npy writer")
	}
	wtr.Shape = append([]int(nil), a.Shape...)

	switch a.DType {
	case Float32:
		v := make([]float32, len(a.Data))
		for i, x := range a.Data {
			v[i] = float32(x)
		}
		err = wtr.WriteFloat32(v)
	case Float64:
		err = wtr.WriteFloat64(a.Data)
	case Uint16:
		v, nerr := narrow[uint16](a.Data, math.MaxUint16)
		if nerr != nil {
			return nerr
		}
		err = wtr.WriteUint16(v)
	case Uint8:
		v, nerr := narrow[uint8](a.Data, math.MaxUint8)
		if nerr != nil {
			return nerr
		}
		err = wtr.WriteUint8(v)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write npy data")
	}
	return nil
}

// Load reads the .npy file at path.
func Load(path string) (*Array, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()

	a, err := Read(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "load %s", path)
	}
	return a, nil
}

// Save writes a to path. The file is written next to its destination and
// renamed into place, so readers never observe a partial array.
func Save(path string, a *Array) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, a); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "rename into %s", path)
	}
	return nil
}
