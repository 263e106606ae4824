// Package quantize implements the JSON-weights-to-little-endian-binary
// quantizer of spec.md §4.G: scale, round-half-to-even, range-check (an
// out-of-range value is an error, not clamped), and emit each layer's
// floats as fixed-width little-endian integers, with optional factorized
// feature-transformer fusion.
package quantize

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

// IntWidth is the integer width a layer's values are emitted as.
type IntWidth int

const (
	Int8  IntWidth = 1
	Int16 IntWidth = 2
	Int32 IntWidth = 4
)

// Range returns the inclusive clamp bounds for w.
func (w IntWidth) Range() (min, max int64) {
	switch w {
	case Int8:
		return math.MinInt8, math.MaxInt8
	case Int16:
		return math.MinInt16, math.MaxInt16
	case Int32:
		return math.MinInt32, math.MaxInt32
	default:
		return 0, 0
	}
}

// Tensor is a parsed JSON weight/bias entry: Shape is either [n] (a bias
// vector) or [rows, cols] (a row-major weight matrix); Data is always
// flattened row-major.
type Tensor struct {
	Shape []int
	Data  []float64
}

// Params is a parsed weights JSON document, keyed by layer name.
type Params map[string]Tensor

// ParseParams decodes a weights JSON document (spec.md §6: "an object
// mapping layer name to a nested list of floats").
func ParseParams(raw []byte) (Params, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("quantize: parse params: %w", err)
	}
	out := make(Params, len(m))
	for name, v := range m {
		t, err := parseTensor(v)
		if err != nil {
			return nil, fmt.Errorf("quantize: layer %q: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

func parseTensor(raw json.RawMessage) (Tensor, error) {
	var generic []interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Tensor{}, err
	}
	if len(generic) == 0 {
		return Tensor{Shape: []int{0}}, nil
	}
	if _, ok := generic[0].([]interface{}); ok {
		rows := len(generic)
		cols := len(generic[0].([]interface{}))
		data := make([]float64, 0, rows*cols)
		for _, rowRaw := range generic {
			row, ok := rowRaw.([]interface{})
			if !ok || len(row) != cols {
				return Tensor{}, ErrRaggedTensor
			}
			for _, x := range row {
				f, ok := x.(float64)
				if !ok {
					return Tensor{}, ErrNonNumericElement
				}
				data = append(data, f)
			}
		}
		return Tensor{Shape: []int{rows, cols}, Data: data}, nil
	}

	data := make([]float64, len(generic))
	for i, x := range generic {
		f, ok := x.(float64)
		if !ok {
			return Tensor{}, ErrNonNumericElement
		}
		data[i] = f
	}
	return Tensor{Shape: []int{len(generic)}, Data: data}, nil
}

// HeaderField names one u32 emitted in the output header, taken from one
// axis of a parsed layer's shape (spec.md §4.G: "header of u32
// dimensions... exact triple depends on architecture variant").
type HeaderField struct {
	Param string
	Axis  int
}

// LayerSpec is one entry in a fixed emission order: a layer's JSON key,
// the scale factor applied before rounding, and its output integer
// width (spec.md §4.G).
type LayerSpec struct {
	Name  string
	Scale float64
	Width IntWidth
}

// FusionSpec describes an optional factorized feature-transformer
// fusion: Secondary is broadcast-added into Primary before quantization
// (spec.md §4.G).
type FusionSpec struct {
	PrimaryWeight   string
	PrimaryBias     string
	SecondaryWeight string
	SecondaryBias   string
}

// Architecture is a pluggable quantizer variant: header layout, ordered
// layers, and an optional fusion step.
type Architecture struct {
	Name   string
	Header []HeaderField
	Layers []LayerSpec
	Fusion *FusionSpec
}

// Convert quantizes params under arch, returning the little-endian
// binary blob of spec.md §4.G. It never mutates params.
func Convert(arch Architecture, params Params) ([]byte, error) {
	p := params
	if arch.Fusion != nil {
		fused, err := applyFusion(arch.Fusion, p)
		if err != nil {
			return nil, err
		}
		if fused != nil {
			p = fused
		}
	}

	var buf bytes.Buffer
	for _, hf := range arch.Header {
		t, ok := p[hf.Param]
		if !ok {
			return nil, fmt.Errorf("quantize: header references missing layer %q", hf.Param)
		}
		if hf.Axis < 0 || hf.Axis >= len(t.Shape) {
			return nil, fmt.Errorf("quantize: header axis %d out of range for layer %q", hf.Axis, hf.Param)
		}
		if err := binary.Write(&buf, binary.LittleEndian, uint32(t.Shape[hf.Axis])); err != nil {
			return nil, err
		}
	}

	for _, layer := range arch.Layers {
		t, ok := p[layer.Name]
		if !ok {
			return nil, fmt.Errorf("quantize: missing layer %q", layer.Name)
		}
		if err := emitLayer(&buf, t, layer); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// applyFusion returns a copy of params with fs's primary weight/bias
// broadcast-fused with the secondary tables, or nil if neither secondary
// table is present (fusion is optional per spec.md §4.G).
func applyFusion(fs *FusionSpec, params Params) (Params, error) {
	secW, hasW := params[fs.SecondaryWeight]
	secB, hasB := params[fs.SecondaryBias]
	if !hasW && !hasB {
		return nil, nil
	}

	out := make(Params, len(params))
	for k, v := range params {
		out[k] = v
	}

	if hasW {
		primary, ok := out[fs.PrimaryWeight]
		if !ok {
			return nil, fmt.Errorf("quantize: fusion primary weight %q missing", fs.PrimaryWeight)
		}
		fused, err := broadcastAdd(primary, secW)
		if err != nil {
			return nil, fmt.Errorf("quantize: fusing %q into %q: %w", fs.SecondaryWeight, fs.PrimaryWeight, err)
		}
		out[fs.PrimaryWeight] = fused
	}
	if hasB {
		primary, ok := out[fs.PrimaryBias]
		if !ok {
			return nil, fmt.Errorf("quantize: fusion primary bias %q missing", fs.PrimaryBias)
		}
		fused, err := broadcastAdd(primary, secB)
		if err != nil {
			return nil, fmt.Errorf("quantize: fusing %q into %q: %w", fs.SecondaryBias, fs.PrimaryBias, err)
		}
		out[fs.PrimaryBias] = fused
	}
	return out, nil
}

// broadcastAdd implements spec.md §4.G's fusion rule: primary has K
// rows (king-buckets), secondary has B rows (piece-square rows), with
// K = planes * B; primary[plane*B+j][k] += secondary[j][k] for every
// plane. Works for both 1-D (bias) and 2-D (weight) tensors: width is 1
// for a 1-D tensor, the row length for a 2-D one.
func broadcastAdd(primary, secondary Tensor) (Tensor, error) {
	if len(primary.Shape) == 0 || len(secondary.Shape) == 0 {
		return Tensor{}, ErrEmptyTensor
	}
	k := primary.Shape[0]
	b := secondary.Shape[0]
	width, secWidth := 1, 1
	if len(primary.Shape) > 1 {
		width = primary.Shape[1]
	}
	if len(secondary.Shape) > 1 {
		secWidth = secondary.Shape[1]
	}
	if width != secWidth {
		return Tensor{}, fmt.Errorf("width mismatch: primary %d vs secondary %d", width, secWidth)
	}
	if b == 0 || k%b != 0 {
		return Tensor{}, fmt.Errorf("primary rows %d not a multiple of secondary rows %d", k, b)
	}
	planes := k / b

	out := Tensor{Shape: primary.Shape, Data: append([]float64(nil), primary.Data...)}
	for plane := 0; plane < planes; plane++ {
		for j := 0; j < b; j++ {
			for kk := 0; kk < width; kk++ {
				out.Data[(plane*b+j)*width+kk] += secondary.Data[j*width+kk]
			}
		}
	}
	return out, nil
}

// quantizeValue scales, rounds half-to-even, and clamp-checks w. An
// out-of-range result is a program error per spec.md §4.G's failure
// semantics (the training loop is contracted to produce representable
// weights), so it is returned as an error rather than silently clamped.
func quantizeValue(w float64, scale float64, width IntWidth) (int64, error) {
	rounded := math.RoundToEven(w * scale)
	v := int64(rounded)
	min, max := width.Range()
	if v < min || v > max {
		return 0, fmt.Errorf("value %v scales to %v, outside [%d, %d]", w, rounded, min, max)
	}
	return v, nil
}

func emitLayer(buf *bytes.Buffer, t Tensor, spec LayerSpec) error {
	for _, w := range t.Data {
		v, err := quantizeValue(w, spec.Scale, spec.Width)
		if err != nil {
			return fmt.Errorf("layer %q: %w", spec.Name, err)
		}
		switch spec.Width {
		case Int8:
			buf.WriteByte(byte(int8(v)))
		case Int16:
			if err := binary.Write(buf, binary.LittleEndian, int16(v)); err != nil {
				return err
			}
		case Int32:
			if err := binary.Write(buf, binary.LittleEndian, int32(v)); err != nil {
				return err
			}
		default:
			return fmt.Errorf("layer %q: unsupported int width %d", spec.Name, spec.Width)
		}
	}
	return nil
}
