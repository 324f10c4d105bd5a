//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/resample/internal/contrib"
)

// Byte sizes of the shader-side structs.
const (
	tapSize    = 8  // Tap { index: u32, weight: f32 }
	spanSize   = 8  // vec2<u32> { offset, count }
	paramsSize = 32 // Params, eight u32
)

// Axis selectors for the resample shader.
const (
	axisHorizontal uint32 = 0
	axisVertical   uint32 = 1
)

// packedTable is a contribution table flattened into the storage layout read
// by the resample shader.
type packedTable struct {
	taps  []byte
	spans []byte
}

// packTable flattens t. Every entry becomes a span (offset, count) into a
// single tap array.
func packTable(t contrib.Table) packedTable {
	n := 0
	for _, e := range t {
		n += len(e)
	}
	p := packedTable{
		taps:  make([]byte, 0, n*tapSize),
		spans: make([]byte, 0, len(t)*spanSize),
	}
	offset := uint32(0)
	for _, e := range t {
		p.spans = binary.LittleEndian.AppendUint32(p.spans, offset)
		p.spans = binary.LittleEndian.AppendUint32(p.spans, uint32(len(e))) //nolint:gosec // tap counts are small
		for _, tap := range e {
			p.taps = binary.LittleEndian.AppendUint32(p.taps, uint32(tap.Index)) //nolint:gosec // indices are non-negative
			p.taps = binary.LittleEndian.AppendUint32(p.taps, math.Float32bits(tap.Weight))
		}
		offset += uint32(len(e)) //nolint:gosec // tap counts are small
	}
	return p
}

// params mirrors the Params uniform shared by all shaders.
type params struct {
	srcW, srcH uint32
	dstW, dstH uint32
	axis       uint32
	quantize   bool
	gamma      bool
}

func (p params) bytes() []byte {
	b := make([]byte, 0, paramsSize)
	for _, v := range []uint32{p.srcW, p.srcH, p.dstW, p.dstH, p.axis, boolU32(p.quantize), boolU32(p.gamma), 0} {
		b = binary.LittleEndian.AppendUint32(b, v)
	}
	return b
}

func boolU32(v bool) uint32 {
	if v {
		return 1
	}
	return 0
}

// pass is one dispatch of the encoded pipeline.
type pass struct {
	stage  stage
	params params
	table  packedTable // resample stage only
}

// workgroups returns the 2D dispatch size for the pass, 8×8 invocations per
// workgroup.
func (p pass) workgroups() (x, y uint32) {
	return (p.params.dstW + 7) / 8, (p.params.dstH + 7) / 8
}

// buildPasses expands a request into decode, resample and encode passes.
// It also returns the largest intermediate pixel count, which sizes the
// ping-pong buffers.
func buildPasses(w, h int, widths, heights []int, tables []contrib.Table, gamma bool) ([]pass, int) {
	quantize := !gamma
	passes := make([]pass, 0, len(widths)+len(heights)+2)
	maxPixels := w * h

	passes = append(passes, pass{stage: stageDecode, params: params{
		srcW: u32(w), srcH: u32(h), dstW: u32(w), dstH: u32(h), gamma: gamma,
	}})

	cw, ch := w, h
	i := 0
	for _, tw := range widths {
		passes = append(passes, pass{stage: stageResample, table: packTable(tables[i]), params: params{
			srcW: u32(cw), srcH: u32(ch), dstW: u32(tw), dstH: u32(ch),
			axis: axisHorizontal, quantize: quantize, gamma: gamma,
		}})
		cw = tw
		maxPixels = max(maxPixels, cw*ch)
		i++
	}
	for _, th := range heights {
		passes = append(passes, pass{stage: stageResample, table: packTable(tables[i]), params: params{
			srcW: u32(cw), srcH: u32(ch), dstW: u32(cw), dstH: u32(th),
			axis: axisVertical, quantize: quantize, gamma: gamma,
		}})
		ch = th
		maxPixels = max(maxPixels, cw*ch)
		i++
	}

	passes = append(passes, pass{stage: stageEncode, params: params{
		srcW: u32(cw), srcH: u32(ch), dstW: u32(cw), dstH: u32(ch), gamma: gamma,
	}})
	return passes, maxPixels
}

func u32(v int) uint32 { return uint32(v) } //nolint:gosec // dimensions are validated positive
