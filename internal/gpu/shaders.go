//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed shaders/decode.wgsl
var decodeShaderWGSL string

//go:embed shaders/resample.wgsl
var resampleShaderWGSL string

//go:embed shaders/encode.wgsl
var encodeShaderWGSL string

// stage identifies one of the compute programs.
type stage int

const (
	stageDecode stage = iota
	stageResample
	stageEncode
	stageCount
)

func (s stage) String() string {
	switch s {
	case stageDecode:
		return "decode"
	case stageResample:
		return "resample"
	case stageEncode:
		return "encode"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

func (s stage) source() string {
	switch s {
	case stageDecode:
		return decodeShaderWGSL
	case stageResample:
		return resampleShaderWGSL
	case stageEncode:
		return encodeShaderWGSL
	default:
		return ""
	}
}

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileSPIRV compiles WGSL source to SPIR-V words.
func compileSPIRV(src string) ([]uint32, error) {
	b, err := naga.Compile(src)
	if err != nil {
		return nil, err
	}
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v output has invalid length %d", len(b))
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("spir-v output has bad magic %#08x", words[0])
	}
	return words, nil
}

// compileAll compiles every stage.
func compileAll() ([stageCount][]uint32, error) {
	var out [stageCount][]uint32
	for s := stage(0); s < stageCount; s++ {
		words, err := compileSPIRV(s.source())
		if err != nil {
			return out, fmt.Errorf("gpu: compile %s shader: %w", s, err)
		}
		out[s] = words
	}
	return out, nil
}
