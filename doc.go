// Package resample resizes RGBA pixel buffers with selectable
// reconstruction filters, optional gamma-correct (linear light) filtering
// and an optional unsharp-mask pass.
//
// # Overview
//
// A resize is two separable 1D passes, horizontal then vertical. Each pass
// uses a per-axis contribution table: for every destination sample, the
// source samples under the filter and their normalized weights. Strong
// ratios are split into halving or doubling steps so no single pass needs
// an excessively wide filter.
//
// # Quick Start
//
//	import "github.com/gogpu/resample"
//
//	req := resample.NewRequest(resample.Bytes(pix), 1920, 1080, 480, 270)
//	req.UnsharpAmount = 80
//
//	out, err := resample.Resize(req)
//	if err != nil {
//	    return err
//	}
//	thumb := out.U8() // 480*270*4 bytes
//
// # Filters
//
// box, hamming, lanczos2, lanczos3 (default), mks2013 and bicubic. See
// [Filters].
//
// # Buffers
//
// A [Buffer] holds either gamma-encoded bytes ([Bytes]) or linear-light
// floats ([Floats]). Byte buffers are decoded to linear light before
// filtering when Request.GammaCorrect is set, and encoded back afterwards.
// Float buffers are filtered as they are and never clamped.
//
// # GPU Acceleration
//
// The CPU [Engine] is always available. A WebGPU compute implementation is
// enabled by blank import:
//
//	import _ "github.com/gogpu/resample/gpu"
//
// [Resize] and every [Dispatcher] try the registered accelerator first and
// fall back to the CPU engine on any GPU error. GPU and CPU results differ
// by at most a couple of byte levels per channel.
//
// # Caches
//
// Engines memoize contribution tables and Gaussian kernels. The caches are
// owned by the engine, never evict on their own, and are emptied by
// [Engine.ClearCache] or [ClearCache].
//
// # Logging
//
// resample is silent by default. See [SetLogger].
package resample

// Version is the current version of the library.
const Version = "0.1.0"
