//go:build !nogpu

package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// requestResources tracks every GPU object created for one request so that
// all of them are released before the request returns.
type requestResources struct {
	device     hal.Device
	buffers    []hal.Buffer
	bindGroups []hal.BindGroup
	cmdBuf     hal.CommandBuffer
}

func (res *requestResources) cleanup() {
	if res.cmdBuf != nil {
		res.device.FreeCommandBuffer(res.cmdBuf)
		res.cmdBuf = nil
	}
	for _, bg := range res.bindGroups {
		res.device.DestroyBindGroup(bg)
	}
	res.bindGroups = nil
	for _, buf := range res.buffers {
		res.device.DestroyBuffer(buf)
	}
	res.buffers = nil
}

// buffer creates a buffer of at least 4 bytes and tracks it.
func (res *requestResources) buffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	const minBufSize = 4
	if size < minBufSize {
		size = minBufSize
	}
	buf, err := res.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("gpu: create buffer %s: %w", label, err)
	}
	res.buffers = append(res.buffers, buf)
	return buf, nil
}

// upload creates a buffer holding data.
func (r *Resampler) upload(res *requestResources, label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := res.buffer(label, uint64(len(data)), usage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	if err := r.queue.WriteBuffer(buf, 0, data); err != nil {
		return nil, fmt.Errorf("gpu: write buffer %s: %w", label, err)
	}
	return buf, nil
}

// bindings are the five buffers bound for one pass.
type bindings struct {
	params, src, dst, taps, spans hal.Buffer
}

func (b bindings) entries() []gputypes.BindGroupEntry {
	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // 0 = entire buffer
			},
		}
	}
	return []gputypes.BindGroupEntry{
		entry(0, b.params),
		entry(1, b.src),
		entry(2, b.dst),
		entry(3, b.taps),
		entry(4, b.spans),
	}
}

// run uploads src (packed RGBA8), executes passes and reads back the packed
// RGBA8 result. Callers hold r.mu and have called ensureDevice.
func (r *Resampler) run(src []byte, passes []pass, maxPixels int) ([]byte, error) {
	res := &requestResources{device: r.device}
	defer res.cleanup()

	last := passes[len(passes)-1].params
	outSize := uint64(last.dstW) * uint64(last.dstH) * 4
	floatSize := uint64(maxPixels) * 16 //nolint:gosec // bounded by fits

	input, err := r.upload(res, "resample_input", src, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	ping, err := res.buffer("resample_ping", floatSize, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	pong, err := res.buffer("resample_pong", floatSize, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	output, err := res.buffer("resample_output", outSize, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return nil, err
	}
	staging, err := res.buffer("resample_staging", outSize, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	unused, err := res.buffer("resample_unused", spanSize, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}

	// Route every pass and upload its uniforms and tables before encoding.
	binds := make([]bindings, len(passes))
	cur, next := ping, pong
	for i, p := range passes {
		b := bindings{taps: unused, spans: unused}
		if b.params, err = r.upload(res, "resample_params", p.params.bytes(), gputypes.BufferUsageUniform); err != nil {
			return nil, err
		}
		switch p.stage {
		case stageDecode:
			b.src, b.dst = input, cur
		case stageResample:
			if b.taps, err = r.upload(res, "resample_taps", p.table.taps, gputypes.BufferUsageStorage); err != nil {
				return nil, err
			}
			if b.spans, err = r.upload(res, "resample_spans", p.table.spans, gputypes.BufferUsageStorage); err != nil {
				return nil, err
			}
			b.src, b.dst = cur, next
			cur, next = next, cur
		case stageEncode:
			b.src, b.dst = cur, output
		}
		binds[i] = b
	}

	if err := r.encode(res, passes, binds, output, staging, outSize); err != nil {
		return nil, err
	}

	if _, err := r.queue.Submit([]hal.CommandBuffer{res.cmdBuf}); err != nil {
		return nil, fmt.Errorf("gpu: submit: %w", err)
	}
	if err := r.device.WaitIdle(); err != nil {
		return nil, fmt.Errorf("gpu: wait for GPU: %w", err)
	}

	mapping, err := r.device.MapBuffer(staging, 0, outSize)
	if err != nil {
		return nil, fmt.Errorf("gpu: map staging buffer: %w", err)
	}
	out := make([]byte, outSize)
	copy(out, unsafe.Slice((*byte)(mapping.Ptr), outSize))
	if err := r.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("gpu: unmap staging buffer: %w", err)
	}
	return out, nil
}

// encode records every pass plus the final copy into res.cmdBuf.
func (r *Resampler) encode(res *requestResources, passes []pass, binds []bindings, output, staging hal.Buffer, outSize uint64) error {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "resample"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("resample"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}

	for i, p := range passes {
		bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   "resample_" + p.stage.String() + "_bg",
			Layout:  r.pipes.layout,
			Entries: binds[i].entries(),
		})
		if err != nil {
			encoder.DiscardEncoding()
			return fmt.Errorf("gpu: create bind group for %s: %w", p.stage, err)
		}
		res.bindGroups = append(res.bindGroups, bg)

		x, y := p.workgroups()
		cp := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "resample_" + p.stage.String()})
		cp.SetPipeline(r.pipes.pipes[p.stage])
		cp.SetBindGroup(0, bg, nil)
		cp.Dispatch(x, y, 1)
		cp.End()

		slogger().Debug("gpu: dispatched pass",
			"stage", p.stage.String(),
			"dst", [2]uint32{p.params.dstW, p.params.dstH},
			"workgroups", [2]uint32{x, y})
	}

	encoder.CopyBufferToBuffer(output, staging, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: outSize},
	})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf
	return nil
}
