package worker

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/resample"
)

func cpuUnit() *Unit {
	return NewUnit(0, WithDispatcherOptions(resample.WithoutGPU()))
}

func TestUnitHandle(t *testing.T) {
	u := cpuUnit()
	defer u.Close()

	req := NewScaleRequest(NewImage(solid(4, 4, 200, 100, 50, 255), 4, 4), Size{Width: 2, Height: 2})
	req.ID = "a"
	req.Options.Filter = resample.FilterBox
	req.Options.GammaCorrect = false

	msg := u.Handle(req)
	resp, ok := msg.(*ScaleResponse)
	if !ok {
		t.Fatalf("got %#v, want *ScaleResponse", msg)
	}
	if resp.ID != "a" || resp.Type != TypeScale {
		t.Errorf("envelope = %q/%q", resp.Type, resp.ID)
	}
	want := solid(2, 2, 200, 100, 50, 255)
	if string(resp.Result.Data) != string(want) {
		t.Errorf("result = %v, want %v", resp.Result.Data, want)
	}
	if req.Src.Data != nil {
		t.Error("source pixels not consumed")
	}
}

func TestUnitHandleErrors(t *testing.T) {
	u := cpuUnit()
	defer u.Close()

	tests := []struct {
		name     string
		req      *ScaleRequest
		wantMsg  string
		wantKind string
		wantErr  error
	}{
		{
			name:     "size contract",
			req:      &ScaleRequest{Type: TypeScale, ID: "x", Src: NewImage(make([]byte, 10), 2, 2), Target: Size{1, 1}, Options: DefaultOptions()},
			wantMsg:  "data length",
			wantKind: KindBufferSize,
			wantErr:  resample.ErrBufferSize,
		},
		{
			name:     "source size wraps",
			req:      &ScaleRequest{Type: TypeScale, ID: "w", Src: NewImage([]byte{1, 2, 3, 255}, 1<<62+1, 1), Target: Size{1, 1}, Options: DefaultOptions()},
			wantMsg:  "exceeds",
			wantKind: KindBufferSize,
			wantErr:  resample.ErrBufferSize,
		},
		{
			name:     "target size wraps",
			req:      &ScaleRequest{Type: TypeScale, ID: "t", Src: NewImage(solid(1, 1, 0, 0, 0, 0), 1, 1), Target: Size{1<<62 + 1, 1}, Options: DefaultOptions()},
			wantMsg:  "exceeds",
			wantKind: KindBufferSize,
			wantErr:  resample.ErrBufferSize,
		},
		{
			name: "unknown filter",
			req: func() *ScaleRequest {
				r := NewScaleRequest(NewImage(solid(2, 2, 0, 0, 0, 0), 2, 2), Size{1, 1})
				r.ID = "y"
				r.Options.Filter = "sharpest"
				return r
			}(),
			wantMsg:  "filter",
			wantKind: KindUnknownFilter,
			wantErr:  resample.ErrUnknownFilter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := u.Handle(tt.req)
			e, ok := msg.(*ErrorResponse)
			if !ok {
				t.Fatalf("got %#v, want *ErrorResponse", msg)
			}
			if e.ID != tt.req.ID || e.Type != TypeError {
				t.Errorf("envelope = %q/%q", e.Type, e.ID)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message %q does not mention %q", e.Message, tt.wantMsg)
			}
			if e.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", e.Kind, tt.wantKind)
			}
			if !errors.Is(e, tt.wantErr) || !errors.Is(e, resample.ErrInvalidRequest) {
				t.Errorf("%v does not match %v and ErrInvalidRequest", e, tt.wantErr)
			}
		})
	}

	if e, ok := u.Handle(nil).(*ErrorResponse); !ok || e.ID != "" {
		t.Errorf("nil request: got %#v", e)
	}
}

func TestUnitReady(t *testing.T) {
	u := NewUnit(5, WithDispatcherOptions(resample.WithoutGPU()))
	defer u.Close()
	m := u.Ready()
	if m.Type != TypeInit || m.Unit != 5 || u.ID() != 5 {
		t.Errorf("init message = %+v", m)
	}
}
