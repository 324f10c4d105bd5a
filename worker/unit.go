package worker

import (
	"github.com/gogpu/resample"
)

// Unit executes scale requests one at a time on its own dispatcher.
type Unit struct {
	id   int
	disp *resample.Dispatcher
}

// NewUnit creates a unit with a private CPU engine. The GPU accelerator, if
// registered, is shared and serializes its own requests.
func NewUnit(id int, opts ...Option) *Unit {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newUnit(id, o)
}

func newUnit(id int, o options) *Unit {
	engine := resample.NewEngine(append([]resample.EngineOption{resample.WithWorkers(1)}, o.engine...)...)
	dopts := append(append([]resample.DispatcherOption(nil), o.dispatch...), resample.WithEngine(engine))
	return &Unit{id: id, disp: resample.NewDispatcher(dopts...)}
}

// ID returns the unit number reported in its init message.
func (u *Unit) ID() int { return u.id }

// Ready returns the unit's init message.
func (u *Unit) Ready() *InitMessage {
	return &InitMessage{Type: TypeInit, Unit: u.id}
}

// Handle runs req and returns a *ScaleResponse or an *ErrorResponse. The
// request's source pixels are consumed.
func (u *Unit) Handle(req *ScaleRequest) any {
	if err := req.Validate(); err != nil {
		id := ""
		if req != nil {
			id = req.ID
		}
		return newErrorResponse(id, err)
	}

	w, h := req.Src.Width, req.Src.Height
	r := resample.NewRequest(resample.Bytes(req.Src.Take()), w, h, req.Target.Width, req.Target.Height)
	r.Filter = req.Options.Filter
	r.GammaCorrect = req.Options.GammaCorrect
	r.UnsharpAmount = req.Options.UnsharpAmount
	r.UnsharpRadius = req.Options.UnsharpRadius
	r.UnsharpThreshold = req.Options.UnsharpThreshold

	out, err := u.disp.Resize(r)
	if err != nil {
		resample.Logger().Debug("worker: request failed", "unit", u.id, "id", req.ID, "err", err)
		return newErrorResponse(req.ID, err)
	}

	result := NewImage(out.U8(), req.Target.Width, req.Target.Height)
	if err := result.Validate("result"); err != nil {
		return newErrorResponse(req.ID, err)
	}
	return &ScaleResponse{Type: TypeScale, ID: req.ID, Result: result}
}

// Close releases the unit's engine.
func (u *Unit) Close() {
	u.disp.Engine().Close()
}

// serve announces readiness on out, then handles requests from in until it
// is closed.
func (u *Unit) serve(in <-chan *ScaleRequest, out chan<- any) {
	defer u.Close()
	out <- u.Ready()
	resample.Logger().Debug("worker: unit ready", "unit", u.id)
	for req := range in {
		out <- u.Handle(req)
	}
}
