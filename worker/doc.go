// Package worker runs resize requests in background units and speaks the
// request/response message contract used by hosts that keep the engine off
// their main goroutine.
//
// A Unit owns its own resample.Dispatcher, and with it its own contribution
// and kernel caches, and processes one request at a time. A Pool starts a
// fixed number of units, waits for each to report ready, and matches
// responses to callers by request ID:
//
//	pool, err := worker.New(worker.WithSize(4))
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	req := worker.NewScaleRequest(worker.NewImage(pix, 640, 480), worker.Size{Width: 320, Height: 240})
//	resp, err := pool.Do(ctx, req)
//
// Pixel data moves with the message: sending a request empties the caller's
// Image, and the response grants the caller sole ownership of the result.
package worker
