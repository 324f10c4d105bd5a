// Command rezize resizes image files with the resample engine.
//
//	rezize -width 800 -filter lanczos3 -out thumbs photo.jpg scan.tiff
//
// Defaults can be set in a .env file or the environment: REZ_FILTER,
// REZ_WORKERS, REZ_GAMMA, REZ_OUT and REZ_LOG.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/resample"
	_ "github.com/gogpu/resample/gpu" // enable GPU resampling
	"github.com/gogpu/resample/worker"
)

func main() {
	env := loadEnv()

	var (
		width     = flag.Int("width", 0, "target width (0 keeps the aspect ratio)")
		height    = flag.Int("height", 0, "target height (0 keeps the aspect ratio)")
		filter    = flag.String("filter", env.filter, "filter: "+strings.Join(resample.Filters(), ", "))
		gamma     = flag.Bool("gamma", env.gamma, "resize in linear light")
		amount    = flag.Float64("unsharp-amount", 0, "unsharp mask amount in percent (0 disables)")
		radius    = flag.Float64("unsharp-radius", resample.DefaultUnsharpRadius, "unsharp mask radius")
		threshold = flag.Float64("unsharp-threshold", 0, "unsharp mask threshold in byte levels")
		workers   = flag.Int("workers", env.workers, "background units (0 = one per CPU)")
		outDir    = flag.String("out", env.out, "output directory")
		noGPU     = flag.Bool("nogpu", false, "never use the GPU")
	)
	flag.Parse()

	resample.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: env.logLevel})))

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *width == 0 && *height == 0 {
		log.Fatal("rezize: -width or -height is required")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("rezize: %v", err)
	}

	opts := worker.DefaultOptions()
	opts.Filter = *filter
	opts.GammaCorrect = *gamma
	opts.UnsharpAmount = *amount
	opts.UnsharpRadius = *radius
	opts.UnsharpThreshold = *threshold

	poolOpts := []worker.Option{worker.WithSize(*workers)}
	if *noGPU {
		poolOpts = append(poolOpts, worker.WithDispatcherOptions(resample.WithoutGPU()))
	}
	pool, err := worker.New(poolOpts...)
	if err != nil {
		log.Fatalf("rezize: %v", err)
	}
	defer pool.Close()

	start := time.Now()
	results := resizeAll(context.Background(), pool, flag.Args(), *outDir, *width, *height, opts)

	var failed, pixels int
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.src, r.err)
			continue
		}
		pixels += r.pixels
	}

	p := message.NewPrinter(language.English)
	p.Printf("%d of %d files resized, %d output pixels in %v\n",
		len(results)-failed, len(results), pixels, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

type result struct {
	src    string
	dst    string
	pixels int
	err    error
}

// resizeAll runs one request per file; the pool bounds concurrency.
func resizeAll(ctx context.Context, pool *worker.Pool, files []string, outDir string, w, h int, opts worker.Options) []result {
	results := make([]result, len(files))
	dsts := outputPaths(outDir, files)
	var wg sync.WaitGroup
	for i, src := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = resizeFile(ctx, pool, src, dsts[i], w, h, opts)
		}()
	}
	wg.Wait()
	return results
}

func resizeFile(ctx context.Context, pool *worker.Pool, src, dst string, w, h int, opts worker.Options) result {
	r := result{src: src, dst: dst}

	img, err := loadImage(src)
	if err != nil {
		r.err = err
		return r
	}
	target := fitSize(img.Width, img.Height, w, h)

	req := worker.NewScaleRequest(img, target)
	req.ID = dst
	req.Options = opts
	resp, err := pool.Do(ctx, req)
	if err != nil {
		r.err = err
		return r
	}

	if err := savePNG(r.dst, resp.Result); err != nil {
		r.err = err
		return r
	}
	r.pixels = target.Width * target.Height
	resample.Logger().Info("rezize: wrote", "src", src, "dst", r.dst,
		"from", [2]int{img.Width, img.Height}, "to", [2]int{target.Width, target.Height})
	return r
}

// outputPaths maps every file to a PNG in dir with the same base name.
// Names already taken by an earlier file get a -2, -3, ... suffix.
func outputPaths(dir string, files []string) []string {
	taken := make(map[string]bool, len(files))
	out := make([]string, len(files))
	for i, src := range files {
		base := filepath.Base(src)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		name := base + ".png"
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d.png", base, n)
		}
		taken[name] = true
		out[i] = filepath.Join(dir, name)
	}
	return out
}
