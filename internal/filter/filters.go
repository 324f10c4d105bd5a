package filter

import (
	"math"
	"sort"
)

// Filter names accepted by Lookup and Weight.
const (
	Box      = "box"
	Hamming  = "hamming"
	Lanczos2 = "lanczos2"
	Lanczos3 = "lanczos3"
	MKS2013  = "mks2013"
	Bicubic  = "bicubic"
)

// Default is the filter used when a request does not name one.
const Default = Lanczos3

// epsilon below which |x| is treated as the filter center.
const epsilon = 1.19209290e-07

// Config describes one reconstruction filter.
type Config struct {
	// Name identifies the filter in requests and cache keys.
	Name string

	// Support is the half-width, in source samples at unit scale, beyond
	// which Weight returns 0.
	Support float64

	// Factor is the multiplier applied to the filter's natural unit support
	// to obtain Support. It is 1 for every filter except the Lanczos family,
	// where it equals the lobe count.
	Factor float64

	// Weight evaluates the filter at distance x.
	Weight func(x float64) float64
}

var configs = map[string]Config{
	Box:      {Name: Box, Support: 0.5, Factor: 1, Weight: box},
	Hamming:  {Name: Hamming, Support: 1, Factor: 1, Weight: hamming},
	Lanczos2: {Name: Lanczos2, Support: 2, Factor: 2, Weight: lanczos2},
	Lanczos3: {Name: Lanczos3, Support: 3, Factor: 3, Weight: lanczos3},
	MKS2013:  {Name: MKS2013, Support: 2, Factor: 1, Weight: mitchell},
	Bicubic:  {Name: Bicubic, Support: 2, Factor: 1, Weight: bicubic},
}

// Lookup returns the configuration of the named filter.
func Lookup(name string) (Config, bool) {
	c, ok := configs[name]
	return c, ok
}

// Names returns the known filter names in sorted order.
func Names() []string {
	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Weight evaluates the named filter at x. Unknown names return 0.
func Weight(name string, x float64) float64 {
	c, ok := configs[name]
	if !ok {
		return 0
	}
	return c.Weight(x)
}

func sinc(x float64) float64 {
	if x > -epsilon && x < epsilon {
		return 1
	}
	x *= math.Pi
	return math.Sin(x) / x
}

func box(x float64) float64 {
	if x >= -0.5 && x <= 0.5 {
		return 1
	}
	return 0
}

func hamming(x float64) float64 {
	if x <= -1 || x >= 1 {
		return 0
	}
	if x > -epsilon && x < epsilon {
		return 1
	}
	return sinc(x) * (0.54 + 0.46*math.Cos(math.Pi*x))
}

func lanczos(x, a float64) float64 {
	if x <= -a || x >= a {
		return 0
	}
	if x > -epsilon && x < epsilon {
		return 1
	}
	return sinc(x) * sinc(x/a)
}

func lanczos2(x float64) float64 { return lanczos(x, 2) }

func lanczos3(x float64) float64 { return lanczos(x, 3) }

// mitchell is the Mitchell-Netravali cubic with B = C = 1/3.
func mitchell(x float64) float64 {
	const b, c = 1.0 / 3, 1.0 / 3
	x = math.Abs(x)
	switch {
	case x < 1:
		return ((12-9*b-6*c)*x*x*x + (-18+12*b+6*c)*x*x + (6 - 2*b)) / 6
	case x < 2:
		return ((-b-6*c)*x*x*x + (6*b+30*c)*x*x + (-12*b-48*c)*x + (8*b + 24*c)) / 6
	}
	return 0
}

// bicubic is the Keys cubic convolution kernel with a = -0.5.
func bicubic(x float64) float64 {
	const a = -0.5
	x = math.Abs(x)
	switch {
	case x <= 1:
		return (a+2)*x*x*x - (a+3)*x*x + 1
	case x < 2:
		return a*x*x*x - 5*a*x*x + 8*a*x - 4*a
	}
	return 0
}
