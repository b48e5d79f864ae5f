// Package physics computes force-directed layouts for canvas graphs.
//
// The engine is deliberately single-step: one call to Step nudges every body
// once, and interactive callers drive convergence by invoking it repeatedly
// (typically bound to a key). Relax wraps Step for batch use. Both are
// deterministic for identical inputs; the only randomized helper is Scatter,
// which places newly created vertices.
package physics

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Default force constants. Forces act between circle boundaries rather than
// centers, so two touching vertices are at distance zero.
const (
	SpringLength    = 30.0  // natural spring length between boundaries
	SpringStiffness = 0.3   // Hooke constant
	Repulsion       = 250.0 // Coulomb constant
	MaxForce        = 10.0  // per-axis force cap, also bounds displacement

	RelaxIterations = 100   // max Step calls performed by Relax
	RelaxThreshold  = 0.001 // mean force below which Relax stops
)

// Point is a 2D canvas position.
type Point struct {
	X, Y float64
}

// Body is a positioned circle taking part in the simulation.
type Body struct {
	X, Y   float64
	Radius float64
}

// Spring is an attracting link between two bodies. Self-referencing springs
// are ignored.
type Spring struct {
	A, B int64
}

// Rect is an axis-aligned clamping region.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Config overrides the default force constants.
type Config struct {
	SpringLength    float64
	SpringStiffness float64
	Repulsion       float64
	MaxForce        float64
}

// DefaultConfig returns the standard force constants.
func DefaultConfig() Config {
	return Config{
		SpringLength:    SpringLength,
		SpringStiffness: SpringStiffness,
		Repulsion:       Repulsion,
		MaxForce:        MaxForce,
	}
}

// Options configures a Step or Relax run.
type Options struct {
	// Fixed bodies keep their positions and are left out of the returned
	// mean force.
	Fixed map[int64]struct{}

	// Bounds, when non-nil, clamps every resulting position.
	Bounds *Rect

	// Config falls back to DefaultConfig when zero.
	Config Config
}

func (o Options) config() Config {
	if o.Config == (Config{}) {
		return DefaultConfig()
	}
	return o.Config
}

// Step performs exactly one relaxation step: every body pair repels with a
// force inversely proportional to the squared boundary distance, every spring
// attracts its ends proportionally to the distance beyond its natural length,
// and each body is displaced by its capped force sum. It returns the new
// positions and the mean force magnitude over the unpinned bodies, a
// convergence measure.
//
// Bodies are processed in ascending key order, so the result is identical for
// identical inputs.
func Step(bodies map[int64]Body, springs []Spring, opts Options) (map[int64]Point, float64) {
	cfg := opts.config()

	ids := make([]int64, 0, len(bodies))
	for id := range bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Index springs per body once; iteration order follows the input slice.
	attached := make(map[int64][]Spring, len(bodies))
	for _, s := range springs {
		if s.A == s.B {
			continue
		}
		attached[s.A] = append(attached[s.A], s)
		attached[s.B] = append(attached[s.B], s)
	}

	forces := make(map[int64]Point, len(bodies))
	for _, id := range ids {
		var fx, fy float64
		for _, other := range ids {
			if other == id {
				continue
			}
			cfx, cfy := coulomb(bodies[id], bodies[other], cfg)
			fx += cfx
			fy += cfy
		}
		for _, s := range attached[id] {
			other := s.A
			if other == id {
				other = s.B
			}
			hfx, hfy := hooke(bodies[id], bodies[other], cfg)
			fx += hfx
			fy += hfy
		}
		forces[id] = Point{X: clampForce(fx, cfg.MaxForce), Y: clampForce(fy, cfg.MaxForce)}
	}

	next := make(map[int64]Point, len(bodies))
	var sum float64
	var free int
	for _, id := range ids {
		b := bodies[id]
		p := Point{X: b.X, Y: b.Y}
		// Pinned bodies contribute neither displacement nor convergence:
		// counting their residual force into the mean would keep Relax from
		// ever reaching the threshold while a pinned body is under tension.
		if _, pinned := opts.Fixed[id]; !pinned {
			f := forces[id]
			sum += math.Hypot(f.X, f.Y)
			free++
			p.X += f.X
			p.Y += f.Y
		}
		if opts.Bounds != nil {
			p.X = math.Max(opts.Bounds.MinX, math.Min(opts.Bounds.MaxX, p.X))
			p.Y = math.Max(opts.Bounds.MinY, math.Min(opts.Bounds.MaxY, p.Y))
		}
		next[id] = p
	}

	if free == 0 {
		return next, 0
	}
	return next, sum / float64(free)
}

// Relax iterates Step until the mean force drops below RelaxThreshold or
// RelaxIterations steps have run, and returns the final positions.
func Relax(bodies map[int64]Body, springs []Spring, opts Options) map[int64]Point {
	current := make(map[int64]Body, len(bodies))
	for id, b := range bodies {
		current[id] = b
	}
	positions := make(map[int64]Point, len(bodies))
	for id, b := range current {
		positions[id] = Point{X: b.X, Y: b.Y}
	}
	for i := 0; i < RelaxIterations; i++ {
		var mean float64
		positions, mean = Step(current, springs, opts)
		for id, p := range positions {
			b := current[id]
			b.X, b.Y = p.X, p.Y
			current[id] = b
		}
		if mean < RelaxThreshold {
			break
		}
	}
	return positions
}

// gap returns the boundary-to-boundary distance between two bodies along the
// center line, together with the unit vector from a toward b. Overlapping
// bodies report a zero gap.
func gap(a, b Body) (dist, ux, uy float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	centers := math.Hypot(dx, dy)
	if centers == 0 {
		// Coincident centers have no direction; fall back to the x axis.
		return 0, 1, 0
	}
	ux = dx / centers
	uy = dy / centers
	dist = centers - a.Radius - b.Radius
	if dist < 0 {
		dist = 0
	}
	return dist, ux, uy
}

// coulomb returns the repulsive force exerted on a by b.
func coulomb(a, b Body, cfg Config) (fx, fy float64) {
	dist, ux, uy := gap(a, b)
	var force float64
	if dist == 0 {
		force = cfg.MaxForce
	} else {
		force = cfg.Repulsion / (dist * dist)
	}
	force = math.Min(force, cfg.MaxForce)
	// Repulsion points away from b.
	return -force * ux, -force * uy
}

// hooke returns the spring force exerted on a by the spring toward b.
// The spring rests at the larger of the configured natural length and the
// sum of the two radii, so large vertices are not pulled into overlap.
func hooke(a, b Body, cfg Config) (fx, fy float64) {
	dist, ux, uy := gap(a, b)
	rest := math.Max(cfg.SpringLength, a.Radius+b.Radius)
	force := cfg.SpringStiffness * (dist - rest)
	force = clampForce(force, cfg.MaxForce)
	// Positive force pulls a toward b.
	return force * ux, force * uy
}

func clampForce(f, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, f))
}

// Scatter produces spread-out positions for vertices created "at random".
// A seeded uniform draw is displaced by simplex noise, which keeps
// consecutive placements from clumping while staying reproducible for a
// given seed.
type Scatter struct {
	rng   *rand.Rand
	noise opensimplex.Noise
	count int
}

// NewScatter creates a placement generator for the given seed.
func NewScatter(seed int64) *Scatter {
	return &Scatter{
		rng:   rand.New(rand.NewSource(seed)),
		noise: opensimplex.New(seed),
	}
}

// Next returns the next placement within [0,width] x [0,height].
func (s *Scatter) Next(width, height float64) (x, y float64) {
	s.count++
	x = s.rng.Float64() * width
	y = s.rng.Float64() * height
	// Noise displacement of up to a tenth of the span, varying per draw.
	t := float64(s.count)
	x += s.noise.Eval3(x/width*2, y/height*2, t) * width * 0.1
	y += s.noise.Eval3(y/height*2, x/width*2, t+100) * height * 0.1
	x = math.Max(0, math.Min(width, x))
	y = math.Max(0, math.Min(height, y))
	return x, y
}
