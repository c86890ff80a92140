package grid

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pdrpinto/gridastar"
)

// GenerateOptions controls Generate. Zero values fall back to the defaults
// of DefaultGenerateOptions, except Noise where zero means flat terrain.
type GenerateOptions struct {
	Width, Height int
	// Clusters is the number of random walks that lay walls.
	Clusters int
	// Steps is the length of each walk.
	Steps int
	// Density is the chance that a walk step leaves a wall.
	Density float64
	// Noise in [0, 1] scales terrain cost variation, 1 spans costs 1..9.
	Noise float64
	// NoiseScale is the noise frequency per cell.
	NoiseScale float64
	Diagonal   bool
	// Seed drives every random choice; zero picks a time-based seed.
	Seed int64
}

func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Width:      40,
		Height:     24,
		Clusters:   8,
		Steps:      200,
		Density:    0.25,
		NoiseScale: 0.15,
	}
}

// Generate builds a random grid: clustered walls laid by random walks over
// terrain whose cost follows a simplex noise field. Start and goal are
// distinct open cells.
func Generate(options GenerateOptions) (*Grid, error) {
	defaults := DefaultGenerateOptions()
	if options.Width == 0 {
		options.Width = defaults.Width
	}
	if options.Height == 0 {
		options.Height = defaults.Height
	}
	if options.Clusters == 0 {
		options.Clusters = defaults.Clusters
	}
	if options.Steps == 0 {
		options.Steps = defaults.Steps
	}
	if options.Density == 0 {
		options.Density = defaults.Density
	}
	if options.NoiseScale == 0 {
		options.NoiseScale = defaults.NoiseScale
	}
	if options.Seed == 0 {
		options.Seed = time.Now().UnixNano()
	}
	if options.Width < 0 || options.Height < 0 || options.Width*options.Height < 2 {
		return nil, fmt.Errorf("%w: need at least two cells", ErrInvalidSize)
	}
	if options.Density < 0 || options.Density > 1 || options.Noise < 0 || options.Noise > 1 {
		return nil, fmt.Errorf("generate: density and noise must be within [0, 1]")
	}

	g, err := New(options.Width, options.Height)
	if err != nil {
		return nil, err
	}
	g.Diagonal = options.Diagonal

	if options.Noise > 0 {
		noise := opensimplex.NewNormalized(options.Seed)
		for y := 0; y < g.Height; y++ {
			for x := 0; x < g.Width; x++ {
				value := noise.Eval2(float64(x)*options.NoiseScale, float64(y)*options.NoiseScale)
				g.costs[y*g.Width+x] = 1 + math.Round(value*8*options.Noise)
			}
		}
	}

	random := rand.New(rand.NewSource(options.Seed))
	for {
		g.Start = gridastar.NewLocation(random.Intn(g.Width), random.Intn(g.Height))
		g.Goal = gridastar.NewLocation(random.Intn(g.Width), random.Intn(g.Height))
		if g.Start != g.Goal {
			break
		}
	}
	// The text format always writes S and G as plain cells.
	g.costs[g.Start.Y*g.Width+g.Start.X] = 1
	g.costs[g.Goal.Y*g.Width+g.Goal.X] = 1
	g.layWalls(random, options.Clusters, options.Steps, options.Density)
	return g, nil
}

// layWalls runs clustered random walks, leaving walls behind with the given density.
func (g *Grid) layWalls(random *rand.Rand, clusters, steps int, density float64) {
	for c := 0; c < clusters; c++ {
		position := gridastar.NewLocation(random.Intn(g.Width), random.Intn(g.Height))
		for s := 0; s < steps; s++ {
			if random.Float64() < density && position != g.Start && position != g.Goal {
				g.costs[position.Y*g.Width+position.X] = Blocked
			}
			step := straightSteps[random.Intn(len(straightSteps))]
			if next := position.Add(step[0], step[1]); g.Contains(next) {
				position = next
			}
		}
	}
}
