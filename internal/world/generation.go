package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/udisondev/overworld/internal/model"
)

// GenConfig holds map generation parameters.
type GenConfig struct {
	ID            model.MapID
	Width         int32
	Height        int32
	Seed          int64
	SeaLevel      float64 // elevation below which tiles are water (0.0–1.0)
	MountainLevel float64 // elevation above which tiles are rock (0.0–1.0)
	GrassLevel    float64 // moisture above which land is grass (0.0–1.0)
	Cave          bool    // cave floor instead of open ground
}

// DefaultGenConfig returns a route-sized outdoor map.
func DefaultGenConfig(id model.MapID, seed int64) GenConfig {
	return GenConfig{
		ID:            id,
		Width:         48,
		Height:        36,
		Seed:          seed,
		SeaLevel:      0.30,
		MountainLevel: 0.74,
		GrassLevel:    0.48,
	}
}

// Generate creates a map from layered simplex noise: elevation decides
// water and rock, moisture decides grass on the remaining land.
func Generate(cfg GenConfig) *GridMap {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	moistNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	floor := TileGround
	if cfg.Cave {
		floor = TileCave
	}
	m := NewGridMap(cfg.ID, cfg.Width, cfg.Height, floor)

	for y := range cfg.Height {
		for x := range cfg.Width {
			fx, fy := float64(x), float64(y)
			elev := octaveNoise(elevNoise, fx, fy, 4, 0.08, 0.5)
			moist := octaveNoise(moistNoise, fx, fy, 3, 0.06, 0.5)

			pos := model.NewPosition(x, y)
			switch {
			case elev < cfg.SeaLevel:
				m.Set(pos, TileWater)
			case elev > cfg.MountainLevel:
				m.Set(pos, TileRock)
			case !cfg.Cave && moist > cfg.GrassLevel:
				m.Set(pos, TileGrass)
			}
		}
	}
	return m
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for range octaves {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
