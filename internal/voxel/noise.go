package voxel

import "math"

// Fixed noise shape shared by every detail tier. Tier configuration only
// scales the input coordinates and the output height, so all tiers sample the
// same underlying field.
const (
	noiseSeed        int64 = 1234
	noiseOctaves           = 5
	noiseFrequency         = 1.1
	noiseLacunarity        = 2.8
	noisePersistence       = 0.4
)

// fractalNoise sums octaves of value noise, normalised to roughly [-1, 1].
func fractalNoise(x, z float64) float64 {
	frequency := noiseFrequency
	amplitude := 1.0
	noiseSum := 0.0
	maxAmplitude := 0.0

	for i := 0; i < noiseOctaves; i++ {
		noiseSum += valueNoise(x*frequency, z*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= noisePersistence
		frequency *= noiseLacunarity
	}

	if maxAmplitude == 0 {
		return 0
	}
	return noiseSum / maxAmplitude
}

// valueNoise interpolates hashed lattice values with a smoothstep kernel.
func valueNoise(x, z float64) float64 {
	x0 := int(math.Floor(x))
	z0 := int(math.Floor(z))
	x1 := x0 + 1
	z1 := z0 + 1

	sx := smooth(x - float64(x0))
	sz := smooth(z - float64(z0))

	n0 := random2D(x0, z0)
	n1 := random2D(x1, z0)
	ix0 := lerp(n0, n1, sx)

	n2 := random2D(x0, z1)
	n3 := random2D(x1, z1)
	ix1 := lerp(n2, n3, sx)

	return lerp(ix0, ix1, sz)
}

func smooth(t float64) float64 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func random2D(x, z int) float64 {
	return float64(hash3(x, z, int(noiseSeed))&0xFFFF)/0x8000 - 1.0
}

func hash3(x, y, z int) uint32 {
	h := uint32(x*374761393 + y*668265263 + z*2147483647)
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}
