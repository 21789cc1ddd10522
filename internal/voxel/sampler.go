package voxel

// HeightSource yields a deterministic ground height for a column. Implemented
// by HeightSampler; tests substitute fixed-height stubs.
type HeightSource interface {
	Height(x, z int) float64
}

// HeightSampler evaluates the shared noise field for one detail tier,
// memoizing one ground height per distinct column. A sampler belongs to a
// single chunk-generation task and is never shared between tasks, so no
// locking is needed; the cache lives exactly as long as the sampler.
type HeightSampler struct {
	scale       float64
	heightScale float64
	heightMinus float64
	cache       map[ColumnKey]float64
}

// NewHeightSampler builds a sampler with the tier's horizontal scale, vertical
// scale and vertical offset applied to the raw noise sample.
func NewHeightSampler(scale, heightScale, heightMinus float64) *HeightSampler {
	if scale <= 0 {
		scale = 1
	}
	return &HeightSampler{
		scale:       scale,
		heightScale: heightScale,
		heightMinus: heightMinus,
		cache:       make(map[ColumnKey]float64),
	}
}

// Height returns the ground height for column (x, z). The first call per
// column computes and caches; later calls are cache hits returning the exact
// same value.
func (s *HeightSampler) Height(x, z int) float64 {
	key := ColumnKey{X: x, Z: z}
	if sample, ok := s.cache[key]; ok {
		return sample
	}
	scaledX := float64(x) / (1000.0 / s.scale)
	scaledZ := float64(z) / (1000.0 / s.scale)
	sample := fractalNoise(scaledX, scaledZ)*50.0*s.heightScale - s.heightMinus
	s.cache[key] = sample
	return sample
}

// CachedColumns reports how many distinct columns have been sampled.
func (s *HeightSampler) CachedColumns() int {
	return len(s.cache)
}
