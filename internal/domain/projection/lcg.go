package projection

// Linear congruential generator constants. Every projection of a student
// replays the same sequence because the generator is seeded by its id.
const (
	lcgMultiplier = 9301
	lcgIncrement  = 49297
	lcgModulus    = 233280
)

type lcg struct {
	state int64
}

// newLCG folds seed into [0, lcgModulus) so negative ids still draw in [0, 1).
func newLCG(seed int64) *lcg {
	return &lcg{state: (seed%lcgModulus + lcgModulus) % lcgModulus}
}

// next advances the state and returns a draw in [0, 1).
func (g *lcg) next() float64 {
	g.state = (g.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(g.state) / lcgModulus
}

// jitter returns a centred draw in [-0.5, 0.5) scaled by amplitude.
func (g *lcg) jitter(amplitude float64) float64 {
	return (g.next() - 0.5) * amplitude
}
