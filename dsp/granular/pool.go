package granular

// DefaultMaxGrains is the default voice pool capacity.
const DefaultMaxGrains = 64

// Pool is a fixed-capacity set of grains. Spawn takes the lowest free slot.
type Pool struct {
	grains []Grain
	active int
}

// NewPool returns a pool with capacity slots (at least 1).
func NewPool(capacity int) *Pool {
	if capacity < 1 {
		capacity = 1
	}

	return &Pool{grains: make([]Grain, capacity)}
}

// Cap returns the number of slots.
func (p *Pool) Cap() int {
	return len(p.grains)
}

// Active returns the number of playing grains.
func (p *Pool) Active() int {
	return p.active
}

// Grain returns slot i. It panics if i is out of range.
func (p *Pool) Grain(i int) *Grain {
	return &p.grains[i]
}

// Spawn starts a grain in the first free slot. It returns false, and does
// nothing, when every slot is busy.
func (p *Pool) Spawn(readPosition, increment, panL, panR float64, lifetime int) bool {
	slot := p.free()
	if slot < 0 || lifetime <= 0 {
		return false
	}

	p.grains[slot].start(readPosition, increment, panL, panR, lifetime)
	p.active++

	return true
}

// Full reports whether no slot is free.
func (p *Pool) Full() bool {
	return p.active >= len(p.grains)
}

// Clear retires every grain immediately.
func (p *Pool) Clear() {
	for i := range p.grains {
		p.grains[i] = Grain{}
	}

	p.active = 0
}

func (p *Pool) retired() {
	if p.active > 0 {
		p.active--
	}
}

func (p *Pool) free() int {
	for i := range p.grains {
		if !p.grains[i].active {
			return i
		}
	}

	return -1
}
