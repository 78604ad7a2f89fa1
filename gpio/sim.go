package gpio

// SimPin is an in-memory pin used on the host and in tests. It satisfies both
// Setter and Getter. SimPin is not safe for concurrent use; it is meant to be
// owned by a single task, like a real pin.
type SimPin struct {
	level bool
	sets  int
	edges int

	// OnChange is called whenever Set changes the level.
	OnChange func(level bool)
}

// NewSimPin returns a pin reading level.
func NewSimPin(level bool) *SimPin {
	return &SimPin{level: level}
}

// Set drives the pin.
func (p *SimPin) Set(level bool) {
	p.sets++
	if level == p.level {
		return
	}
	p.level = level
	p.edges++
	if p.OnChange != nil {
		p.OnChange(level)
	}
}

// Get samples the pin.
func (p *SimPin) Get() bool { return p.level }

// Edges returns the number of times Set changed the level.
func (p *SimPin) Edges() int { return p.edges }

// Sets returns the number of times Set was called.
func (p *SimPin) Sets() int { return p.sets }
