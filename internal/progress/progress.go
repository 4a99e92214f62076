// Package progress implements a weighted progress tree for long-running
// jobs. A scope holds a number of units of work; nested child scopes
// represent a fixed share of their parent, so a child completing fully
// advances the parent by exactly the child's weight.
package progress

// Progress is a single scope in the progress tree. It is not safe for
// concurrent use; a job reports progress from a single goroutine.
type Progress struct {
	total    int
	done     int
	parent   *Progress
	weight   int
	pushed   int
	observer func(done, total int)
}

// New creates a root scope with the given number of units.
func New(total int) *Progress {
	if total <= 0 {
		total = 100
	}
	return &Progress{total: total}
}

// SetObserver registers a callback invoked after every advancement of
// this scope.
func (p *Progress) SetObserver(fn func(done, total int)) {
	p.observer = fn
}

func (p *Progress) Total() int { return p.total }

func (p *Progress) Done() int { return p.done }

// Percent returns completion of this scope in whole percent.
func (p *Progress) Percent() int {
	return p.done * 100 / p.total
}

// Increment advances this scope by the given number of units. The
// scope never exceeds its total.
func (p *Progress) Increment(by int) {
	if by <= 0 {
		return
	}
	p.advance(by)
}

// Child creates a nested scope worth weight units of this scope,
// subdivided into total units of its own. Completing the child fully
// advances this scope by exactly weight.
func (p *Progress) Child(weight, total int) *Progress {
	if total <= 0 {
		total = 100
	}
	return &Progress{total: total, parent: p, weight: weight}
}

func (p *Progress) advance(by int) {
	p.done += by
	if p.done > p.total {
		p.done = p.total
	}
	if p.observer != nil {
		p.observer(p.done, p.total)
	}
	if p.parent == nil {
		return
	}
	share := p.done * p.weight / p.total
	if delta := share - p.pushed; delta > 0 {
		p.pushed = share
		p.parent.advance(delta)
	}
}
