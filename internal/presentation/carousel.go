package presentation

import "sync"

// Carousel cycles through n slides and wraps around at both ends.
type Carousel struct {
	mu      sync.Mutex
	n       int
	current int
}

func NewCarousel(n int) *Carousel {
	return &Carousel{n: n}
}

// Len is the number of slides.
func (c *Carousel) Len() int {
	return c.n
}

// Current is the index of the visible slide, or -1 without slides.
func (c *Carousel) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 {
		return -1
	}
	return c.current
}

// Next moves forward; past the last slide it returns to the first.
func (c *Carousel) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 {
		return -1
	}
	c.current = (c.current + 1) % c.n
	return c.current
}

// Prev moves back; before the first slide it jumps to the last.
func (c *Carousel) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n == 0 {
		return -1
	}
	c.current = (c.current - 1 + c.n) % c.n
	return c.current
}
