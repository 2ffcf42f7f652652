// Package chart lays out bar charts for the analysis view and tracks which
// chart is attached to a canvas.
package chart

import (
	"sync"
)

const (
	DefaultWidth  = 720
	DefaultHeight = 240
	gap           = 4
)

// Bar is one laid-out bar in SVG user units.
type Bar struct {
	Label string
	Text  string
	X     float64
	Y     float64
	W     float64
	H     float64
}

// Chart is a bar chart instance attached to a canvas until disposed.
// Its fields are never written after Draw returns, so a page may keep
// rendering a chart the canvas has since replaced.
type Chart struct {
	ID     int
	Width  int
	Height int
	Bars   []Bar

	mu       sync.Mutex
	disposed bool
}

func (c *Chart) dispose() {
	c.mu.Lock()
	c.disposed = true
	c.mu.Unlock()
}

// Disposed reports whether the chart was released by its canvas.
func (c *Chart) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Point is one input value. Value drives the bar height; Text is what gets printed.
type Point struct {
	Label string
	Value float64
	Text  string
}

// Canvas holds at most one live chart.
type Canvas struct {
	mu      sync.Mutex
	width   int
	height  int
	current *Chart
	nextID  int
	live    int
}

func NewCanvas(width, height int) *Canvas {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Canvas{width: width, height: height}
}

// Draw disposes the attached chart, if any, then lays out and attaches a new one.
func (c *Canvas) Draw(points []Point) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.disposeLocked()

	c.nextID++
	ch := &Chart{
		ID:     c.nextID,
		Width:  c.width,
		Height: c.height,
		Bars:   layout(points, float64(c.width), float64(c.height)),
	}
	c.current = ch
	c.live++
	return ch
}

// Dispose releases the attached chart. Safe to call repeatedly.
func (c *Canvas) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposeLocked()
}

func (c *Canvas) disposeLocked() {
	if c.current == nil {
		return
	}
	c.current.dispose()
	c.current = nil
	c.live--
}

// Current returns the attached chart or nil.
func (c *Canvas) Current() *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Live is the number of charts drawn and not yet disposed. Never more than one.
func (c *Canvas) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

func layout(points []Point, width, height float64) []Bar {
	if len(points) == 0 {
		return nil
	}

	peak := 0.0
	for _, p := range points {
		if p.Value > peak {
			peak = p.Value
		}
	}

	slot := width / float64(len(points))
	w := slot - gap
	if w < 1 {
		w = 1
	}

	bars := make([]Bar, len(points))
	for i, p := range points {
		h := 0.0
		if peak > 0 && p.Value > 0 {
			h = p.Value / peak * height
		}
		bars[i] = Bar{
			Label: p.Label,
			Text:  p.Text,
			X:     float64(i)*slot + gap/2,
			Y:     height - h,
			W:     w,
			H:     h,
		}
	}
	return bars
}
