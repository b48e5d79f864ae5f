package canvas

// Recorder is an in-memory Device. It backs headless use of a Scene and the
// package tests, and lets callers inspect exactly what a real surface would
// be showing.
type Recorder struct {
	shapes map[string]Shape
}

// Shape is one drawn element as last issued to the device.
type Shape struct {
	Vertex         bool
	X, Y, R        float64 // vertex geometry
	X1, Y1, X2, Y2 float64 // edge geometry
	Label          string
}

// NewRecorder creates an empty recording device.
func NewRecorder() *Recorder {
	return &Recorder{shapes: make(map[string]Shape)}
}

// DrawVertex implements Device.
func (r *Recorder) DrawVertex(id string, x, y, radius float64, label string) error {
	r.shapes[id] = Shape{Vertex: true, X: x, Y: y, R: radius, Label: label}
	return nil
}

// DrawEdge implements Device.
func (r *Recorder) DrawEdge(id string, x1, y1, x2, y2 float64, label string) error {
	r.shapes[id] = Shape{X1: x1, Y1: y1, X2: x2, Y2: y2, Label: label}
	return nil
}

// Erase implements Device.
func (r *Recorder) Erase(id string) error {
	delete(r.shapes, id)
	return nil
}

// Shape returns the drawn shape for an identifier, if present.
func (r *Recorder) Shape(id string) (Shape, bool) {
	s, ok := r.shapes[id]
	return s, ok
}

// Len returns the number of currently drawn shapes.
func (r *Recorder) Len() int { return len(r.shapes) }
