package ansimake

// cluster is a group of observed colors sharing one representative. The
// representative is the first color assigned and never moves afterwards,
// so colors already mapped to a cluster stay within tolerance of it.
type cluster struct {
	rep    Color
	repLab Lab
}

// Quantizer reduces observed colors to clusters whose members lie within
// a delta-E tolerance of a shared representative. Assignment is order
// dependent: colors must be fed in a stable order (the converter uses
// first appearance in the cell grid, row-major, foreground before
// background) for output to be reproducible.
type Quantizer struct {
	tolerance float64
	clusters  []cluster
	assigned  map[Color]Color
}

// NewQuantizer returns a quantizer for the given tolerance. A tolerance
// of zero or below disables clustering entirely.
func NewQuantizer(tolerance float64) *Quantizer {
	return &Quantizer{
		tolerance: tolerance,
		assigned:  make(map[Color]Color),
	}
}

// Lookup returns the representative for c, assigning it to the nearest
// existing cluster within tolerance or creating a new singleton cluster.
// Ties between equally near clusters go to the earliest-created one.
func (q *Quantizer) Lookup(c Color) Color {
	if q.tolerance <= 0 {
		return c
	}

	key := Color{R: c.R, G: c.G, B: c.B}
	if rep, ok := q.assigned[key]; ok {
		return rep
	}

	lab := key.ToLab()
	best := -1
	bestDist := 0.0
	for i, cl := range q.clusters {
		d := lab.Distance(cl.repLab)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best >= 0 && bestDist <= q.tolerance {
		rep := q.clusters[best].rep
		q.assigned[key] = rep
		return rep
	}

	q.clusters = append(q.clusters, cluster{rep: key, repLab: lab})
	q.assigned[key] = key
	return key
}

// Clusters reports how many clusters formed so far.
func (q *Quantizer) Clusters() int {
	return len(q.clusters)
}

// Quantize maps each input color to its cluster representative, feeding
// colors to a fresh Quantizer in slice order. With tolerance <= 0 the
// returned mapping is the identity.
func Quantize(colors []Color, tolerance float64) map[Color]Color {
	q := NewQuantizer(tolerance)
	out := make(map[Color]Color, len(colors))
	for _, c := range colors {
		key := Color{R: c.R, G: c.G, B: c.B}
		out[key] = q.Lookup(key)
	}
	return out
}
