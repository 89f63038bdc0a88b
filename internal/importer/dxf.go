package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/casemk/internal/model"
)

// point is a 2D drawing coordinate in millimetres.
type point struct{ x, y float64 }

// segment is a line between two points, used for chaining loose LINE and
// ARC entities into closed outlines.
type segment struct{ start, end point }

// chainTolerance is the largest endpoint gap treated as connected.
const chainTolerance = 0.01

// ImportDXF reads item footprints from a DXF top-view drawing. Every closed
// shape (LWPOLYLINE, CIRCLE or chain of LINEs and ARCs) contributes its
// bounding box at the given height; shapes with the same footprint are
// merged into one item with a count.
func ImportDXF(path string, height float64) ImportResult {
	result := ImportResult{}

	if height <= 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("DXF item height must be positive, got %g", height))
		return result
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines [][]point
	var segments []segment

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			outline := lwPolylinePoints(e)
			if len(outline) >= 3 {
				outlines = append(outlines, outline)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			c := e.Center
			outlines = append(outlines, []point{
				{c[0] - e.Radius, c[1] - e.Radius},
				{c[0] + e.Radius, c[1] + e.Radius},
				{c[0] - e.Radius, c[1] + e.Radius},
			})

		case *entity.Arc:
			segments = append(segments, pointsToSegments(arcPoints(e, 32))...)

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	outlines = append(outlines, chainSegments(segments, chainTolerance)...)

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	index := map[[2]float64]int{}
	for _, outline := range outlines {
		w, l := boundingSize(outline)
		if w < chainTolerance || l < chainTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", w, l))
			continue
		}
		key := [2]float64{round2(w), round2(l)}
		if i, ok := index[key]; ok {
			result.Items[i].Count++
			continue
		}
		index[key] = len(result.Items)
		label := fmt.Sprintf("DXF Item %d", len(result.Items)+1)
		result.Items = append(result.Items, model.NewItem(label, model.Dimension{Width: key[0], Length: key[1], Height: height}, 1))
	}

	return result
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// lwPolylinePoints converts a LWPOLYLINE to points. Bulged vertices are
// interpolated along their arc so the bounding box includes the bulge.
func lwPolylinePoints(lw *entity.LwPolyline) []point {
	var pts []point
	for i, v := range lw.Vertices {
		current := point{v[0], v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			pts = append(pts, current)
			continue
		}
		n := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgePoints(current, point{n[0], n[1]}, bulge, 32)
		pts = append(pts, arc[:len(arc)-1]...)
	}
	return pts
}

// bulgePoints samples the arc between two vertices with the given DXF bulge
// (tangent of a quarter of the included angle, positive counter-clockwise).
func bulgePoints(p1, p2 point, bulge float64, n int) []point {
	dx, dy := p2.x-p1.x, p2.y-p1.y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	px, py := -dy/chord, dx/chord
	if bulge > 0 {
		px, py = -px, -py
	}
	dist := radius - sagitta
	cx := (p1.x+p2.x)/2 + px*dist
	cy := (p1.y+p2.y)/2 + py*dist

	start := math.Atan2(p1.y-cy, p1.x-cx)
	end := math.Atan2(p2.y-cy, p2.x-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	}
	if bulge > 0 && end < start {
		end += 2 * math.Pi
	}

	pts := make([]point, n+1)
	for i := range pts {
		a := start + float64(i)/float64(n)*(end-start)
		pts[i] = point{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

// arcPoints samples a DXF ARC counter-clockwise from its start angle.
func arcPoints(a *entity.Arc, n int) []point {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}

	pts := make([]point, n+1)
	for i := range pts {
		t := start + float64(i)/float64(n)*(end-start)
		pts[i] = point{cx + r*math.Cos(t), cy + r*math.Sin(t)}
	}
	return pts
}

func pointsToSegments(pts []point) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{pts[i], pts[i+1]})
	}
	return segs
}

// chainSegments connects segments end to end and returns the closed chains.
// Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) [][]point {
	used := make([]bool, len(segs))
	var outlines [][]point

	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []point{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.x-b.x, a.y-b.y) <= tolerance
}

func boundingSize(pts []point) (w, l float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	return maxX - minX, maxY - minY
}
