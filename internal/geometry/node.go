// Package geometry assembles a storage case as a constructive solid geometry
// tree. The tree uses a small set of primitives (Box, Cylinder) and
// operations (Translate, Union, Difference) that every emitter maps directly
// onto its own backend.
package geometry

import (
	"fmt"
	"math"

	"github.com/piwi3910/casemk/internal/errors"
)

// Vec3 is a point or an extent in mm.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Kind tags the variant of a Node.
type Kind int

const (
	KindBox Kind = iota
	KindCylinder
	KindTranslate
	KindUnion
	KindDifference
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindCylinder:
		return "cylinder"
	case KindTranslate:
		return "translate"
	case KindUnion:
		return "union"
	case KindDifference:
		return "difference"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Node is one element of the CSG tree. The set of implementations is
// closed: *Box, *Cylinder, *Translate, *Union and *Difference.
type Node interface {
	Kind() Kind
	// Bounds returns the axis-aligned bounding box of the solid.
	Bounds() (lo, hi Vec3)
	sealed()
}

// Box is a rectangular solid with its minimum corner at the origin.
type Box struct {
	Name string
	Size Vec3
}

// Cylinder stands on z=0 with its axis on Z through the origin.
type Cylinder struct {
	Name   string
	Radius float64
	Height float64
}

// Translate moves its child by Offset.
type Translate struct {
	Offset Vec3
	Child  Node
}

// Union is the combination of all children.
type Union struct {
	Name     string
	Children []Node
}

// Difference is Base with every cutter removed.
type Difference struct {
	Name    string
	Base    Node
	Cutters []Node
}

func (*Box) Kind() Kind        { return KindBox }
func (*Cylinder) Kind() Kind   { return KindCylinder }
func (*Translate) Kind() Kind  { return KindTranslate }
func (*Union) Kind() Kind      { return KindUnion }
func (*Difference) Kind() Kind { return KindDifference }

func (*Box) sealed()        {}
func (*Cylinder) sealed()   {}
func (*Translate) sealed()  {}
func (*Union) sealed()      {}
func (*Difference) sealed() {}

func (b *Box) Bounds() (lo, hi Vec3) { return Vec3{}, b.Size }

func (c *Cylinder) Bounds() (lo, hi Vec3) {
	return Vec3{-c.Radius, -c.Radius, 0}, Vec3{c.Radius, c.Radius, c.Height}
}

func (t *Translate) Bounds() (lo, hi Vec3) {
	lo, hi = t.Child.Bounds()
	return lo.Add(t.Offset), hi.Add(t.Offset)
}

func (u *Union) Bounds() (lo, hi Vec3) {
	for i, c := range u.Children {
		clo, chi := c.Bounds()
		if i == 0 {
			lo, hi = clo, chi
			continue
		}
		lo = Vec3{math.Min(lo.X, clo.X), math.Min(lo.Y, clo.Y), math.Min(lo.Z, clo.Z)}
		hi = Vec3{math.Max(hi.X, chi.X), math.Max(hi.Y, chi.Y), math.Max(hi.Z, chi.Z)}
	}
	return lo, hi
}

func (d *Difference) Bounds() (lo, hi Vec3) { return d.Base.Bounds() }

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the current node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	switch v := n.(type) {
	case *Translate:
		walk(v.Child, depth+1, fn)
	case *Union:
		for _, c := range v.Children {
			walk(c, depth+1, fn)
		}
	case *Difference:
		walk(v.Base, depth+1, fn)
		for _, c := range v.Cutters {
			walk(c, depth+1, fn)
		}
	}
}

// Count returns how many nodes of kind k the tree contains.
func Count(n Node, k Kind) int {
	total := 0
	Walk(n, func(n Node, _ int) bool {
		if n.Kind() == k {
			total++
		}
		return true
	})
	return total
}

// Find returns the first Union or Difference called name, or nil.
func Find(n Node, name string) Node {
	var found Node
	Walk(n, func(n Node, _ int) bool {
		if found != nil {
			return false
		}
		if NameOf(n) == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// NameOf returns the optional name of a node.
func NameOf(n Node) string {
	switch v := n.(type) {
	case *Box:
		return v.Name
	case *Cylinder:
		return v.Name
	case *Union:
		return v.Name
	case *Difference:
		return v.Name
	}
	return ""
}

// Validate checks that the tree is complete and that every primitive has a
// positive finite size.
func Validate(n Node) error {
	var err error
	Walk(n, func(n Node, _ int) bool {
		if err != nil {
			return false
		}
		switch v := n.(type) {
		case nil:
			err = errors.New(errors.ErrCodeGeometryInfeasible, "missing node")
		case *Box:
			if !pos(v.Size.X) || !pos(v.Size.Y) || !pos(v.Size.Z) {
				err = errors.New(errors.ErrCodeGeometryInfeasible, "box %q has non-positive size %+v", v.Name, v.Size)
			}
		case *Cylinder:
			if !pos(v.Radius) || !pos(v.Height) {
				err = errors.New(errors.ErrCodeGeometryInfeasible, "cylinder %q has non-positive size r=%g h=%g", v.Name, v.Radius, v.Height)
			}
		case *Translate:
			if v.Child == nil {
				err = errors.New(errors.ErrCodeGeometryInfeasible, "translate without child")
			}
		case *Union:
			if len(v.Children) == 0 {
				err = errors.New(errors.ErrCodeGeometryInfeasible, "union %q has no children", v.Name)
			}
			for _, c := range v.Children {
				if c == nil {
					err = errors.New(errors.ErrCodeGeometryInfeasible, "union %q has a missing child", v.Name)
				}
			}
		case *Difference:
			if v.Base == nil {
				err = errors.New(errors.ErrCodeGeometryInfeasible, "difference %q has no base", v.Name)
			}
			for _, c := range v.Cutters {
				if c == nil {
					err = errors.New(errors.ErrCodeGeometryInfeasible, "difference %q has a missing cutter", v.Name)
				}
			}
		}
		return err == nil
	})
	return err
}

func pos(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
