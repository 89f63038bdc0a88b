// Package stl converts an assembled case into a signed distance field with
// sdfx and tessellates it into a binary STL mesh.
package stl

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/casemk/internal/errors"
	"github.com/piwi3910/casemk/internal/geometry"
)

// DefaultCells controls marching cubes tessellation resolution along the
// longest axis.
const DefaultCells = 200

// Build maps the assembly tree onto sdfx solids.
func Build(a *geometry.Assembly) (sdf.SDF3, error) {
	if err := geometry.Validate(a.Root); err != nil {
		return nil, err
	}
	return toSDF(a.Root)
}

func toSDF(n geometry.Node) (sdf.SDF3, error) {
	switch v := n.(type) {
	case *geometry.Box:
		// sdf.Box3D centers the box at the origin, so we translate by half-dimensions.
		s, err := sdf.Box3D(v3.Vec{X: v.Size.X, Y: v.Size.Y, Z: v.Size.Z}, 0)
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", v.Name, err)
		}
		return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{X: v.Size.X / 2, Y: v.Size.Y / 2, Z: v.Size.Z / 2})), nil

	case *geometry.Cylinder:
		s, err := sdf.Cylinder3D(v.Height, v.Radius, 0)
		if err != nil {
			return nil, fmt.Errorf("cylinder %q: %w", v.Name, err)
		}
		return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: v.Height / 2})), nil

	case *geometry.Translate:
		child, err := toSDF(v.Child)
		if err != nil {
			return nil, err
		}
		return sdf.Transform3D(child, sdf.Translate3d(v3.Vec{X: v.Offset.X, Y: v.Offset.Y, Z: v.Offset.Z})), nil

	case *geometry.Union:
		children, err := toSDFs(v.Children)
		if err != nil {
			return nil, err
		}
		if len(children) == 1 {
			return children[0], nil
		}
		return sdf.Union3D(children...), nil

	case *geometry.Difference:
		base, err := toSDF(v.Base)
		if err != nil {
			return nil, err
		}
		cutters, err := toSDFs(v.Cutters)
		if err != nil {
			return nil, err
		}
		switch len(cutters) {
		case 0:
			return base, nil
		case 1:
			return sdf.Difference3D(base, cutters[0]), nil
		default:
			return sdf.Difference3D(base, sdf.Union3D(cutters...)), nil
		}
	}
	return nil, errors.New(errors.ErrCodeGeometryInfeasible, "unsupported node %T", n)
}

func toSDFs(nodes []geometry.Node) ([]sdf.SDF3, error) {
	out := make([]sdf.SDF3, 0, len(nodes))
	for _, n := range nodes {
		s, err := toSDF(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Mesh tessellates the assembly with marching cubes.
func Mesh(a *geometry.Assembly, cells int) ([]*sdf.Triangle3, error) {
	s, err := Build(a)
	if err != nil {
		return nil, err
	}
	if cells <= 0 {
		cells = DefaultCells
	}
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells)), nil
}

// Save tessellates the assembly and writes it to path as binary STL.
func Save(path string, a *geometry.Assembly, cells int) error {
	mesh, err := Mesh(a, cells)
	if err != nil {
		return err
	}
	if len(mesh) == 0 {
		return errors.New(errors.ErrCodeGeometryInfeasible, "tessellation produced no triangles")
	}
	if err := render.SaveSTL(path, mesh); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}
