package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/piwi3910/casemk/internal/errors"
)

func TestBounds(t *testing.T) {
	n := &Union{Children: []Node{
		&Box{Size: Vec3{10, 5, 2}},
		&Translate{Offset: Vec3{20, 20, 0}, Child: &Cylinder{Radius: 3, Height: 4}},
	}}
	lo, hi := n.Bounds()
	assert.Equal(t, Vec3{0, 0, 0}, lo)
	assert.Equal(t, Vec3{23, 23, 4}, hi)

	d := &Difference{Base: &Box{Size: Vec3{1, 1, 1}}, Cutters: []Node{&Box{Size: Vec3{5, 5, 5}}}}
	_, hi = d.Bounds()
	assert.Equal(t, Vec3{1, 1, 1}, hi)
}

func TestWalkAndCount(t *testing.T) {
	n := &Difference{
		Name: "outer",
		Base: &Box{Size: Vec3{10, 10, 10}},
		Cutters: []Node{
			&Translate{Child: &Union{Name: "holes", Children: []Node{
				&Cylinder{Radius: 1, Height: 1},
				&Cylinder{Radius: 1, Height: 1},
			}}},
		},
	}

	maxDepth := 0
	Walk(n, func(_ Node, depth int) bool {
		maxDepth = max(maxDepth, depth)
		return true
	})
	assert.Equal(t, 3, maxDepth)
	assert.Equal(t, 2, Count(n, KindCylinder))
	assert.Equal(t, 1, Count(n, KindBox))
	assert.Equal(t, "holes", NameOf(Find(n, "holes")))
	assert.Nil(t, Find(n, "missing"))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(&Box{Size: Vec3{1, 1, 1}}))

	bad := []Node{
		&Box{Size: Vec3{1, 0, 1}},
		&Cylinder{Radius: -1, Height: 1},
		&Translate{},
		&Union{},
		&Difference{Cutters: []Node{&Box{Size: Vec3{1, 1, 1}}}},
	}
	for _, n := range bad {
		err := Validate(n)
		assert.True(t, errors.Is(err, errors.ErrCodeGeometryInfeasible), "%s", n.Kind())
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "difference", KindDifference.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
