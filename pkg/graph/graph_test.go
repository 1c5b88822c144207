package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noticehub/noticehub/pkg/types"
)

func seedGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	g.AddService(types.Service{ID: "s3", Name: "AWS S3", Provider: "aws"})
	g.AddSystem(types.System{ID: "checkout", Name: "Checkout"})
	g.AddSystem(types.System{ID: "billing", Name: "Billing"})
	assert.NoError(t, g.AddDependency("checkout", "s3"))
	assert.NoError(t, g.AddDependency("billing", "s3"))
	assert.NoError(t, g.AddDependency("billing", "checkout"))
	return g
}

func TestAddDependencyUnknownNode(t *testing.T) {
	g := New()
	g.AddSystem(types.System{ID: "checkout"})

	err := g.AddDependency("checkout", "s3")
	assert.Error(t, err)
	var unknown *types.UnknownNodeError
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "s3", unknown.ID)

	err = g.AddDependency("ghost", "checkout")
	assert.Error(t, err)
	assert.True(t, errors.As(err, &unknown))
	assert.Equal(t, "ghost", unknown.ID)
}

func TestAddDependencyIdempotent(t *testing.T) {
	g := seedGraph(t)
	gen := g.Generation()

	assert.NoError(t, g.AddDependency("checkout", "s3"))
	assert.Equal(t, gen, g.Generation())
	assert.Equal(t, []string{"billing", "checkout"}, g.DependentsOf("s3"))
}

func TestAllDependentsMinimumHops(t *testing.T) {
	// billing is reachable both directly (1 hop) and through checkout
	// (2 hops); the direct path must win.
	g := seedGraph(t)

	deps, err := g.AllDependents("s3", 0)
	assert.NoError(t, err)
	assert.Equal(t, []Dependent{
		{ID: "billing", Hops: 1},
		{ID: "checkout", Hops: 1},
	}, deps)
}

func TestAllDependentsSharedTargetReportedOnce(t *testing.T) {
	g := New()
	g.AddService(types.Service{ID: "s"})
	g.AddSystem(types.System{ID: "a"})
	g.AddSystem(types.System{ID: "b"})
	assert.NoError(t, g.AddDependency("a", "s"))
	assert.NoError(t, g.AddDependency("b", "s"))
	assert.NoError(t, g.AddDependency("a", "b"))

	deps, err := g.AllDependents("s", 0)
	assert.NoError(t, err)
	assert.Equal(t, []Dependent{
		{ID: "a", Hops: 1},
		{ID: "b", Hops: 1},
	}, deps)
}

func TestAllDependentsCycleTerminates(t *testing.T) {
	g := New()
	g.AddSystem(types.System{ID: "a"})
	g.AddSystem(types.System{ID: "b"})
	assert.NoError(t, g.AddDependency("a", "b"))
	assert.NoError(t, g.AddDependency("b", "a"))

	deps, err := g.AllDependents("a", 0)
	assert.NoError(t, err)
	assert.Equal(t, []Dependent{{ID: "b", Hops: 1}}, deps)

	deps, err = g.AllDependents("b", 0)
	assert.NoError(t, err)
	assert.Equal(t, []Dependent{{ID: "a", Hops: 1}}, deps)
}

func TestAllDependentsMaxDepth(t *testing.T) {
	g := New()
	g.AddService(types.Service{ID: "s"})
	g.AddSystem(types.System{ID: "a"})
	g.AddSystem(types.System{ID: "b"})
	assert.NoError(t, g.AddDependency("a", "s"))
	assert.NoError(t, g.AddDependency("b", "a"))

	deps, err := g.AllDependents("s", 1)
	assert.NoError(t, err)
	assert.Equal(t, []Dependent{{ID: "a", Hops: 1}}, deps)
}

func TestAllDependentsUnknownNode(t *testing.T) {
	g := New()
	_, err := g.AllDependents("nope", 0)
	var unknown *types.UnknownNodeError
	assert.True(t, errors.As(err, &unknown))
}

func TestRemoveDependency(t *testing.T) {
	g := seedGraph(t)
	gen := g.Generation()

	g.RemoveDependency("billing", "s3")
	assert.NotEqual(t, gen, g.Generation())
	assert.Equal(t, []string{"checkout"}, g.DependentsOf("s3"))

	// removing again is a no-op
	gen = g.Generation()
	g.RemoveDependency("billing", "s3")
	assert.Equal(t, gen, g.Generation())
}
