package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCheckAll(t *testing.T) {
	r := NewRegistry()
	r.Register("database", CheckFunc(func(context.Context) error { return nil }))
	r.Register("cache", CheckFunc(func(context.Context) error { return errors.New("connection refused") }))

	assert.Equal(t, []string{"cache", "database"}, r.List())

	results := r.CheckAll(context.Background())
	require.Len(t, results, 2)
	assert.NoError(t, results["database"])
	assert.EqualError(t, results["cache"], "connection refused")
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()
	r.Register("database", CheckFunc(func(context.Context) error { return errors.New("down") }))
	r.Register("database", CheckFunc(func(context.Context) error { return nil }))

	results := r.CheckAll(context.Background())
	assert.NoError(t, results["database"])
	assert.Len(t, r.List(), 1)
}
