package platform_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderguard/renderguard/internal/platform"
)

func TestStaticResolver(t *testing.T) {
	r := platform.NewStaticResolver()
	r.Register("visual.a", "layout.b")

	res, err := r.Resolve("visual.a")
	require.NoError(t, err)
	assert.NoError(t, res.Load())

	_, err = r.Resolve("visual.missing")
	var resErr *platform.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.Equal(t, "visual.missing", resErr.Name)

	r.Remove("visual.a")
	_, err = r.Resolve("visual.a")
	assert.Error(t, err)
}

func TestStaticResolver_Broken(t *testing.T) {
	r := platform.NewStaticResolver()
	loadErr := errors.New("decode failed")
	r.RegisterBroken("visual.a", loadErr)

	res, err := r.Resolve("visual.a")
	require.NoError(t, err)
	assert.ErrorIs(t, res.Load(), loadErr)
}

func TestResourceError_Unwrap(t *testing.T) {
	inner := errors.New("decode failed")
	err := fmt.Errorf("validate: %w", &platform.ResourceError{Name: "visual.a", Err: inner})

	var resErr *platform.ResourceError
	require.ErrorAs(t, err, &resErr)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, resErr.Error(), "visual.a")
}

func TestComponentError_Unwrap(t *testing.T) {
	err := &platform.ComponentError{ComponentID: "card.summary", Err: platform.ErrIllegalState}

	assert.ErrorIs(t, err, platform.ErrIllegalState)
	assert.Contains(t, err.Error(), "card.summary")
}

func TestCollectDeviceSnapshot(t *testing.T) {
	snap := platform.CollectDeviceSnapshot()

	assert.NotZero(t, snap.NumGoroutine)
	assert.NotZero(t, snap.HeapAllocBytes)
	assert.NotEmpty(t, snap.GoVersion)
}
