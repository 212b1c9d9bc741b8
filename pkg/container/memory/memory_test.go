package memory_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/solidhdf5/pkg/container"
	"github.com/arthur-debert/solidhdf5/pkg/container/memory"
	"github.com/arthur-debert/solidhdf5/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend_EnsureIsNonDestructive(t *testing.T) {
	b := memory.New()
	require.NoError(t, b.Ensure("a.h5"))

	w, err := b.OpenWriter("a.h5")
	require.NoError(t, err)
	require.NoError(t, w.CreateGroup("EA0000", nil))
	require.NoError(t, w.Close())

	require.NoError(t, b.Ensure("a.h5"))

	r, err := b.OpenReader("a.h5")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	_, ok, err := r.Lookup("EA0000")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBackend_OpenMissingOrInaccessible(t *testing.T) {
	b := memory.New()

	_, err := b.OpenReader("missing.h5")
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainerInaccessible))

	b.SetInaccessible("locked.h5")
	assert.True(t, errors.IsErrorCode(b.Ensure("locked.h5"), errors.ErrContainerInaccessible))
	_, err = b.OpenWriter("locked.h5")
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainerInaccessible))
	assert.False(t, b.Exists("locked.h5"))
}

func TestBackend_WriteAndRead(t *testing.T) {
	b := memory.New()
	require.NoError(t, b.Ensure("a.h5"))

	arr, err := container.NewArray([]uint64{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	w, err := b.OpenWriter("a.h5")
	require.NoError(t, err)
	require.NoError(t, w.CreateGroup("S", container.StringAttrs("Project", "p", "Material", "m")))
	require.NoError(t, w.CreateDataset("S/D", arr, container.StringAttrs("Time", "08:30", "Date", "20210223")))

	err = w.CreateDataset("S/D", arr, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNameConflict))
	err = w.CreateDataset("Other/D", arr, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainerWrite))
	require.NoError(t, w.Close())

	// mutating the caller's array after the write must not leak into the store
	arr.Data[0] = 42

	r, err := b.OpenReader("a.h5")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	got, attrs, err := r.ReadArray("S/D")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, got.Data)
	assert.Equal(t, []uint64{2, 2}, got.Shape)
	assert.Equal(t, "Date", attrs[0].Name, "attributes come back in name order")

	_, _, err = r.ReadArray("S/missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNotFound))
	_, _, err = r.ReadArray("nonsense")
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathNotFound))

	groups, err := r.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Material: m, Project: p", groups[0].Attrs.Format())
	require.Len(t, groups[0].Datasets, 1)
	assert.Equal(t, []uint64{2, 2}, groups[0].Datasets[0].Shape)
}

func TestBackend_FailWrites(t *testing.T) {
	b := memory.New()
	require.NoError(t, b.Ensure("a.h5"))
	b.FailWrites("a.h5", stderrors.New("disk full"))

	w, err := b.OpenWriter("a.h5")
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	require.NoError(t, w.CreateGroup("S", nil))
	err = w.CreateDataset("S/D", container.Array{Shape: []uint64{1}, Data: []float64{1}}, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainerWrite))
}

func TestBackend_OpenHandles(t *testing.T) {
	b := memory.New()
	require.NoError(t, b.Ensure("a.h5"))

	r, err := b.OpenReader("a.h5")
	require.NoError(t, err)
	w, err := b.OpenWriter("a.h5")
	require.NoError(t, err)
	assert.Equal(t, 2, b.OpenHandles())

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 0, b.OpenHandles())

	_, err = r.Groups()
	assert.True(t, errors.IsErrorCode(err, errors.ErrContainerRead))
}

func TestBackend_DiscardDropsStagedWrites(t *testing.T) {
	b := memory.New()
	require.NoError(t, b.Ensure("a.h5"))

	w, err := b.OpenWriter("a.h5")
	require.NoError(t, err)
	require.NoError(t, w.CreateGroup("S", container.StringAttrs("Project", "p")))

	r, err := b.OpenReader("a.h5")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	_, ok, err := r.Lookup("S")
	require.NoError(t, err)
	assert.False(t, ok, "staged groups are invisible before Close")

	require.NoError(t, w.Discard())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, b.OpenHandles())

	r2, err := b.OpenReader("a.h5")
	require.NoError(t, err)
	defer func() { _ = r2.Close() }()
	_, ok, err = r2.Lookup("S")
	require.NoError(t, err)
	assert.False(t, ok)
}
