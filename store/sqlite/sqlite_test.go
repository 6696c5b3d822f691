package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/ports"
	"github.com/warp/pda-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// TARIFF STORE TESTS
// =============================================================================

func TestStore_SaveAndGet(t *testing.T) {
	// GIVEN: The standard profile saved
	// WHEN: Reading it back
	// THEN: Tables come back intact and calculate the same
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.Standard()))

	got, err := store.Get(ctx, ports.ProfileStandard)
	require.NoError(t, err)
	assert.Len(t, got.Dues, 16)
	assert.Len(t, got.Brackets, 16)

	calc, err := disbursement.NewCalculator(*got)
	require.NoError(t, err)
	in := disbursement.DefaultInputs()
	in.LBP, in.Beam, in.RDM = "100", "20", "8"
	result, err := calc.Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "19443.5408", result.GrandTotal.String())
}

func TestStore_SaveBumpsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := ports.Chornomorsk()
	require.NoError(t, store.Save(ctx, p))

	rec, err := store.Record(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)
	assert.Equal(t, "Chornomorsk", rec.Port)

	p.Name = "Chornomorsk 2026"
	require.NoError(t, store.Save(ctx, p))

	rec, err = store.Record(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, "Chornomorsk 2026", rec.Name)
	assert.False(t, rec.UpdatedAt.Before(rec.CreatedAt))
}

func TestStore_ListOrderedByID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, ports.Standard()))
	require.NoError(t, store.Save(ctx, ports.Chornomorsk()))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ports.ProfileChornomorsk, all[0].ID)
	assert.Equal(t, ports.ProfileStandard, all[1].ID)
}

func TestStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "atlantis")
	assert.True(t, errors.Is(err, disbursement.ErrProfileNotFound))
	assert.True(t, disbursement.IsNotFound(err))
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, ports.Standard()))

	require.NoError(t, store.Delete(ctx, ports.ProfileStandard))

	_, err := store.Get(ctx, ports.ProfileStandard)
	assert.True(t, errors.Is(err, disbursement.ErrProfileNotFound))
}

func TestStore_RejectsInvalidProfile(t *testing.T) {
	store := newTestStore(t)
	p := ports.Standard()
	p.Dues[0].TaxIncluded = true

	err := store.Save(context.Background(), p)
	assert.True(t, errors.Is(err, disbursement.ErrInvalidProfile))

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_Reset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, ports.Standard()))

	require.NoError(t, store.Reset(ctx))

	recs, err := store.Records(ctx)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
