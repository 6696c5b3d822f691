package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/pda-engine/disbursement"
	"github.com/warp/pda-engine/disbursement/store"
	"github.com/warp/pda-engine/ports"
)

func TestMemory_SaveGetListDelete(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.Save(ctx, ports.Standard()))
	require.NoError(t, m.Save(ctx, ports.Chornomorsk()))

	got, err := m.Get(ctx, ports.ProfileChornomorsk)
	require.NoError(t, err)
	assert.Equal(t, "Chornomorsk", got.Port)

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ports.ProfileChornomorsk, all[0].ID)
	assert.Equal(t, ports.ProfileStandard, all[1].ID)

	require.NoError(t, m.Delete(ctx, ports.ProfileChornomorsk))
	_, err = m.Get(ctx, ports.ProfileChornomorsk)
	assert.True(t, errors.Is(err, disbursement.ErrProfileNotFound))

	// Deleting twice is fine
	assert.NoError(t, m.Delete(ctx, ports.ProfileChornomorsk))
}

func TestMemory_RejectsInvalidProfile(t *testing.T) {
	p := ports.Standard()
	p.Brackets = nil

	err := store.NewMemory().Save(context.Background(), p)
	assert.True(t, errors.Is(err, disbursement.ErrInvalidProfile))
}

func TestMemory_StoredTablesAreIsolated(t *testing.T) {
	// GIVEN: A saved profile
	ctx := context.Background()
	m := store.NewMemory()
	p := ports.Standard()
	require.NoError(t, m.Save(ctx, p))

	// WHEN: The caller mutates its copy and a fetched copy
	p.Dues[0].Coefficient = decimal.NewFromInt(99)
	got, err := m.Get(ctx, p.ID)
	require.NoError(t, err)
	got.Brackets[0].Fee = decimal.NewFromInt(1)

	// THEN: The stored profile is unchanged
	again, err := m.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.2784", again.Dues[0].Coefficient.String())
	assert.Equal(t, "1194", again.Brackets[0].Fee.String())
}
