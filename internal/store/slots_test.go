package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gino831/DQA-Environmental-Standard-Checker/internal/standard"
)

func TestSlotsRoundTrip(t *testing.T) {
	kv, _ := setupTestRedis(t)
	slots := NewSlots(kv)
	ctx := context.Background()

	_, ok, err := slots.LoadStandards(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	items := []standard.Standard{{ID: "s1", Name: "IEC 60068-2-1", ExpiryDate: standard.StabilityExpiry(2027)}}
	require.NoError(t, slots.SaveStandards(ctx, items))

	loaded, ok, err := slots.LoadStandards(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, items, loaded)

	require.NoError(t, slots.SaveOrder(ctx, SlotCategoryOrder, []string{"Other", "MOXA Standard"}))
	order, ok, err := slots.LoadOrder(ctx, SlotCategoryOrder)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"Other", "MOXA Standard"}, order)

	_, ok, err = slots.LoadOrder(ctx, SlotSubcategoryOrder)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlotsSaveNilAsEmptyArray(t *testing.T) {
	kv, s := setupTestRedis(t)
	slots := NewSlots(kv)

	require.NoError(t, slots.SaveStandards(context.Background(), nil))
	raw, err := s.Get("dqa:" + SlotStandards)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestSlotsCorruptPayload(t *testing.T) {
	kv, s := setupTestRedis(t)
	require.NoError(t, s.Set("dqa:"+SlotStandards, "{not json"))

	_, _, err := NewSlots(kv).LoadStandards(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode slot dqa_standards")
}
