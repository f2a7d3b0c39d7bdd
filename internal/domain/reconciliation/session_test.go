package reconciliation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, SessionStatusDraft.CanTransitionTo(SessionStatusSubmitted))
	assert.False(t, SessionStatusSubmitted.CanTransitionTo(SessionStatusDraft))
	assert.False(t, SessionStatusSubmitted.CanTransitionTo(SessionStatusSubmitted))
	assert.False(t, SessionStatusDraft.CanTransitionTo(SessionStatusDraft))
}

func TestNewSession(t *testing.T) {
	actor := uuid.New()

	t.Run("starts as draft with opened event", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)
		assert.Equal(t, SessionStatusDraft, s.Status)
		assert.Equal(t, actor, s.CreatedBy)
		assert.Empty(t, s.Items)
		require.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSessionOpened, s.GetDomainEvents()[0].EventType())
	})

	t.Run("requires an actor", func(t *testing.T) {
		_, err := NewSession(uuid.Nil)
		assert.Error(t, err)
	})
}

func TestSession_AddItem(t *testing.T) {
	actor := uuid.New()
	skuID := uuid.New()

	t.Run("snapshots system quantity", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)

		require.NoError(t, s.AddItem(skuID, "TEE-BLK-M", 50))
		require.Len(t, s.Items, 1)
		assert.Equal(t, int64(50), s.Items[0].SystemQuantity)
		assert.Nil(t, s.Items[0].PhysicalQuantity)
		assert.Nil(t, s.Items[0].Variance)
		assert.Equal(t, 1, s.TotalItems)
	})

	t.Run("rejects duplicate sku", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(skuID, "TEE-BLK-M", 50))
		assert.Error(t, s.AddItem(skuID, "TEE-BLK-M", 50))
	})

	t.Run("rejects once submitted", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(skuID, "TEE-BLK-M", 50))
		require.NoError(t, s.MarkSubmitted())
		assert.Error(t, s.AddItem(uuid.New(), "TEE-BLK-L", 10))
	})
}

func TestSession_RecordItemCount(t *testing.T) {
	actor := uuid.New()

	newDraft := func(t *testing.T, systemQty int64) *Session {
		s, err := NewSession(actor)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(uuid.New(), "TEE-BLK-M", systemQty))
		return s
	}

	t.Run("computes variance from physical minus system", func(t *testing.T) {
		s := newDraft(t, 50)
		require.NoError(t, s.RecordItemCount(s.Items[0].ID, 47, nil, nil))

		require.NotNil(t, s.Items[0].Variance)
		assert.Equal(t, int64(-3), *s.Items[0].Variance)
		assert.Equal(t, 1, s.CountedItems)
		assert.Equal(t, 1, s.VarianceItems)
	})

	t.Run("zero variance counts as counted, not adjustable", func(t *testing.T) {
		s := newDraft(t, 7)
		require.NoError(t, s.RecordItemCount(s.Items[0].ID, 7, nil, nil))

		require.NotNil(t, s.Items[0].Variance)
		assert.Equal(t, int64(0), *s.Items[0].Variance)
		assert.Equal(t, 1, s.CountedItems)
		assert.Equal(t, 0, s.VarianceItems)
		assert.Empty(t, s.AdjustableItems())
	})

	t.Run("last write wins", func(t *testing.T) {
		s := newDraft(t, 50)
		require.NoError(t, s.RecordItemCount(s.Items[0].ID, 40, nil, nil))
		require.NoError(t, s.RecordItemCount(s.Items[0].ID, 48, nil, nil))

		assert.Equal(t, int64(-2), *s.Items[0].Variance)
		assert.Equal(t, 1, s.CountedItems)
	})

	t.Run("rejects negative physical quantity", func(t *testing.T) {
		s := newDraft(t, 50)
		assert.Error(t, s.RecordItemCount(s.Items[0].ID, -1, nil, nil))
	})

	t.Run("unknown item returns not found", func(t *testing.T) {
		s := newDraft(t, 50)
		assert.Error(t, s.RecordItemCount(uuid.New(), 10, nil, nil))
	})

	t.Run("rejected once submitted", func(t *testing.T) {
		s := newDraft(t, 50)
		itemID := s.Items[0].ID
		require.NoError(t, s.MarkSubmitted())
		assert.Error(t, s.RecordItemCount(itemID, 10, nil, nil))
	})
}

func TestSession_MarkSubmitted(t *testing.T) {
	actor := uuid.New()

	t.Run("flips to submitted exactly once", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(uuid.New(), "TEE-BLK-M", 5))

		require.NoError(t, s.MarkSubmitted())
		assert.Equal(t, SessionStatusSubmitted, s.Status)
		assert.NotNil(t, s.SubmittedAt)

		assert.Error(t, s.MarkSubmitted())
	})

	t.Run("raises submitted event", func(t *testing.T) {
		s, err := NewSession(actor)
		require.NoError(t, err)
		require.NoError(t, s.AddItem(uuid.New(), "TEE-BLK-M", 5))
		require.NoError(t, s.RecordItemCount(s.Items[0].ID, 3, nil, nil))
		s.ClearDomainEvents()

		require.NoError(t, s.MarkSubmitted())
		require.Len(t, s.GetDomainEvents(), 1)
		evt, ok := s.GetDomainEvents()[0].(*SessionSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, 1, evt.VarianceItems)
		assert.Len(t, evt.AdjustedSkus, 1)
	})
}

func TestSession_ValidateForSubmit(t *testing.T) {
	actor := uuid.New()
	s, err := NewSession(actor)
	require.NoError(t, err)
	require.NoError(t, s.AddItem(uuid.New(), "TEE-BLK-M", 50))
	require.NoError(t, s.RecordItemCount(s.Items[0].ID, 47, nil, nil))

	assert.NoError(t, s.ValidateForSubmit())

	// Force the structurally impossible state the validator guards against
	s.Items[0].PhysicalQuantity = nil
	err = s.ValidateForSubmit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEE-BLK-M")
}

func TestItem_RecordCount(t *testing.T) {
	item := NewItem(uuid.New(), uuid.New(), "TEE-BLK-M", 10)

	reason := "shrinkage"
	notes := "two damaged"
	require.NoError(t, item.RecordCount(8, &reason, &notes))

	require.NotNil(t, item.PhysicalQuantity)
	assert.Equal(t, int64(8), *item.PhysicalQuantity)
	assert.Equal(t, int64(-2), *item.Variance)
	assert.Equal(t, "shrinkage", *item.AdjustmentReason)
	assert.True(t, item.HasVariance())
	assert.True(t, item.IsCounted())
}
