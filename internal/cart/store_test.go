package cart

import (
	"testing"

	"shopfront/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func productA() model.Product {
	return model.Product{ID: "a", Name: "Posture Corrector Pro", Price: 2999, IsActive: true}
}

func productB() model.Product {
	return model.Product{ID: "b", Name: "Ergonomic Seat Cushion", Price: 4999, IsActive: true}
}

// totalが常にprice×quantityの合計と一致するか、変異のたびに確かめる
func TestStore_TotalAlwaysRecomputed(t *testing.T) {
	s := NewStore()
	sid := "s1"

	check := func() {
		snap := s.Snapshot(sid)
		var want int64 = 0
		for _, e := range snap.Items {
			want += e.Product.Price * e.Quantity
		}
		assert.Equal(t, want, snap.Total)
	}

	s.Add(sid, productA())
	check()
	s.Add(sid, productB())
	check()
	s.Add(sid, productA())
	check()
	s.SetQuantity(sid, "b", 3)
	check()
	s.Remove(sid, "a")
	check()
	s.SetQuantity(sid, "b", 0)
	check()
}

func TestStore_AddDuplicateIncrementsQuantity(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.Add(sid, productA())

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, int64(2), snap.Items[0].Quantity)
}

func TestStore_SetQuantityZeroRemoves(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.SetQuantity(sid, "a", 0)

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 0)
	assert.Equal(t, int64(0), snap.Total)
}

// 存在しない明細へのSetQuantityはno-op（新規明細を作らない）
func TestStore_SetQuantityUnknownIsNoop(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.SetQuantity(sid, "zzz", 5)

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 1)
	assert.Equal(t, "a", snap.Items[0].Product.ID)
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.Remove(sid, "zzz")

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 1)
}

// A（€29.99）×2 + B（€49.99）×1 = €109.97
func TestStore_TotalScenario(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.Add(sid, productA())
	s.Add(sid, productB())

	snap := s.Snapshot(sid)
	assert.Equal(t, int64(10997), snap.Total)
}

func TestStore_ClearEmptiesButKeepsVisibility(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	s.ToggleVisibility(sid)
	s.Clear(sid)

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 0)
	assert.Equal(t, int64(0), snap.Total)
	//開閉フラグは触らない
	assert.True(t, snap.IsOpen)
}

func TestStore_ToggleVisibilityDoesNotTouchEntries(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	before := s.Snapshot(sid)

	s.ToggleVisibility(sid)
	after := s.Snapshot(sid)

	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Total, after.Total)
	assert.True(t, after.IsOpen)
}

// Snapshotはコピー。後からの変異で変わらない
func TestStore_SnapshotIsIsolated(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productA())
	snap := s.Snapshot(sid)

	s.Add(sid, productB())
	s.SetQuantity(sid, "a", 9)

	assert.Len(t, snap.Items, 1)
	assert.Equal(t, int64(1), snap.Items[0].Quantity)
	assert.Equal(t, int64(2999), snap.Total)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := NewStore()

	s.Add("s1", productA())
	s.Add("s2", productB())

	assert.Equal(t, int64(2999), s.Snapshot("s1").Total)
	assert.Equal(t, int64(4999), s.Snapshot("s2").Total)
}

// 挿入順が保たれるか
func TestStore_InsertionOrderPreserved(t *testing.T) {
	s := NewStore()
	sid := "s1"

	s.Add(sid, productB())
	s.Add(sid, productA())
	s.Add(sid, productB())

	snap := s.Snapshot(sid)
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, "b", snap.Items[0].Product.ID)
	assert.Equal(t, "a", snap.Items[1].Product.ID)
}
