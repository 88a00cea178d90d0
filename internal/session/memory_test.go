package session

import "testing"

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()

	if store.Get(1) != nil {
		t.Fatal("expected no session before Begin")
	}
	if store.InProgress(1) {
		t.Fatal("expected no conversation in progress")
	}

	sess := store.Begin(1, StageWaybillVehicle)
	if sess == nil || sess.Stage != StageWaybillVehicle {
		t.Fatalf("Begin returned %+v", sess)
	}
	if !store.InProgress(1) {
		t.Fatal("expected conversation in progress after Begin")
	}

	// mutations through the returned pointer are visible on Get
	sess.Stage = StageWaybillStartTime
	if got := store.Get(1); got.Stage != StageWaybillStartTime {
		t.Fatalf("Get after mutation = %v", got.Stage)
	}

	store.Clear(1)
	if store.Get(1) != nil || store.InProgress(1) {
		t.Fatal("expected session removed after Clear")
	}
}

func TestMemoryStoreBeginReplacesPrevious(t *testing.T) {
	store := NewMemoryStore()
	first := store.Begin(7, StageVehicleNumber)
	first.Veh = &VehicleDraft{Number: "A001AA"}

	second := store.Begin(7, StageSearchQuery)
	if second.Veh != nil {
		t.Fatal("expected fresh session without leaked draft")
	}
	if got := store.Get(7); got.Stage != StageSearchQuery {
		t.Fatalf("stage = %v, expected search query", got.Stage)
	}
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := NewMemoryStore()
	store.Begin(1, StageVehicleNumber)
	if store.InProgress(2) {
		t.Fatal("user 2 must not see user 1's session")
	}
}
