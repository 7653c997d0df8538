package roles

import "testing"

func TestResolve(t *testing.T) {
	gate := NewGate([]int64{1, 2}, []int64{10, 11})

	if got := gate.Resolve(1); got != Manager {
		t.Errorf("Resolve(1) = %v, want manager", got)
	}
	if got := gate.Resolve(10); got != Seller {
		t.Errorf("Resolve(10) = %v, want seller", got)
	}
	if got := gate.Resolve(99); got != None {
		t.Errorf("Resolve(99) = %v, want none", got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	gate := NewGate([]int64{1}, []int64{2})
	for i := 0; i < 100; i++ {
		if gate.Resolve(1) != Manager || gate.Resolve(2) != Seller || gate.Resolve(3) != None {
			t.Fatal("Resolve is not deterministic")
		}
	}
}

func TestEmptyGate(t *testing.T) {
	gate := NewGate(nil, nil)
	if gate.Known(1) {
		t.Error("empty gate should know nobody")
	}
	if gate.IsManager(1) || gate.IsSeller(1) {
		t.Error("empty gate granted a role")
	}
}
