package ingress

import "testing"

func TestValidCIDRsNoInput(t *testing.T) {
	got := ValidCIDRs(nil)
	if len(got) != 1 || got[0] != "0.0.0.0/0" {
		t.Fatalf("expected allow-all fallback, got %v", got)
	}
}

func TestValidCIDRsDropsInvalid(t *testing.T) {
	got := ValidCIDRs([]string{"10.0.0.256", "192.168.1.0/33"})
	if len(got) != 1 || got[0] != "0.0.0.0/0" {
		t.Fatalf("expected allow-all fallback when every entry is invalid, got %v", got)
	}
}

func TestValidCIDRsSortedDeduped(t *testing.T) {
	got := ValidCIDRs([]string{"10.0.0.1", "192.168.1.0/24", "10.0.0.1", "10.0.0.255"})
	want := []string{"10.0.0.1", "10.0.0.255", "192.168.1.0/24"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMiddlewaresEqual(t *testing.T) {
	if !middlewaresEqual(middlewareRefs([]string{"a", "b"}), []string{"a", "b"}) {
		t.Fatal("expected equal middleware lists to compare equal")
	}
	if middlewaresEqual(middlewareRefs([]string{"a"}), []string{"a", "b"}) {
		t.Fatal("expected mismatched lengths to compare unequal")
	}
}
