package useragent

import "testing"

func TestPool_NextRoundRobin(t *testing.T) {
	agents := []string{"A/1.0", "B/2.0", "C/3.0"}
	p := NewPool(agents)

	for i := 0; i < 7; i++ {
		want := agents[i%len(agents)]
		if got := p.Next(); got != want {
			t.Errorf("call %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestPool_EmptyFallsBackToDefault(t *testing.T) {
	p := NewPool(nil)
	if got := p.Next(); got == "" {
		t.Errorf("expected a default agent, got empty string")
	}
	if len(p.All()) != len(DefaultPool) {
		t.Errorf("expected default pool size %d, got %d", len(DefaultPool), len(p.All()))
	}
}

func TestPool_RandomStaysInPool(t *testing.T) {
	agents := []string{"A/1.0", "B/2.0"}
	p := NewPool(agents)

	members := map[string]bool{"A/1.0": true, "B/2.0": true}
	for i := 0; i < 20; i++ {
		if ua := p.Random(); !members[ua] {
			t.Fatalf("random agent %q not in pool", ua)
		}
	}
}

func TestPool_AllReturnsCopy(t *testing.T) {
	p := NewPool([]string{"A/1.0"})
	all := p.All()
	all[0] = "mutated"
	if got := p.Next(); got != "A/1.0" {
		t.Errorf("pool mutated through All copy: %q", got)
	}
}
