package cluster

import "testing"

func reviewClusters(names ...string) []Cluster {
	out := make([]Cluster, len(names))
	for i, n := range names {
		out[i] = Cluster{Name: n}
	}
	return out
}

func TestReviewWalk(t *testing.T) {
	r := NewReview(reviewClusters("first", "second", "third"))
	if r.Remaining() != 3 {
		t.Fatalf("remaining = %d, want 3", r.Remaining())
	}

	c, ok := r.Next()
	if !ok || c.Name != "first" {
		t.Fatalf("unexpected first cluster %v %v", c.Name, ok)
	}
	r.Resolve(DecisionAccept)

	if c, _ = r.Next(); c.Name != "second" {
		t.Fatalf("expected second, got %q", c.Name)
	}
	r.Resolve(DecisionReject)

	if c, _ = r.Next(); c.Name != "third" {
		t.Fatalf("expected third, got %q", c.Name)
	}
	r.Resolve(DecisionSkip)

	if _, ok := r.Next(); ok {
		t.Fatal("walk should be exhausted")
	}
	accepted := r.Accepted()
	if len(accepted) != 1 || accepted[0].Name != "first" {
		t.Fatalf("accepted = %+v", accepted)
	}
	if r.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", r.Remaining())
	}
}

func TestReviewRepeatsUntilResolved(t *testing.T) {
	r := NewReview(reviewClusters("only"))

	a, _ := r.Next()
	b, _ := r.Next()
	if a.Name != b.Name {
		t.Fatal("Next advanced without a decision")
	}
	if r.Remaining() != 1 {
		t.Fatalf("remaining = %d, want 1", r.Remaining())
	}
	r.Resolve(DecisionAccept)
	if r.Remaining() != 0 {
		t.Fatalf("remaining = %d, want 0", r.Remaining())
	}
}

func TestReviewResolveWithoutNext(t *testing.T) {
	r := NewReview(reviewClusters("a", "b"))
	r.Resolve(DecisionAccept)
	if len(r.Accepted()) != 0 {
		t.Fatal("Resolve without a pending Next should be ignored")
	}
	if c, _ := r.Next(); c.Name != "a" {
		t.Fatalf("walk should still start at the first cluster, got %q", c.Name)
	}
}
