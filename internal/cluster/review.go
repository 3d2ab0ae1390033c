package cluster

// Decision is the user's resolution for one presented cluster.
type Decision int

const (
	// DecisionSkip leaves the cluster alone for this run only.
	DecisionSkip Decision = iota
	// DecisionAccept queues the cluster for trip creation.
	DecisionAccept
	// DecisionReject declines the grouping permanently (the caller records
	// per-item rejections).
	DecisionReject
)

// Review is a resumable walk over pending clusters: Next yields the cluster
// awaiting a decision, Resolve records the choice and advances. Strictly
// sequential so the interactive decision stays simple. Abandoning the walk
// early keeps whatever was accepted up to that point.
type Review struct {
	pending  []Cluster
	idx      int
	yielded  bool
	accepted []Cluster
}

func NewReview(clusters []Cluster) *Review {
	return &Review{pending: clusters}
}

// Next returns the cluster currently awaiting a decision. The same cluster
// is returned until Resolve is called.
func (r *Review) Next() (Cluster, bool) {
	if r.idx >= len(r.pending) {
		return Cluster{}, false
	}
	r.yielded = true
	return r.pending[r.idx], true
}

// Resolve records the decision for the cluster last returned by Next.
// Calling it without a pending Next is a no-op.
func (r *Review) Resolve(d Decision) {
	if !r.yielded {
		return
	}
	if d == DecisionAccept {
		r.accepted = append(r.accepted, r.pending[r.idx])
	}
	r.idx++
	r.yielded = false
}

// Remaining reports how many clusters still await a decision.
func (r *Review) Remaining() int {
	return len(r.pending) - r.idx
}

// Accepted returns the clusters queued for creation, in presentation order.
func (r *Review) Accepted() []Cluster {
	return r.accepted
}
