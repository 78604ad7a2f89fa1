package executor

// taskQueue is a min-heap of suspended tasks ordered by deadline, then by the
// order in which they were enqueued.
type taskQueue []*T

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x any) {
	t := x.(*T)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *taskQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

func (q taskQueue) peek() *T {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
