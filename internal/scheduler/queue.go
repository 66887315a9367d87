package scheduler

// workQueue holds pending tasks of one classification in FIFO order together
// with the number of tasks of that classification that have been taken but
// not yet completed. It is not safe for concurrent use; all access goes
// through the scheduler's lock.
type workQueue struct {
	items   []Task
	head    int
	running int
}

func (q *workQueue) push(t Task) {
	q.items = append(q.items, t)
}

// pop removes the oldest pending task and marks it running. The slot the
// task occupied is cleared so the queue never retains a reference to a task
// it no longer owns.
func (q *workQueue) pop() (Task, bool) {
	if q.head == len(q.items) {
		return nil, false
	}
	t := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	q.running++
	return t, true
}

// complete records that one previously popped task has finished.
func (q *workQueue) complete() {
	if q.running > 0 {
		q.running--
	}
}

func (q *workQueue) isEmpty() bool { return q.head == len(q.items) }

func (q *workQueue) hasRunning() bool { return q.running > 0 }
