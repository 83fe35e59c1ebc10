package core

import "sync"

// Queue collects tasks posted from any goroutine and runs them on the thread
// that calls Drain. The render thread drains it once per frame, so every
// scene mutation happens on that thread.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
	wake  func()
}

func NewQueue() *Queue {
	return &Queue{}
}

// SetWake installs a hook called after every Post. The window loop uses it
// to leave its event wait while minimised so posted tasks still drain.
func (q *Queue) SetWake(wake func()) {
	q.mu.Lock()
	q.wake = wake
	q.mu.Unlock()
}

func (q *Queue) Post(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	wake := q.wake
	q.mu.Unlock()
	if wake != nil {
		wake()
	}
}

// Drain runs every task posted so far in FIFO order and returns how many ran.
// Tasks posted while draining run on the next call.
func (q *Queue) Drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks)
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
