package crawler

// Frontier is the FIFO queue of discovered-but-not-yet-visited URLs for one
// scan, with membership sets for O(1) dedup. It lives for the duration of a
// single scan and is discarded with it; nothing is shared across scans.
type Frontier struct {
	queue   []string
	queued  map[string]struct{}
	visited map[string]struct{}
}

func NewFrontier() *Frontier {
	return &Frontier{
		queued:  make(map[string]struct{}),
		visited: make(map[string]struct{}),
	}
}

// Push enqueues a normalized URL unless it is already queued or was visited.
// Returns true when the URL was accepted.
func (f *Frontier) Push(u string) bool {
	if _, ok := f.queued[u]; ok {
		return false
	}
	if _, ok := f.visited[u]; ok {
		return false
	}
	f.queued[u] = struct{}{}
	f.queue = append(f.queue, u)
	return true
}

// Pop removes and returns the oldest queued URL
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queued, u)
	return u, true
}

// MarkVisited records that a URL got its one fetch attempt for this scan
func (f *Frontier) MarkVisited(u string) {
	f.visited[u] = struct{}{}
}

func (f *Frontier) Len() int {
	return len(f.queue)
}

// Discovered is the number of distinct URLs seen so far, visited or queued
func (f *Frontier) Discovered() int {
	return len(f.visited) + len(f.queue)
}
