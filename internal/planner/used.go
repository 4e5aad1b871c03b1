package planner

// UsedContent accumulates content ids consumed by one plan build. It is
// owned by a single assembly run and is not safe for concurrent use.
type UsedContent struct {
	counts map[string]int
}

func NewUsedContent() *UsedContent {
	return &UsedContent{counts: make(map[string]int)}
}

func (u *UsedContent) MarkUsed(id string) {
	if id == "" {
		return
	}
	u.counts[id]++
}

func (u *UsedContent) IsUsed(id string) bool {
	return u.counts[id] > 0
}

// Count returns how many activities reference id so far.
func (u *UsedContent) Count(id string) int {
	return u.counts[id]
}

// Len is the number of distinct ids used.
func (u *UsedContent) Len() int {
	return len(u.counts)
}
