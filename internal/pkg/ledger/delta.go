package ledger

// Delta 一次反应变更对计数列的增量，Total 同时作用于 total_reactions 与 likes_count
type Delta struct {
	Buckets map[Bucket]int64
	Total   int64
}

func (d Delta) IsZero() bool {
	if d.Total != 0 {
		return false
	}
	for _, n := range d.Buckets {
		if n != 0 {
			return false
		}
	}
	return true
}

// Transition 计算反应从 prev 变为 next 时的增量
//
//	nil  -> b    : b+1, total+1
//	a    -> nil  : a-1, total-1
//	a    -> b    : a-1, b+1
//	a    -> a    : 无变化
func Transition(prev, next *Bucket) Delta {
	d := Delta{Buckets: map[Bucket]int64{}}
	switch {
	case prev == nil && next == nil:
	case prev == nil:
		d.Buckets[*next] = 1
		d.Total = 1
	case next == nil:
		d.Buckets[*prev] = -1
		d.Total = -1
	case *prev != *next:
		d.Buckets[*prev] = -1
		d.Buckets[*next] = 1
	}
	return d
}
