package ledger

// Counters Reactable 上内联的反应计数
type Counters struct {
	Like           int64 `gorm:"column:like_count;not null;default:0" json:"like"`
	Love           int64 `gorm:"column:love_count;not null;default:0" json:"love"`
	Haha           int64 `gorm:"column:haha_count;not null;default:0" json:"haha"`
	Wow            int64 `gorm:"column:wow_count;not null;default:0" json:"wow"`
	Sad            int64 `gorm:"column:sad_count;not null;default:0" json:"sad"`
	Angry          int64 `gorm:"column:angry_count;not null;default:0" json:"angry"`
	TotalReactions int64 `gorm:"column:total_reactions;not null;default:0" json:"total"`
	Likes          int64 `gorm:"column:likes_count;not null;default:0" json:"likes"`
}

func (c *Counters) ref(b Bucket) *int64 {
	switch b {
	case Like:
		return &c.Like
	case Love:
		return &c.Love
	case Haha:
		return &c.Haha
	case Wow:
		return &c.Wow
	case Sad:
		return &c.Sad
	case Angry:
		return &c.Angry
	}
	return nil
}

// Get 读取单个桶的计数
func (c Counters) Get(b Bucket) int64 {
	if p := c.ref(b); p != nil {
		return *p
	}
	return 0
}

// Sum 六个桶之和
func (c Counters) Sum() int64 {
	var n int64
	for _, b := range Buckets {
		n += c.Get(b)
	}
	return n
}

// Consistent total 与 likes 均等于六个桶之和
func (c Counters) Consistent() bool {
	sum := c.Sum()
	return c.TotalReactions == sum && c.Likes == sum
}

// Apply 以内存方式应用增量，每列下限为 0
func (c Counters) Apply(d Delta) Counters {
	for b, n := range d.Buckets {
		if p := c.ref(b); p != nil {
			*p = floor(*p + n)
		}
	}
	c.TotalReactions = floor(c.TotalReactions + d.Total)
	c.Likes = floor(c.Likes + d.Total)
	return c
}

// Tally 根据反应行重新计算计数
func Tally(counts map[Bucket]int64) Counters {
	var c Counters
	for b, n := range counts {
		if p := c.ref(b); p != nil {
			*p = n
		}
	}
	c.TotalReactions = c.Sum()
	c.Likes = c.TotalReactions
	return c
}

func floor(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
