package ledger

import "errors"

// Bucket 反应类型，对应 Reactable 上的一个计数列
type Bucket string

const (
	Like  Bucket = "like"
	Love  Bucket = "love"
	Haha  Bucket = "haha"
	Wow   Bucket = "wow"
	Sad   Bucket = "sad"
	Angry Bucket = "angry"
)

// Buckets 六种反应的固定顺序
var Buckets = []Bucket{Like, Love, Haha, Wow, Sad, Angry}

var ErrUnknownBucket = errors.New("unknown reaction bucket")

// ParseBucket 解析反应类型，空串表示无反应
func ParseBucket(s string) (*Bucket, error) {
	if s == "" {
		return nil, nil
	}
	b := Bucket(s)
	if !b.Valid() {
		return nil, ErrUnknownBucket
	}
	return &b, nil
}

func (b Bucket) Valid() bool {
	switch b {
	case Like, Love, Haha, Wow, Sad, Angry:
		return true
	}
	return false
}

// Column 计数列名
func (b Bucket) Column() string {
	return string(b) + "_count"
}

const (
	ColumnTotal = "total_reactions"
	ColumnLikes = "likes_count"
)
