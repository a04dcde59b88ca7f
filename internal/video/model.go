package video

// Video is the single persisted record: a client-keyed row of counters.
type Video struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Views int64  `json:"views"`
	Likes int64  `json:"likes"`
}

// MaxNameLength matches the width of the name column.
const MaxNameLength = 100
