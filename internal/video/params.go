package video

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// NameParam is a video name as a client sent it. JSON numbers are taken as
// their literal text. Any other non-null value leaves Valid false.
type NameParam struct {
	Value string
	Valid bool
}

func (p *NameParam) UnmarshalJSON(data []byte) error {
	p.Value, p.Valid = parseName(data)
	return nil
}

// CountParam is a view or like count as a client sent it. Integral JSON
// numbers and decimal strings such as "5" are accepted.
type CountParam struct {
	Value int64
	Valid bool
}

func (p *CountParam) UnmarshalJSON(data []byte) error {
	p.Value, p.Valid = parseCount(data)
	return nil
}

func parseName(data []byte) (string, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", false
	}
	return n.String(), true
}

func parseCount(data []byte) (int64, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}

	// 5.0 and 1e3 are integral; 1.5 is not.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
