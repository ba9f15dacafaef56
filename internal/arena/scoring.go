package arena

import (
	"cmp"
	"slices"
	"time"
)

const (
	FullCredit      = 100
	PartialCredit   = 50
	MaxLatencyBonus = 20
)

// Score returns the points a recorded answer earns in round r. The result
// depends only on the round and the answer.
func Score(r Round, a Answer) int {
	q, ok := r.QualityOf(a.Choice)
	if !ok {
		return 0
	}

	var base int
	switch q {
	case QualityOptimal:
		base = FullCredit
	case QualityAdequate:
		base = PartialCredit
	default:
		return 0
	}

	return base + latencyBonus(r.TimeLimit, a.LatencyMs)
}

func latencyBonus(limit time.Duration, latencyMs int64) int {
	limitMs := limit.Milliseconds()
	if limitMs <= 0 {
		return 0
	}
	latencyMs = ClampLatency(limit, latencyMs)
	return int(int64(MaxLatencyBonus) * (limitMs - latencyMs) / limitMs)
}

// ClampLatency bounds a reported latency to [0, limit].
func ClampLatency(limit time.Duration, latencyMs int64) int64 {
	return max(0, min(latencyMs, limit.Milliseconds()))
}

// Rank orders players by cumulative score, ties broken by earliest
// registration in the room.
func Rank(players []Player) []Standing {
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b Player) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.JoinOrder, b.JoinOrder)
	})

	out := make([]Standing, len(sorted))
	for i, p := range sorted {
		out[i] = Standing{Rank: i + 1, PlayerID: p.ID, Name: p.Name, Score: p.Score}
	}
	return out
}
