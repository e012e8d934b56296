// Package streaks derives streak values from a member's logged days.
//
// A logged day is either a proof day (an approved proof) or a covered day (a
// lifeline). Proof days extend a streak, covered days bridge it without
// extending it, and any other gap resets it.
package streaks

import (
	"sort"

	"github.com/chris/habit-pools/pkg/clock"
	"github.com/chris/habit-pools/pkg/models"
)

// ApplyApproval records an approved proof for day on m. It reports whether
// the member changed; a second approval for an already logged day does not.
func ApplyApproval(m *models.Member, day string) bool {
	if m.HasDay(day) {
		return false
	}
	m.ProofDays = append(m.ProofDays, day)
	m.DaysCompleted++

	switch {
	case m.LastProofDate != "" && day < m.LastProofDate:
		// Late approval, e.g. from peer review after newer days were logged.
		Recompute(m)
		return true
	case m.LastProofDate != "" && m.LastProofDate == clock.AddDays(day, -1):
		m.CurrentStreak++
	default:
		m.CurrentStreak = 1
	}
	m.LastProofDate = day
	if m.CurrentStreak > m.BestStreak {
		m.BestStreak = m.CurrentStreak
	}
	return true
}

// ApplyCover records a lifeline-covered day on m. The streak carries over
// from the previous day but is not incremented.
func ApplyCover(m *models.Member, day string) bool {
	if m.HasDay(day) {
		return false
	}
	m.CoveredDays = append(m.CoveredDays, day)
	if day < m.LastProofDate {
		Recompute(m)
		return true
	}
	if m.LastProofDate != clock.AddDays(day, -1) {
		m.CurrentStreak = 0
	}
	m.LastProofDate = day
	return true
}

// Recompute rebuilds current_streak, best_streak and last_proof_date from the
// member's day sets. best_streak never decreases.
func Recompute(m *models.Member) {
	covered := make(map[string]bool, len(m.CoveredDays))
	for _, d := range m.CoveredDays {
		covered[d] = true
	}
	days := make([]string, 0, len(m.ProofDays)+len(m.CoveredDays))
	seen := make(map[string]bool)
	for _, d := range append(append([]string{}, m.ProofDays...), m.CoveredDays...) {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Strings(days)

	run, best, prev := 0, m.BestStreak, ""
	for _, d := range days {
		contiguous := prev != "" && clock.AddDays(prev, 1) == d
		if !contiguous {
			run = 0
		}
		if !covered[d] {
			run++
		}
		if run > best {
			best = run
		}
		prev = d
	}
	m.CurrentStreak = run
	m.BestStreak = best
	if prev != "" {
		m.LastProofDate = prev
	}
}

// Effective returns the member's streak as of today. A streak whose last
// logged day is older than yesterday is broken.
func Effective(m *models.Member, today string) int {
	if m.LastProofDate == today || m.LastProofDate == clock.AddDays(today, -1) {
		return m.CurrentStreak
	}
	return 0
}

// MissedDays counts the days in [from, today) that have neither a proof nor
// a lifeline. Today is still open and never counts as missed.
func MissedDays(m *models.Member, from, today string) int {
	missed := 0
	for d := from; d < today; {
		if !m.HasDay(d) {
			missed++
		}
		next := clock.AddDays(d, 1)
		if next == d {
			break
		}
		d = next
	}
	return missed
}

// RunFromRecords returns the run of consecutive days with at least one proof
// that ends today or yesterday.
func RunFromRecords(records []models.DailyHabitRecord, today string) int {
	logged := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ProofCount > 0 {
			logged[r.Day] = true
		}
	}
	d := today
	if !logged[d] {
		d = clock.AddDays(today, -1)
	}
	run := 0
	for logged[d] {
		run++
		prev := clock.AddDays(d, -1)
		if prev == d {
			break
		}
		d = prev
	}
	return run
}

// ProfileStreak recomputes a user's cross-pool streak on demand: the best
// effective streak over active memberships, or the daily record run if that
// is longer.
func ProfileStreak(memberships []models.Member, records []models.DailyHabitRecord, today string) int {
	best := 0
	for i := range memberships {
		if memberships[i].Status != models.MemberActive {
			continue
		}
		if s := Effective(&memberships[i], today); s > best {
			best = s
		}
	}
	if run := RunFromRecords(records, today); run > best {
		best = run
	}
	return best
}

// EndDay is the first day after a pool's run, or "" for a pool that never
// started.
func EndDay(pool *models.Pool) string {
	if pool.EndsAt != nil {
		return clock.Day(*pool.EndsAt)
	}
	if start := pool.StartDay(); start != "" {
		return clock.AddDays(start, pool.DurationDays)
	}
	return ""
}

// OwedFrom is the first day m owes a proof: the pool's start day, or the join
// day for a member who joined after the start.
func OwedFrom(pool *models.Pool, m *models.Member) string {
	from := pool.StartDay()
	if from == "" {
		return ""
	}
	if joined := clock.Day(m.JoinedAt); joined > from {
		from = joined
	}
	return from
}

// PoolMissedDays counts the days m owed in pool up to today, which is itself
// never owed, and never past the pool's end. The sweeper and the settlement
// partition both judge members by it.
func PoolMissedDays(pool *models.Pool, m *models.Member, today string) int {
	from := OwedFrom(pool, m)
	if from == "" {
		return 0
	}
	until := today
	if end := EndDay(pool); end != "" && end < until {
		until = end
	}
	return MissedDays(m, from, until)
}
