package scheduler

import (
	"sort"
	"time"

	"github.com/mio/bunpo/internal/models"
)

// Mastery level bounds. Level 1 is "just learned", level 5 fully retained.
const (
	MinLevel = 1
	MaxLevel = 5
)

// Intervals maps a mastery level to the number of days until the next
// review. The table is fixed configuration, strictly increasing by level.
var Intervals = map[int]int{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

// basePriority is the priority of a record that is due exactly today.
const basePriority = 100

// Review is the outcome of a scheduling decision.
type Review struct {
	Level int
	DueAt time.Time
}

// ComputeNextReview applies the review outcome to the current mastery
// level: +1 on a correct answer, -1 on an incorrect one, clamped to
// [MinLevel, MaxLevel]. The due date is midnight plus the interval for the
// new level; time of day never affects due-ness comparisons.
func ComputeNextReview(level int, correct bool, now time.Time) Review {
	next := level
	if correct {
		next++
	} else {
		next--
	}
	if next > MaxLevel {
		next = MaxLevel
	}
	if next < MinLevel {
		next = MinLevel
	}
	return Review{
		Level: next,
		DueAt: Midnight(now).AddDate(0, 0, Intervals[next]),
	}
}

// Midnight truncates t to date-only granularity in its own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns b - a in whole calendar days. The delta is computed
// from the date components rebuilt in UTC, so DST transitions and mixed
// locations (a timestamp scanned back from storage versus a local clock)
// never skew the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// DueSkills returns the skill ids of every record due today or earlier.
// There is no upper bound on staleness.
func DueSkills(records []models.MasteryRecord, today time.Time) []string {
	var due []string
	for _, r := range records {
		if DaysBetween(r.DueAt, today) >= 0 {
			due = append(due, r.SkillID)
		}
	}
	return due
}

// Priority ranks a record for the review queue: 100 plus the number of
// days it is overdue. A record not yet due yields a value below 100.
func Priority(rec models.MasteryRecord, today time.Time) int {
	return basePriority + DaysBetween(rec.DueAt, today)
}

// RankDue filters records down to the due ones and orders them most
// overdue first. Ties break on skill id so the queue is deterministic.
func RankDue(records []models.MasteryRecord, today time.Time) []models.MasteryRecord {
	var due []models.MasteryRecord
	for _, r := range records {
		if Priority(r, today) >= basePriority {
			due = append(due, r)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		pi, pj := Priority(due[i], today), Priority(due[j], today)
		if pi != pj {
			return pi > pj
		}
		return due[i].SkillID < due[j].SkillID
	})
	return due
}
