package schedule

import "time"

// Defaults applied when an entry omits a field.
const (
	DefaultDepartment = "未知科室"
	DefaultAddress    = "地址未知"
)

// Slot is a schedule entry that passed every filter.
type Slot struct {
	// Department is the entry's deptName.
	Department string `json:"department"`

	// Date is "{year}-{schDate}" using the year inherited from the item.
	Date string `json:"date"`

	// TimeRange is "{startTime}-{endTime}".
	TimeRange string `json:"time_range"`

	// State is the raw availability text (stateShown).
	State string `json:"state"`

	// Remaining is the remainNo count.
	Remaining int `json:"remaining"`

	// Address is the clinic address (clinicAddr).
	Address string `json:"address"`
}

// Rules holds the business constants the evaluator filters on.
type Rules struct {
	// Cost is the exact fee an entry must carry.
	Cost float64

	// CutoffMonth and CutoffDay define the exclusive upper bound on entry
	// dates, in the year reported by the enclosing item.
	CutoffMonth time.Month
	CutoffDay   int

	// FullMarker is the substring of the state text meaning "fully booked".
	FullMarker string
}

// DefaultRules returns the rules the monitor ships with: a fee of 17,
// entries strictly before March 6, and "号满" as the fully booked marker.
func DefaultRules() Rules {
	return Rules{
		Cost:        17,
		CutoffMonth: time.March,
		CutoffDay:   6,
		FullMarker:  "号满",
	}
}

// Cutoff returns the cutoff date for year.
func (r Rules) Cutoff(year int) time.Time {
	return time.Date(year, r.CutoffMonth, r.CutoffDay, 0, 0, 0, 0, time.UTC)
}
