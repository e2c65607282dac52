package scheduling

import "sort"

// Rank orders a doctor's waiting appointments for the day. It is a pure
// function: the input slice is not modified and the same input set always
// produces the same order.
//
// Sort keys, ascending:
//  1. priority: emergency/pregnant/disabled/... surface before the default
//  2. queue number: preserves arrival order inside a priority tier;
//     records without a queue number (pre-booked slots mixed into the day)
//     sort after numbered ones in the same tier
//  3. scheduled time: tiebreak for un-numbered records
func Rank(appts []*Appointment) []*Appointment {
	ranked := make([]*Appointment, len(appts))
	copy(ranked, appts)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		switch {
		case a.QueueNumber != nil && b.QueueNumber != nil:
			if *a.QueueNumber != *b.QueueNumber {
				return *a.QueueNumber < *b.QueueNumber
			}
		case a.QueueNumber != nil:
			return true
		case b.QueueNumber != nil:
			return false
		}
		return a.ScheduledTime.Before(b.ScheduledTime)
	})

	return ranked
}
