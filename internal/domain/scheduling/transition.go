package scheduling

// Trigger names a staff action that moves an appointment through its
// lifecycle.
type Trigger string

const (
	TriggerConfirm  Trigger = "confirm"
	TriggerCancel   Trigger = "cancel"
	TriggerStart    Trigger = "start" // call-next moves the queue head into the exam room
	TriggerComplete Trigger = "complete"
	TriggerNoShow   Trigger = "no-show"
)

// transitionTable is the single source of truth for allowed state changes.
// Guards that need external data (cancel reason present, appointment time
// elapsed, doctor not busy) are enforced by the service before Transition is
// consulted.
var transitionTable = map[Trigger]struct {
	from []Status
	to   Status
}{
	TriggerConfirm:  {from: []Status{StatusPending}, to: StatusConfirmed},
	TriggerCancel:   {from: []Status{StatusPending, StatusConfirmed, StatusScheduled}, to: StatusCancelled},
	TriggerStart:    {from: []Status{StatusPending, StatusConfirmed, StatusScheduled}, to: StatusInProgress},
	TriggerComplete: {from: []Status{StatusInProgress}, to: StatusCompleted},
	TriggerNoShow:   {from: []Status{StatusScheduled, StatusConfirmed}, to: StatusNoShow},
}

// Target returns the destination status of the trigger.
func (tr Trigger) Target() Status {
	return transitionTable[tr].to
}

// Transition validates applying tr to the current status. It returns the
// resulting status and whether a write is needed. Re-applying a trigger whose
// target state already holds is reported as a no-op (apply=false, nil error)
// so that retried client calls stay idempotent. Every other disallowed
// combination returns InvalidTransitionError and implies no write at all.
func Transition(current Status, tr Trigger) (Status, bool, error) {
	entry, ok := transitionTable[tr]
	if !ok {
		return current, false, &InvalidTransitionError{From: current, Trigger: tr}
	}
	if current == entry.to {
		return current, false, nil
	}
	for _, from := range entry.from {
		if current == from {
			return entry.to, true, nil
		}
	}
	return current, false, &InvalidTransitionError{From: current, Trigger: tr}
}
