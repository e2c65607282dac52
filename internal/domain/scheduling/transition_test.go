package scheduling

import (
	"errors"
	"testing"
)

func TestTransitionAllowed(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		trigger Trigger
		want    Status
	}{
		{"confirm pending", StatusPending, TriggerConfirm, StatusConfirmed},
		{"cancel pending", StatusPending, TriggerCancel, StatusCancelled},
		{"cancel confirmed", StatusConfirmed, TriggerCancel, StatusCancelled},
		{"cancel scheduled", StatusScheduled, TriggerCancel, StatusCancelled},
		{"start pending", StatusPending, TriggerStart, StatusInProgress},
		{"start confirmed", StatusConfirmed, TriggerStart, StatusInProgress},
		{"start scheduled", StatusScheduled, TriggerStart, StatusInProgress},
		{"complete in-progress", StatusInProgress, TriggerComplete, StatusCompleted},
		{"no-show scheduled", StatusScheduled, TriggerNoShow, StatusNoShow},
		{"no-show confirmed", StatusConfirmed, TriggerNoShow, StatusNoShow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, apply, err := Transition(tt.current, tt.trigger)
			if err != nil {
				t.Fatalf("Transition(%s, %s) error: %v", tt.current, tt.trigger, err)
			}
			if !apply {
				t.Fatalf("Transition(%s, %s) apply = false, want true", tt.current, tt.trigger)
			}
			if got != tt.want {
				t.Errorf("Transition(%s, %s) = %s, want %s", tt.current, tt.trigger, got, tt.want)
			}
		})
	}
}

func TestTransitionRejected(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		trigger Trigger
	}{
		{"confirm scheduled", StatusScheduled, TriggerConfirm},
		{"confirm completed", StatusCompleted, TriggerConfirm},
		{"cancel in-progress", StatusInProgress, TriggerCancel},
		{"cancel completed", StatusCompleted, TriggerCancel},
		{"complete pending", StatusPending, TriggerComplete},
		{"complete cancelled", StatusCancelled, TriggerComplete},
		{"no-show pending", StatusPending, TriggerNoShow},
		{"no-show in-progress", StatusInProgress, TriggerNoShow},
		{"start completed", StatusCompleted, TriggerStart},
		{"start no-show", StatusNoShow, TriggerStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, apply, err := Transition(tt.current, tt.trigger)
			var te *InvalidTransitionError
			if !errors.As(err, &te) {
				t.Fatalf("Transition(%s, %s) error = %v, want InvalidTransitionError", tt.current, tt.trigger, err)
			}
			if apply {
				t.Errorf("Transition(%s, %s) apply = true on rejection", tt.current, tt.trigger)
			}
			if got != tt.current {
				t.Errorf("Transition(%s, %s) = %s, want status unchanged", tt.current, tt.trigger, got)
			}
		})
	}
}

func TestTransitionIdempotentRetry(t *testing.T) {
	// Re-applying a trigger whose target already holds is a silent no-op so
	// retried client calls do not error.
	for _, tr := range []Trigger{TriggerConfirm, TriggerCancel, TriggerStart, TriggerComplete, TriggerNoShow} {
		target := tr.Target()
		got, apply, err := Transition(target, tr)
		if err != nil {
			t.Errorf("Transition(%s, %s) error = %v, want nil", target, tr, err)
		}
		if apply {
			t.Errorf("Transition(%s, %s) apply = true, want no-op", target, tr)
		}
		if got != target {
			t.Errorf("Transition(%s, %s) = %s, want %s", target, tr, got, target)
		}
	}
}

func TestTerminalStatusesAdmitNothing(t *testing.T) {
	triggers := []Trigger{TriggerConfirm, TriggerCancel, TriggerStart, TriggerComplete, TriggerNoShow}
	for _, st := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}
		for _, tr := range triggers {
			if tr.Target() == st {
				continue // idempotent retry, covered above
			}
			_, _, err := Transition(st, tr)
			var te *InvalidTransitionError
			if !errors.As(err, &te) {
				t.Errorf("Transition(%s, %s) error = %v, want InvalidTransitionError", st, tr, err)
			}
		}
	}
}
