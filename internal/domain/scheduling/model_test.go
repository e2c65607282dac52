package scheduling

import "testing"

func TestResolvePriority(t *testing.T) {
	tests := []struct {
		name       string
		reasons    []PriorityReason
		wantWeight int
		wantReason *PriorityReason
	}{
		{"no reasons", nil, DefaultPriority, nil},
		{"single emergency", []PriorityReason{ReasonEmergency}, 10, ptrReason(ReasonEmergency)},
		{"single elderly", []PriorityReason{ReasonElderly}, 25, ptrReason(ReasonElderly)},
		{"minimum wins", []PriorityReason{ReasonElderly, ReasonPregnant}, 15, ptrReason(ReasonPregnant)},
		{"emergency beats all", []PriorityReason{ReasonVIP, ReasonChild, ReasonEmergency}, 10, ptrReason(ReasonEmergency)},
		{"unknown ignored", []PriorityReason{"frequent-flyer"}, DefaultPriority, nil},
		{"unknown mixed with known", []PriorityReason{"frequent-flyer", ReasonChild}, 30, ptrReason(ReasonChild)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weight, reason := ResolvePriority(tt.reasons)
			if weight != tt.wantWeight {
				t.Errorf("weight = %d, want %d", weight, tt.wantWeight)
			}
			if (reason == nil) != (tt.wantReason == nil) {
				t.Fatalf("reason = %v, want %v", reason, tt.wantReason)
			}
			if reason != nil && *reason != *tt.wantReason {
				t.Errorf("reason = %s, want %s", *reason, *tt.wantReason)
			}
		})
	}
}

func ptrReason(r PriorityReason) *PriorityReason { return &r }

func TestPriorityWeightOrdering(t *testing.T) {
	// The clinical precedence ladder must stay strictly increasing.
	ladder := []PriorityReason{ReasonEmergency, ReasonPregnant, ReasonDisability, ReasonElderly, ReasonChild, ReasonVIP}
	prev := 0
	for _, r := range ladder {
		w := r.Weight()
		if w <= prev {
			t.Errorf("weight of %s = %d, not greater than previous %d", r, w, prev)
		}
		if w >= DefaultPriority {
			t.Errorf("weight of %s = %d, must rank above default %d", r, w, DefaultPriority)
		}
		prev = w
	}
}

func TestStatusWaiting(t *testing.T) {
	waiting := map[Status]bool{
		StatusPending:    true,
		StatusConfirmed:  true,
		StatusScheduled:  true,
		StatusInProgress: false,
		StatusCompleted:  false,
		StatusCancelled:  false,
		StatusNoShow:     false,
	}
	for st, want := range waiting {
		if got := st.Waiting(); got != want {
			t.Errorf("%s.Waiting() = %v, want %v", st, got, want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for st := range validStatuses {
		if !st.Valid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if Status("archived").Valid() {
		t.Error("unknown status reported valid")
	}
	if AppointmentType("telehealth").Valid() {
		t.Error("unknown appointment type reported valid")
	}
}
