package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func waitingAppt(priority int, queueNumber *int, scheduled time.Time) *Appointment {
	return &Appointment{
		ID:            uuid.New(),
		Status:        StatusScheduled,
		Priority:      priority,
		QueueNumber:   queueNumber,
		ScheduledTime: scheduled,
	}
}

func ptrInt(n int) *int { return &n }

func TestRankPriorityPrecedence(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	regular := waitingAppt(DefaultPriority, ptrInt(1), base)
	elderly := waitingAppt(25, ptrInt(2), base.Add(time.Hour))
	emergency := waitingAppt(10, ptrInt(3), base.Add(2*time.Hour))

	ranked := Rank([]*Appointment{regular, elderly, emergency})

	want := []*Appointment{emergency, elderly, regular}
	for i, a := range want {
		if ranked[i].ID != a.ID {
			t.Errorf("position %d: got priority %d, want priority %d", i, ranked[i].Priority, a.Priority)
		}
	}
}

func TestRankQueueNumberWithinTier(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	third := waitingAppt(DefaultPriority, ptrInt(3), base)
	first := waitingAppt(DefaultPriority, ptrInt(1), base)
	second := waitingAppt(DefaultPriority, ptrInt(2), base)
	booked := waitingAppt(DefaultPriority, nil, base.Add(30*time.Minute))

	ranked := Rank([]*Appointment{booked, third, first, second})

	wantIDs := []uuid.UUID{first.ID, second.ID, third.ID, booked.ID}
	for i, id := range wantIDs {
		if ranked[i].ID != id {
			t.Fatalf("position %d wrong: numbered records must come first, in queue order", i)
		}
	}
}

func TestRankScheduledTimeTiebreak(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	later := waitingAppt(DefaultPriority, nil, base.Add(time.Hour))
	earlier := waitingAppt(DefaultPriority, nil, base)

	ranked := Rank([]*Appointment{later, earlier})
	if ranked[0].ID != earlier.ID {
		t.Error("earlier scheduled time must rank first among un-numbered records")
	}
}

func TestRankDeterministicAcrossPermutations(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	appts := []*Appointment{
		waitingAppt(10, ptrInt(5), base),
		waitingAppt(DefaultPriority, ptrInt(1), base.Add(time.Minute)),
		waitingAppt(25, nil, base.Add(2*time.Minute)),
		waitingAppt(DefaultPriority, nil, base.Add(3*time.Minute)),
		waitingAppt(10, ptrInt(2), base.Add(4*time.Minute)),
	}

	reference := Rank(appts)

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	for _, perm := range permutations {
		shuffled := make([]*Appointment, len(appts))
		for i, idx := range perm {
			shuffled[i] = appts[idx]
		}
		ranked := Rank(shuffled)
		for i := range reference {
			if ranked[i].ID != reference[i].ID {
				t.Fatalf("permutation %v produced a different order at position %d", perm, i)
			}
		}
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	a := waitingAppt(DefaultPriority, ptrInt(2), base)
	b := waitingAppt(10, ptrInt(1), base)
	input := []*Appointment{a, b}

	Rank(input)

	if input[0] != a || input[1] != b {
		t.Error("Rank reordered the caller's slice")
	}
}
