package flightgoal

import "testing"

func TestStatus_StringAndParse(t *testing.T) {
	statuses := []Status{
		StatusPending, StatusActive, StatusSucceeded,
		StatusPreempted, StatusAborted, StatusRejected,
	}
	for _, s := range statuses {
		parsed, err := ParseStatus(s.String())
		if err != nil {
			t.Fatalf("ParseStatus(%s): %v", s, err)
		}
		if parsed != s {
			t.Fatalf("ParseStatus(%s) = %s", s, parsed)
		}
	}

	if _, err := ParseStatus("LOITERING"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:   false,
		StatusActive:    false,
		StatusSucceeded: true,
		StatusPreempted: true,
		StatusAborted:   true,
		StatusRejected:  true,
	}
	for s, want := range terminal {
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), want)
		}
	}
}
