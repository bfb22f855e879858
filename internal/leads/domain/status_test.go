package domain

import "testing"

func TestStatusLabels(t *testing.T) {
	cases := map[Status]string{
		StatusFollowUps:      "Follow Ups",
		StatusSignedContract: "Signed Contract",
		StatusScheduled:      "Scheduled",
		StatusColors:         "Colors",
		StatusACV:            "ACV",
		StatusJob:            "Job",
		StatusCompletedJobs:  "Completed Jobs",
		StatusZeroBalance:    "Zero Balance",
		StatusDenied:         "Denied",
	}

	for status, want := range cases {
		if got := status.Label(); got != want {
			t.Errorf("%s: expected label %q, got %q", status, want, got)
		}
	}
}

func TestLabelFallsBackToRawValue(t *testing.T) {
	if got := Status("mystery").Label(); got != "mystery" {
		t.Errorf("expected raw fallback, got %q", got)
	}
}

func TestIsKnownStatus(t *testing.T) {
	if !IsKnownStatus("acv") {
		t.Error("acv should be known")
	}
	if IsKnownStatus("ACV") {
		t.Error("status values are case-sensitive")
	}
	if IsKnownStatus("") {
		t.Error("empty string is not a status")
	}
}

func TestStatusesCoversFullEnum(t *testing.T) {
	all := Statuses()
	if len(all) != 9 {
		t.Fatalf("expected 9 statuses, got %d", len(all))
	}
	if all[0] != StatusFollowUps || all[len(all)-1] != StatusDenied {
		t.Error("pipeline order should start at follow_ups and end at denied")
	}
}
