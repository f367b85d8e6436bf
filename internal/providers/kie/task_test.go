package kie

import "testing"

func TestTaskStates(t *testing.T) {
	cases := []struct {
		state     string
		succeeded bool
		failed    bool
	}{
		{"success", true, false},
		{"COMPLETED", true, false},
		{"failed", false, true},
		{"Error", false, true},
		{"waiting", false, false},
		{"generating", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		snap := &TaskSnapshot{State: tc.state}
		if snap.Succeeded() != tc.succeeded {
			t.Errorf("state %q: Succeeded() = %v", tc.state, snap.Succeeded())
		}
		if snap.Failed() != tc.failed {
			t.Errorf("state %q: Failed() = %v", tc.state, snap.Failed())
		}
		if snap.Terminal() != (tc.succeeded || tc.failed) {
			t.Errorf("state %q: Terminal() = %v", tc.state, snap.Terminal())
		}
	}
}

func TestResultURLFallbackOrder(t *testing.T) {
	cases := []struct {
		name string
		snap TaskSnapshot
		want string
	}{
		{
			// resultUrls wins over everything, including other fields in the
			// same snapshot.
			name: "resultUrls first",
			snap: TaskSnapshot{
				ResultJSON: `{"resultUrls":["https://a/1.mp4"],"video_url":"https://a/2.mp4"}`,
				Output:     taskOutput{VideoURL: "https://a/3.mp4"},
				VideoURL:   "https://a/4.mp4",
			},
			want: "https://a/1.mp4",
		},
		{
			name: "resultJson video_url second",
			snap: TaskSnapshot{
				ResultJSON: `{"video_url":"https://a/2.mp4"}`,
				Output:     taskOutput{VideoURL: "https://a/3.mp4"},
			},
			want: "https://a/2.mp4",
		},
		{
			name: "output object third",
			snap: TaskSnapshot{
				Output:   taskOutput{VideoURL: "https://a/3.mp4"},
				VideoURL: "https://a/4.mp4",
			},
			want: "https://a/3.mp4",
		},
		{
			name: "flat videoUrl last",
			snap: TaskSnapshot{VideoURL: "https://a/4.mp4"},
			want: "https://a/4.mp4",
		},
		{
			name: "broken resultJson falls through",
			snap: TaskSnapshot{
				ResultJSON: `{"resultUrls":`,
				VideoURL:   "https://a/4.mp4",
			},
			want: "https://a/4.mp4",
		},
		{
			name: "empty resultUrls entry falls through",
			snap: TaskSnapshot{
				ResultJSON: `{"resultUrls":[""]}`,
				VideoURL:   "https://a/4.mp4",
			},
			want: "https://a/4.mp4",
		},
		{
			name: "nothing anywhere",
			snap: TaskSnapshot{},
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.snap.ResultURL(); got != tc.want {
				t.Fatalf("ResultURL() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFailureReason(t *testing.T) {
	snap := &TaskSnapshot{State: "failed", FailMsg: "content policy violation"}
	if got := snap.FailureReason(); got != "content policy violation" {
		t.Fatalf("reason = %q", got)
	}
	snap = &TaskSnapshot{State: "failed"}
	if got := snap.FailureReason(); got != FallbackFailureReason {
		t.Fatalf("empty failMsg must yield the placeholder, got %q", got)
	}
}
