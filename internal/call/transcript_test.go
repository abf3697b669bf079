package call

import (
	"testing"

	"github.com/zulandar/ensemble/internal/models"
)

func TestTranscriber_AccumulatesUntilComplete(t *testing.T) {
	var tr Transcriber
	tr.AddInput("How are ")
	tr.AddOutput("I'm ")
	tr.AddInput("you?")
	tr.AddOutput("great!")

	if len(tr.Lines()) != 0 {
		t.Fatal("lines recorded before turn complete")
	}

	got := tr.Complete()
	want := []models.Transcript{
		{Author: models.SpeakerUser, Text: "How are you?"},
		{Author: models.SpeakerAgent, Text: "I'm great!"},
	}
	if len(got) != len(want) {
		t.Fatalf("Complete = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if again := tr.Complete(); len(again) != 0 {
		t.Errorf("accumulators not reset: %+v", again)
	}
	if len(tr.Lines()) != 2 {
		t.Errorf("len(Lines) = %d, want 2", len(tr.Lines()))
	}
}

func TestTranscriber_SkipsBlank(t *testing.T) {
	var tr Transcriber
	tr.AddInput("   ")
	tr.AddOutput("Hello there")
	got := tr.Complete()
	if len(got) != 1 || got[0].Author != models.SpeakerAgent {
		t.Errorf("Complete = %+v, want only the agent line", got)
	}
}
