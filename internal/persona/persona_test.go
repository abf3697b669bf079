package persona

import (
	"strings"
	"testing"

	"github.com/zulandar/ensemble/internal/models"
)

func TestBuildSystemPrompt_Layout(t *testing.T) {
	roster := models.DefaultAgents()
	got := BuildSystemPrompt(roster[0], roster)

	sections := []string{"# CORE IDENTITY", "# PERSONALITY TRAITS", "# CONTEXT", "# BEHAVIORAL GUIDELINES"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(got, s)
		if idx < 0 {
			t.Fatalf("prompt missing section %q", s)
		}
		if idx <= last {
			t.Errorf("section %q out of order", s)
		}
		last = idx
	}
	if !strings.HasPrefix(got, "# CORE IDENTITY") {
		t.Errorf("prompt should start with CORE IDENTITY, got %q", got[:20])
	}

	for _, want := range []string{
		"- Your Name: Priya Sharma",
		"- Your Age: 32",
		"- Your Gender: Female",
		"- Your Profession: Medical Doctor. (You are a compassionate",
		"- Your Current Emotion: Empathetic / Compassionate. (You are deeply caring",
		"- Your Speaking Style: Calm.",
		"- **Nurturing**: You are deeply caring and protective",
		"- Rohan Verma the Software Engineer",
		"- Meera Kapoor the Artist",
		"1.  **BE HUMAN:**",
		"6.  **BE AWARE OF THE CONVERSATION:**",
		"(Priya Sharma, the Medical Doctor)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_ExcludesSelf(t *testing.T) {
	roster := models.DefaultAgents()
	got := BuildSystemPrompt(roster[1], roster)
	if strings.Contains(got, "- Rohan Verma the") {
		t.Error("agent should not list itself in CONTEXT")
	}
	if !strings.Contains(got, "- Priya Sharma the Medical Doctor") {
		t.Error("CONTEXT missing Priya")
	}
}

func TestBuildSystemPrompt_OnlyAgent(t *testing.T) {
	a := models.DefaultAgents()[0]
	for _, roster := range [][]models.Agent{nil, {a}} {
		got := BuildSystemPrompt(a, roster)
		if !strings.Contains(got, "You are the only agent in this conversation.") {
			t.Errorf("prompt with roster of %d should state only agent", len(roster))
		}
	}
}

func TestBuildSystemPrompt_NoTraits(t *testing.T) {
	a := models.DefaultAgents()[0]
	a.PersonalityTraits = nil
	got := BuildSystemPrompt(a, nil)
	if strings.Contains(got, "# PERSONALITY TRAITS") {
		t.Error("traits section should be omitted when agent has none")
	}
}

func TestBuildSystemPrompt_StyleDefault(t *testing.T) {
	a := models.DefaultAgents()[0]
	a.SpeakingStyle = ""
	got := BuildSystemPrompt(a, nil)
	if !strings.Contains(got, "- Your Speaking Style: Expressive.") {
		t.Error("empty speaking style should render as Expressive")
	}
}

func TestBuildSystemPrompt_UnknownValues(t *testing.T) {
	a := models.Agent{
		ID:                "x",
		Name:              "Zed",
		Profession:        "Astronaut",
		Emotion:           "Grumpy",
		PersonalityTraits: []models.PersonalityTrait{"Lazy"},
	}
	got := BuildSystemPrompt(a, nil)
	for _, want := range []string{"- Your Profession: Astronaut.\n", "- Your Current Emotion: Grumpy.\n", "- **Lazy**\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildSystemPrompt_Deterministic(t *testing.T) {
	roster := models.DefaultAgents()
	first := BuildSystemPrompt(roster[2], roster)
	for i := 0; i < 5; i++ {
		if got := BuildSystemPrompt(roster[2], roster); got != first {
			t.Fatal("BuildSystemPrompt should be deterministic")
		}
	}
}

func TestDescriptions_CoverEveryValue(t *testing.T) {
	for _, p := range models.AllProfessions {
		if professionDescriptions[p] == "" {
			t.Errorf("missing profession description for %q", p)
		}
	}
	for _, e := range models.AllEmotions {
		if emotionDescriptions[e] == "" {
			t.Errorf("missing emotion description for %q", e)
		}
	}
	for _, tr := range models.AllTraits {
		if traitDescriptions[tr] == "" {
			t.Errorf("missing trait description for %q", tr)
		}
	}
}
