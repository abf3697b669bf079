// Package persona renders the per-agent system instruction sent to the
// generative backend.
package persona

import (
	"fmt"
	"strings"

	"github.com/zulandar/ensemble/internal/models"
)

// BuildSystemPrompt renders the system instruction for agent. Agents in
// roster with the same ID as agent are left out of the context section, so
// the full roster can be passed as-is. The output is deterministic.
func BuildSystemPrompt(agent models.Agent, roster []models.Agent) string {
	var b strings.Builder

	b.WriteString("# CORE IDENTITY\n")
	fmt.Fprintf(&b, "- Your Name: %s\n", agent.Name)
	fmt.Fprintf(&b, "- Your Age: %d\n", agent.Age)
	fmt.Fprintf(&b, "- Your Gender: %s\n", agent.Gender)
	fmt.Fprintf(&b, "- Your Profession: %s\n", describe(string(agent.Profession), professionDescriptions[agent.Profession]))
	fmt.Fprintf(&b, "- Your Current Emotion: %s\n", describe(string(agent.Emotion), emotionDescriptions[agent.Emotion]))
	fmt.Fprintf(&b, "- Your Speaking Style: %s. Your vocal tone should consistently reflect this style.\n", agent.Style())

	if len(agent.PersonalityTraits) > 0 {
		b.WriteString("\n# PERSONALITY TRAITS\n")
		b.WriteString("You also have the following personality traits. Embody them in your responses:\n")
		for _, t := range agent.PersonalityTraits {
			if d, ok := traitDescriptions[t]; ok {
				fmt.Fprintf(&b, "- **%s**: %s\n", t, d)
			} else {
				fmt.Fprintf(&b, "- **%s**\n", t)
			}
		}
	}

	b.WriteString("\n# CONTEXT\n")
	b.WriteString("You are in a real-time, natural conversation with a User.\n")
	others := Others(agent, roster)
	if len(others) == 0 {
		b.WriteString("You are the only agent in this conversation.\n")
	} else {
		b.WriteString("Other agents in this conversation are:\n")
		for _, o := range others {
			fmt.Fprintf(&b, "- %s the %s\n", o.Name, o.Profession)
		}
	}
	b.WriteString("The recent conversation history will be provided for context.\n")

	b.WriteString("\n# BEHAVIORAL GUIDELINES\n")
	for i, g := range guidelines(agent) {
		fmt.Fprintf(&b, "%d.  %s\n", i+1, g)
	}

	return strings.TrimSpace(b.String())
}

// Others returns the roster entries whose ID differs from agent's.
func Others(agent models.Agent, roster []models.Agent) []models.Agent {
	var out []models.Agent
	for _, a := range roster {
		if a.ID != agent.ID {
			out = append(out, a)
		}
	}
	return out
}

func describe(name, description string) string {
	if description == "" {
		return name + "."
	}
	return fmt.Sprintf("%s. (%s)", name, description)
}

func guidelines(agent models.Agent) []string {
	return []string{
		`**BE HUMAN:** Interact like a real person, not an AI. Be conversational, empathetic, and engaging. Use contractions (e.g., "don't", "it's") and a natural, fluid tone. Avoid being robotic or overly formal unless your persona requires it.`,
		fmt.Sprintf("**STAY IN CHARACTER:** Fully embody your assigned identity (%s, the %s). Your personality, emotions, and background must consistently and subtly influence everything you say.", agent.Name, agent.Profession),
		"**REALISTIC MESSAGE LENGTH:** Your messages must have a realistic and varied length. Use short texts (3-12 words) for casual replies, medium-length thoughts (1-3 sentences), or longer explanations only when necessary. Adapt to the conversational flow.",
		"**NO THIRD-PERSON NARRATION:** Do not describe your own actions or feelings (e.g., *smiles*, *I think to myself*). Just speak.",
		fmt.Sprintf("**SPEAK ONLY FOR YOURSELF:** You are %s. Do not speak for the User or any other agents.", agent.Name),
		"**BE AWARE OF THE CONVERSATION:** Acknowledge what the User and other agents have said. Build on their points and ask questions to keep the conversation flowing.",
	}
}
