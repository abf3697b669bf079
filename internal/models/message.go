package models

import "time"

// Well-known author ids.
const (
	UserAuthorID   = "user"
	SystemAuthorID = "system"
	SystemName     = "System"
)

// MessageAuthor identifies who wrote a message. Agent authors carry a
// snapshot of the agent profile as it was when the message was written.
type MessageAuthor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Profile   *Agent `json:"profile,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// IsAgent reports whether the author is an agent.
func (a MessageAuthor) IsAgent() bool {
	return a.Profile != nil
}

// ChatMessage is one entry in the conversation history. Messages are never
// mutated after they are appended.
type ChatMessage struct {
	ID        string        `json:"id,omitempty"`
	Author    MessageAuthor `json:"author"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
}

// UserAuthor builds the author for a message typed by the user.
func UserAuthor(p UserProfile) MessageAuthor {
	name := p.Name
	if name == "" {
		name = "You"
	}
	return MessageAuthor{ID: UserAuthorID, Name: name, AvatarURL: p.AvatarURL}
}

// SystemAuthor builds the author for synthetic system messages.
func SystemAuthor() MessageAuthor {
	return MessageAuthor{ID: SystemAuthorID, Name: SystemName}
}

// AgentAuthor builds an author holding a snapshot copy of a.
func AgentAuthor(a Agent) MessageAuthor {
	snap := a.Clone()
	return MessageAuthor{ID: a.ID, Name: a.Name, Profile: &snap, AvatarURL: a.AvatarURL}
}

// Speaker labels a call transcript line.
type Speaker string

const (
	SpeakerUser  Speaker = "You"
	SpeakerAgent Speaker = "Agent"
)

// Transcript is one finished line of a live call. Transcripts exist only
// for the lifetime of the call.
type Transcript struct {
	Author Speaker `json:"author"`
	Text   string  `json:"text"`
}
