package models

// UserProfile describes the human in the conversation.
type UserProfile struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}
