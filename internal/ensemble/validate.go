package ensemble

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Reply is one agent message proposed by the backend.
type Reply struct {
	AgentID string `json:"agentId"`
	Message string `json:"message"`
}

type replyEntry struct {
	AgentID *string `json:"agentId"`
	Message *string `json:"message"`
}

// ParseReplies validates a backend payload of the form
// {"responses":[{"agentId":"...","message":"..."}]}. A payload without a
// responses array yields ErrMalformedPayload. Entries whose agentId or
// message is missing or not a string are dropped and counted.
func ParseReplies(raw string) ([]Reply, int, error) {
	var payload struct {
		Responses *[]json.RawMessage `json:"responses"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Responses == nil {
		return nil, 0, fmt.Errorf("%w: missing responses array", ErrMalformedPayload)
	}

	replies := make([]Reply, 0, len(*payload.Responses))
	dropped := 0
	for _, item := range *payload.Responses {
		var e replyEntry
		if err := json.Unmarshal(item, &e); err != nil || e.AgentID == nil || e.Message == nil {
			dropped++
			continue
		}
		replies = append(replies, Reply{AgentID: *e.AgentID, Message: *e.Message})
	}
	return replies, dropped, nil
}
