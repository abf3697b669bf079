package gemini

import (
	"context"

	"google.golang.org/genai"
)

// ReplySchema is the structured output the reply model must produce.
func ReplySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"responses": {
				Type:        genai.TypeArray,
				Description: "A list of responses from the AI agents who decided to speak.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"agentId": {
							Type:        genai.TypeString,
							Description: "The unique ID of the agent who is responding.",
						},
						"message": {
							Type:        genai.TypeString,
							Description: "The content of the agent's response message.",
						},
					},
					Required: []string{"agentId", "message"},
				},
			},
		},
		Required: []string{"responses"},
	}
}

// GenerateReplies asks the reply model for a JSON reply payload.
func (c *Client) GenerateReplies(ctx context.Context, system, prompt string) (string, error) {
	gc, err := c.client(ctx)
	if err != nil {
		return "", err
	}
	resp, err := gc.Models.GenerateContent(ctx, c.replyModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ReplySchema(),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
