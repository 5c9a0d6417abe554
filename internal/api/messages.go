package api

import (
	"context"
	"net/http"

	"github.com/quillchat/quill/internal/models"
)

// ChatTurn is the server's reply to a sent message: the authoritative copy of
// the user's message plus the assistant's response, in that order.
type ChatTurn struct {
	UserMessage      models.Message `json:"user_message"`
	AssistantMessage models.Message `json:"assistant_message"`
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var resp struct {
		Messages []models.Message `json:"messages"`
		Total    int              `json:"total"`
	}
	err := c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/messages", nil, &resp)
	return resp.Messages, err
}

func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (ChatTurn, error) {
	var turn ChatTurn
	err := c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/messages",
		map[string]string{"text": text}, &turn)
	return turn, err
}

func (c *Client) Assistants(ctx context.Context) ([]models.Assistant, error) {
	var resp struct {
		Assistants []models.Assistant `json:"assistants"`
	}
	err := c.do(ctx, http.MethodGet, "/assistants", nil, &resp)
	return resp.Assistants, err
}
