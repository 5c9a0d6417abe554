package api

import (
	"context"
	"net/http"

	"github.com/quillchat/quill/internal/models"
)

type CreateConversationRequest struct {
	Title string `json:"title,omitempty"`
}

func (c *Client) Conversations(ctx context.Context, groupID string) ([]models.Conversation, error) {
	var resp struct {
		Conversations []models.Conversation `json:"conversations"`
	}
	err := c.do(ctx, http.MethodGet, "/groups/"+groupID+"/conversations", nil, &resp)
	return resp.Conversations, err
}

func (c *Client) CreateConversation(ctx context.Context, groupID, title string) (models.Conversation, error) {
	var conversation models.Conversation
	err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/conversations",
		CreateConversationRequest{Title: title}, &conversation)
	return conversation, err
}

func (c *Client) UpdateConversationTitle(ctx context.Context, conversationID, title string) (models.Conversation, error) {
	var conversation models.Conversation
	err := c.do(ctx, http.MethodPatch, "/conversations/"+conversationID,
		map[string]string{"title": title}, &conversation)
	return conversation, err
}

func (c *Client) DeleteConversation(ctx context.Context, conversationID string) error {
	return c.do(ctx, http.MethodDelete, "/conversations/"+conversationID, nil, nil)
}
