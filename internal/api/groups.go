package api

import (
	"context"
	"net/http"

	"github.com/quillchat/quill/internal/models"
)

func (c *Client) Groups(ctx context.Context) ([]models.Group, error) {
	var resp struct {
		Groups []models.Group `json:"groups"`
	}
	err := c.do(ctx, http.MethodGet, "/groups", nil, &resp)
	return resp.Groups, err
}

func (c *Client) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	var group models.Group
	err := c.do(ctx, http.MethodPost, "/groups", map[string]string{"name": name}, &group)
	return group, err
}

func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var resp struct {
		Members []models.GroupMember `json:"members"`
	}
	err := c.do(ctx, http.MethodGet, "/groups/"+groupID+"/members", nil, &resp)
	return resp.Members, err
}

func (c *Client) AddGroupMember(ctx context.Context, groupID, email, role string) (models.GroupMember, error) {
	var member models.GroupMember
	err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/members",
		map[string]string{"email": email, "role": role}, &member)
	return member, err
}

func (c *Client) UpdateGroupMemberRole(ctx context.Context, groupID, userID, role string) (models.GroupMember, error) {
	var member models.GroupMember
	err := c.do(ctx, http.MethodPatch, "/groups/"+groupID+"/members/"+userID,
		map[string]string{"role": role}, &member)
	return member, err
}

func (c *Client) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+groupID+"/members/"+userID, nil, nil)
}
