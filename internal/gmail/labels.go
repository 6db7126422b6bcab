package gmail

import (
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
)

// LabelInfo is a simplified view of a Gmail label.
type LabelInfo struct {
	ID   string
	Name string
	Type string
}

// ListLabels lists all labels for the account.
func (c *Client) ListLabels() ([]*LabelInfo, error) {
	resp, err := c.svc.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}

	labels := make([]*LabelInfo, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, &LabelInfo{ID: l.Id, Name: l.Name, Type: l.Type})
	}
	return labels, nil
}

// CreateLabel creates a user label and returns it.
func (c *Client) CreateLabel(name string) (*LabelInfo, error) {
	label, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %s: %w", name, err)
	}
	return &LabelInfo{ID: label.Id, Name: label.Name, Type: label.Type}, nil
}

// ModifyMessageLabels adds and removes labels on a single message.
func (c *Client) ModifyMessageLabels(messageID string, addLabelIDs, removeLabelIDs []string) error {
	_, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}
	return nil
}

// BatchModifyLabels adds and removes labels on many messages in one call.
func (c *Client) BatchModifyLabels(messageIDs []string, addLabelIDs, removeLabelIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}
	err := c.svc.Messages.BatchModify("me", &gmail.BatchModifyMessagesRequest{
		Ids:            messageIDs,
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	if err != nil {
		return fmt.Errorf("failed to batch-modify labels: %w", err)
	}
	return nil
}
