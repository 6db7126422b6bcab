package gmail

import (
	"fmt"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// FilterCriteria represents the matching side of a Gmail filter.
type FilterCriteria struct {
	From          string
	To            string
	Subject       string
	Query         string
	HasAttachment bool
}

// FilterAction represents what a filter does when it matches.
type FilterAction struct {
	AddLabelIDs    []string
	RemoveLabelIDs []string
	Forward        string
	Archive        bool // remove INBOX
	MarkAsRead     bool // remove UNREAD
	Star           bool // add STARRED
	Delete         bool // add TRASH
}

// FilterInfo is a Gmail filter with its criteria and actions.
type FilterInfo struct {
	ID       string
	Criteria FilterCriteria
	Action   FilterAction
}

// CriteriaSummary renders the filter's criteria as a short human-readable
// string for listings.
func (f *FilterInfo) CriteriaSummary() string {
	var parts []string
	if f.Criteria.From != "" {
		parts = append(parts, "from:"+f.Criteria.From)
	}
	if f.Criteria.To != "" {
		parts = append(parts, "to:"+f.Criteria.To)
	}
	if f.Criteria.Subject != "" {
		parts = append(parts, "subject:"+f.Criteria.Subject)
	}
	if f.Criteria.Query != "" {
		parts = append(parts, "query:"+f.Criteria.Query)
	}
	if f.Criteria.HasAttachment {
		parts = append(parts, "has:attachment")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}

// ActionSummary renders the filter's actions as a short human-readable
// string for listings.
func (f *FilterInfo) ActionSummary() string {
	var parts []string
	if len(f.Action.AddLabelIDs) > 0 {
		parts = append(parts, "add:"+strings.Join(f.Action.AddLabelIDs, ","))
	}
	if len(f.Action.RemoveLabelIDs) > 0 {
		parts = append(parts, "remove:"+strings.Join(f.Action.RemoveLabelIDs, ","))
	}
	if f.Action.Forward != "" {
		parts = append(parts, "forward:"+f.Action.Forward)
	}
	if f.Action.Archive {
		parts = append(parts, "archive")
	}
	if f.Action.MarkAsRead {
		parts = append(parts, "mark-read")
	}
	if f.Action.Star {
		parts = append(parts, "star")
	}
	if f.Action.Delete {
		parts = append(parts, "trash")
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, " ")
}

// CreateFilter creates a new Gmail filter.
func (c *Client) CreateFilter(criteria FilterCriteria, action FilterAction) (*FilterInfo, error) {
	gmailCriteria := &gmail.FilterCriteria{
		From:          criteria.From,
		To:            criteria.To,
		Subject:       criteria.Subject,
		Query:         criteria.Query,
		HasAttachment: criteria.HasAttachment,
	}

	gmailAction := &gmail.FilterAction{
		AddLabelIds:    append([]string(nil), action.AddLabelIDs...),
		RemoveLabelIds: append([]string(nil), action.RemoveLabelIDs...),
		Forward:        action.Forward,
	}
	if action.Archive {
		gmailAction.RemoveLabelIds = append(gmailAction.RemoveLabelIds, "INBOX")
	}
	if action.MarkAsRead {
		gmailAction.RemoveLabelIds = append(gmailAction.RemoveLabelIds, "UNREAD")
	}
	if action.Star {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "STARRED")
	}
	if action.Delete {
		gmailAction.AddLabelIds = append(gmailAction.AddLabelIds, "TRASH")
	}

	created, err := c.svc.Settings.Filters.Create("me", &gmail.Filter{
		Criteria: gmailCriteria,
		Action:   gmailAction,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}
	return filterInfoFromAPI(created), nil
}

// ListFilters lists all Gmail filters for the account.
func (c *Client) ListFilters() ([]*FilterInfo, error) {
	resp, err := c.svc.Settings.Filters.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}

	filters := make([]*FilterInfo, 0, len(resp.Filter))
	for _, f := range resp.Filter {
		filters = append(filters, filterInfoFromAPI(f))
	}
	return filters, nil
}

// DeleteFilter deletes a filter by ID.
func (c *Client) DeleteFilter(filterID string) error {
	if err := c.svc.Settings.Filters.Delete("me", filterID).Do(); err != nil {
		return fmt.Errorf("failed to delete filter %s: %w", filterID, err)
	}
	return nil
}

// filterInfoFromAPI converts a Gmail API filter into FilterInfo, folding the
// system labels back into their named actions.
func filterInfoFromAPI(f *gmail.Filter) *FilterInfo {
	info := &FilterInfo{ID: f.Id}

	if f.Criteria != nil {
		info.Criteria = FilterCriteria{
			From:          f.Criteria.From,
			To:            f.Criteria.To,
			Subject:       f.Criteria.Subject,
			Query:         f.Criteria.Query,
			HasAttachment: f.Criteria.HasAttachment,
		}
	}

	if f.Action != nil {
		info.Action = FilterAction{
			AddLabelIDs:    f.Action.AddLabelIds,
			RemoveLabelIDs: f.Action.RemoveLabelIds,
			Forward:        f.Action.Forward,
		}
		for _, labelID := range f.Action.RemoveLabelIds {
			switch labelID {
			case "INBOX":
				info.Action.Archive = true
			case "UNREAD":
				info.Action.MarkAsRead = true
			}
		}
		for _, labelID := range f.Action.AddLabelIds {
			switch labelID {
			case "STARRED":
				info.Action.Star = true
			case "TRASH":
				info.Action.Delete = true
			}
		}
	}

	return info
}
