package slack

// Notification is the incoming-webhook message body.
type Notification struct {
	Text string `json:"text"`
}

// NewIssueCreated builds the notification announcing a newly created issue.
func NewIssueCreated(issueURL string) Notification {
	return Notification{Text: "Issue Created: " + issueURL}
}
