package notify

import (
	"context"
	"fmt"
	"regexp"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

// issueKey matches Jira issue keys such as OPS-12. Placeholder references
// like "no-jira" never match.
var issueKey = regexp.MustCompile(`^[A-Z][A-Z0-9_]*-[0-9]+$`)

// JiraNotifier comments each created pull request onto the application's
// Jira issue. Other events are ignored.
type JiraNotifier struct {
	client *jira.Client
	logger *zap.Logger
}

// NewJiraNotifier creates a Jira notifier using basic auth with an API token.
func NewJiraNotifier(baseURL, username, apiToken string, logger *zap.Logger) (*JiraNotifier, error) {
	tp := jira.BasicAuthTransport{
		Username: username,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &JiraNotifier{client: client, logger: logger}, nil
}

// Notify implements Notifier.
func (n *JiraNotifier) Notify(ctx context.Context, event Event) error {
	if event.Type != EventPRCreated || !issueKey.MatchString(event.IssueRef) {
		return nil
	}

	body := fmt.Sprintf("Pull request for %s in %s: %s", event.App, event.Repo, event.URL)
	_, _, err := n.client.Issue.AddCommentWithContext(ctx, event.IssueRef, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("comment on %s: %w", event.IssueRef, err)
	}

	n.logger.Debug("commented on issue", zap.String("issue", event.IssueRef), zap.String("pr", event.URL))
	return nil
}
