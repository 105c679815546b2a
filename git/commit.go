package git

import (
	"fmt"
	"strings"
)

// CommitType represents the type of change in a commit.
type CommitType string

const (
	CommitTypeFeat  CommitType = "feat"
	CommitTypeFix   CommitType = "fix"
	CommitTypeChore CommitType = "chore"
)

// CommitMessage is a conventional commit subject line.
type CommitMessage struct {
	Type    CommitType // Required: type of change (feat, chore, ...)
	Scope   string     // Optional: area affected
	Subject string     // Required: short description
}

// NewCommitMessage creates a commit message.
func NewCommitMessage(typ CommitType, subject string) *CommitMessage {
	return &CommitMessage{Type: typ, Subject: subject}
}

// WithScope adds a scope to the commit message.
func (c *CommitMessage) WithScope(scope string) *CommitMessage {
	c.Scope = scope
	return c
}

// String formats the message as type(scope): subject.
func (c *CommitMessage) String() string {
	var b strings.Builder
	b.WriteString(string(c.Type))
	if c.Scope != "" {
		b.WriteString("(")
		b.WriteString(c.Scope)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(c.Subject)
	return b.String()
}

// Validate checks if the commit message is valid.
func (c *CommitMessage) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("commit type is required")
	}
	if c.Subject == "" {
		return fmt.Errorf("commit subject is required")
	}
	if strings.ContainsAny(c.Subject, "\n\r") {
		return fmt.Errorf("commit subject must be a single line")
	}
	return nil
}
