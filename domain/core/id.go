package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SessionID  ID
	TaskID     ID
	PersonID   ID
	DocumentID ID
)

func (id SessionID) String() string  { return ID(id).String() }
func (id TaskID) String() string     { return ID(id).String() }
func (id PersonID) String() string   { return ID(id).String() }
func (id DocumentID) String() string { return ID(id).String() }

// NewSessionID creates a new import session identifier
func NewSessionID() SessionID { return SessionID(NewID()) }

// NewTaskID creates a new task identifier
func NewTaskID() TaskID { return TaskID(NewID()) }

// ParseSessionID parses a string into SessionID. Session ids are UUIDs.
func ParseSessionID(s string) (SessionID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("session ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", s, err)
	}
	return SessionID(s), nil
}

// ParseDocumentID parses a string into DocumentID
func ParseDocumentID(s string) (DocumentID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("document ID cannot be empty")
	}
	return DocumentID(s), nil
}
