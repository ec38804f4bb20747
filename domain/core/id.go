package core

import (
	"fmt"
	"strconv"

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

// Domain-specific ID types
type (
	RunID         ID
	ParticipantID ID
)

// String conversions for domain IDs
func (id RunID) String() string         { return ID(id).String() }
func (id ParticipantID) String() string { return ID(id).String() }

// NewRunID creates a run identifier for one pipeline execution
func NewRunID() RunID {
	return RunID(NewID())
}

// participantPrefix is prepended to every generated participant id
const participantPrefix = "P"

// minParticipantWidth is the smallest zero-padding width used for participant ids
const minParticipantWidth = 3

// ParticipantWidth returns the zero-padding width needed for count participants.
func ParticipantWidth(count int) int {
	width := len(strconv.Itoa(count))
	if width < minParticipantWidth {
		width = minParticipantWidth
	}
	return width
}

// NewParticipantID formats the seq-th participant (1-based) with the given width.
func NewParticipantID(seq, width int) ParticipantID {
	return ParticipantID(fmt.Sprintf("%s%0*d", participantPrefix, width, seq))
}
