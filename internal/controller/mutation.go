package controller

import (
	"context"
	"fmt"

	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/storage"
)

// OpState is the lifecycle of a save or delete.
type OpState int

const (
	OpIdle OpState = iota
	OpPending
	OpSucceeded
	OpFailed
)

func (s OpState) String() string {
	switch s {
	case OpIdle:
		return "idle"
	case OpPending:
		return "pending"
	case OpSucceeded:
		return "succeeded"
	case OpFailed:
		return "failed"
	}
	return "unknown"
}

// MutationKind selects the host call a Mutation performs.
type MutationKind int

const (
	MutationUpdate MutationKind = iota
	MutationRemove
)

func (k MutationKind) String() string {
	if k == MutationRemove {
		return "remove"
	}
	return "update"
}

// Mutation is a host write captured at the moment the user confirmed it.
// Seq orders mutations; completions compare it against the state that is
// open when they arrive.
type Mutation struct {
	Seq        uint64
	Kind       MutationKind
	BookmarkID string
	FolderID   string
	Changes    model.BookmarkChanges
}

// Run performs the host call and nothing else. It does not touch the
// controller, so it can run off the UI goroutine.
func (m *Mutation) Run(ctx context.Context, host storage.BookmarkStore) error {
	switch m.Kind {
	case MutationUpdate:
		return host.Update(ctx, m.BookmarkID, m.Changes)
	case MutationRemove:
		return host.Remove(ctx, m.BookmarkID)
	}
	return fmt.Errorf("unknown mutation kind %d", m.Kind)
}
