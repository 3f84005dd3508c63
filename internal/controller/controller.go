// Package controller turns user intents into view-store changes and host
// writes. Every host write is split in two: Begin captures the intent on
// the UI goroutine, Mutation.Run talks to the host anywhere, and Finish
// applies the outcome back on the UI goroutine.
package controller

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/search"
	"github.com/nikbrunner/bmtab/internal/storage"
)

const (
	MsgUpdated      = "Bookmark updated"
	MsgUpdateFailed = "Failed to update bookmark"
	MsgDeleted      = "Bookmark deleted"
	MsgDeleteFailed = "Failed to delete bookmark"
)

var (
	ErrNotEditing    = errors.New("no bookmark is being edited")
	ErrNotConfirming = errors.New("no delete is awaiting confirmation")
)

// Controller owns the interaction state on top of the view store.
// It is not safe for concurrent use.
type Controller struct {
	store    *model.Store
	host     storage.BookmarkStore
	messages *Messages
	now      func() time.Time

	searchTerm     string
	activeFolderID string

	seq uint64

	editing   *model.EditingBookmark
	editSeq   uint64
	editState OpState

	confirming  *model.DeleteConfirm
	deleteSeq   uint64
	deleteState OpState
}

// New creates a Controller. A nil now uses time.Now.
func New(store *model.Store, host storage.BookmarkStore, now func() time.Time) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{
		store:    store,
		host:     host,
		messages: NewMessages(now),
		now:      now,
	}
}

// Store returns the view store.
func (c *Controller) Store() *model.Store {
	return c.store
}

// Host returns the host bookmark store.
func (c *Controller) Host() storage.BookmarkStore {
	return c.host
}

// Messages returns the feedback channel.
func (c *Controller) Messages() *Messages {
	return c.messages
}

// BeginReload drops interaction state that points into the old folder
// list and marks the store as loading.
func (c *Controller) BeginReload() {
	c.activeFolderID = ""
	c.editing = nil
	c.confirming = nil
	c.editState = OpIdle
	c.deleteState = OpIdle
	c.store.MarkLoading()
}

// FinishReload applies a tree fetched with the host's GetTree.
func (c *Controller) FinishReload(root *model.Node, err error) error {
	if err := c.store.Apply(root, err, c.now()); err != nil {
		logging.L().Error("load bookmarks", zap.Error(err))
		return err
	}
	logging.L().Info("bookmarks loaded", zap.Int("folders", len(c.store.Folders())))
	return nil
}

// Reload fetches the tree again synchronously.
func (c *Controller) Reload(ctx context.Context) error {
	c.BeginReload()
	root, err := c.host.GetTree(ctx)
	return c.FinishReload(root, err)
}

// Search returns the current search term.
func (c *Controller) Search() string {
	return c.searchTerm
}

// SetSearch replaces the search term.
func (c *Controller) SetSearch(term string) {
	c.searchTerm = term
}

// VisibleFolders applies the search term to the store's folders.
func (c *Controller) VisibleFolders() []model.Folder {
	return search.FilterFolders(c.store.Folders(), c.searchTerm)
}

// OpenFolder sets the folder shown in the detail view.
func (c *Controller) OpenFolder(id string) {
	c.activeFolderID = id
}

// CloseFolder closes the detail view.
func (c *Controller) CloseFolder() {
	c.activeFolderID = ""
}

// ActiveFolder returns the folder in the detail view with all of its
// bookmarks, or nil.
func (c *Controller) ActiveFolder() *model.Folder {
	if c.activeFolderID == "" {
		return nil
	}
	return c.store.FolderByID(c.activeFolderID)
}

// StartEdit opens the edit form for b. Entries without a URL are ignored.
func (c *Controller) StartEdit(b model.Bookmark, folderID string) bool {
	if b.URL == "" {
		return false
	}
	c.editing = &model.EditingBookmark{
		ID:       b.ID,
		Title:    b.Title,
		URL:      b.URL,
		FolderID: folderID,
	}
	c.editSeq = 0
	c.editState = OpIdle
	return true
}

// UpdateEdit replaces the form values.
func (c *Controller) UpdateEdit(changes model.BookmarkChanges) {
	if c.editing == nil {
		return
	}
	c.editing.Title = changes.Title
	c.editing.URL = changes.URL
}

// CancelEdit discards the form.
func (c *Controller) CancelEdit() {
	c.editing = nil
	c.editSeq = 0
	c.editState = OpIdle
}

// Editing returns the open form, or nil.
func (c *Controller) Editing() *model.EditingBookmark {
	return c.editing
}

// EditState returns the state of the most recent save for the open form.
func (c *Controller) EditState() OpState {
	return c.editState
}

// BeginSave captures the form as an update mutation.
func (c *Controller) BeginSave() (*Mutation, error) {
	if c.editing == nil {
		return nil, ErrNotEditing
	}
	c.seq++
	m := &Mutation{
		Seq:        c.seq,
		Kind:       MutationUpdate,
		BookmarkID: c.editing.ID,
		FolderID:   c.editing.FolderID,
		Changes:    c.editing.Changes(),
	}
	c.editSeq = m.Seq
	c.editState = OpPending
	return m, nil
}

// FinishSave applies the host outcome of an update. A success always
// reaches the store; the form closes only if it still belongs to m.
func (c *Controller) FinishSave(m *Mutation, err error) {
	current := c.editing != nil && c.editSeq == m.Seq
	log := logging.L().With(
		zap.Uint64("seq", m.Seq),
		zap.String("bookmark_id", m.BookmarkID),
		zap.Bool("current", current))

	if err != nil {
		log.Warn("update bookmark failed", zap.Error(err))
		if current {
			c.editState = OpFailed
		}
		c.messages.Error(MsgUpdateFailed)
		return
	}

	c.store.UpdateBookmark(m.BookmarkID, m.FolderID, m.Changes)
	log.Info("bookmark updated")
	if current {
		c.editing = nil
		c.editSeq = 0
		c.editState = OpSucceeded
	}
	c.messages.Success(MsgUpdated)
}

// SaveEdit runs a full save synchronously.
func (c *Controller) SaveEdit(ctx context.Context) error {
	m, err := c.BeginSave()
	if err != nil {
		return err
	}
	err = m.Run(ctx, c.host)
	c.FinishSave(m, err)
	return err
}

// StartDelete opens the confirmation for b.
func (c *Controller) StartDelete(b model.Bookmark, folderID string) {
	c.confirming = &model.DeleteConfirm{
		BookmarkID: b.ID,
		Title:      b.Title,
		FolderID:   folderID,
	}
	c.deleteSeq = 0
	c.deleteState = OpIdle
}

// CancelDelete closes the confirmation.
func (c *Controller) CancelDelete() {
	c.confirming = nil
	c.deleteSeq = 0
	c.deleteState = OpIdle
}

// Confirming returns the open confirmation, or nil.
func (c *Controller) Confirming() *model.DeleteConfirm {
	return c.confirming
}

// DeleteState returns the state of the most recent delete for the open
// confirmation.
func (c *Controller) DeleteState() OpState {
	return c.deleteState
}

// BeginDelete captures the confirmation as a remove mutation.
func (c *Controller) BeginDelete() (*Mutation, error) {
	if c.confirming == nil {
		return nil, ErrNotConfirming
	}
	c.seq++
	m := &Mutation{
		Seq:        c.seq,
		Kind:       MutationRemove,
		BookmarkID: c.confirming.BookmarkID,
		FolderID:   c.confirming.FolderID,
	}
	c.deleteSeq = m.Seq
	c.deleteState = OpPending
	return m, nil
}

// FinishDelete applies the host outcome of a remove.
func (c *Controller) FinishDelete(m *Mutation, err error) {
	current := c.confirming != nil && c.deleteSeq == m.Seq
	log := logging.L().With(
		zap.Uint64("seq", m.Seq),
		zap.String("bookmark_id", m.BookmarkID),
		zap.Bool("current", current))

	if err != nil {
		log.Warn("remove bookmark failed", zap.Error(err))
		if current {
			c.deleteState = OpFailed
		}
		c.messages.Error(MsgDeleteFailed)
		return
	}

	c.store.RemoveBookmark(m.BookmarkID, m.FolderID)
	log.Info("bookmark removed")
	if current {
		c.confirming = nil
		c.deleteSeq = 0
		c.deleteState = OpSucceeded
	}
	c.messages.Success(MsgDeleted)
}

// ConfirmAndDelete runs a full delete synchronously.
func (c *Controller) ConfirmAndDelete(ctx context.Context) error {
	m, err := c.BeginDelete()
	if err != nil {
		return err
	}
	err = m.Run(ctx, c.host)
	c.FinishDelete(m, err)
	return err
}
