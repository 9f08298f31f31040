package fyf

import (
	"context"
	"fmt"

	"fyf-go/internal/model"
)

// GetEntry returns the entry with the given id via the cached read path.
func (s *FYFService) GetEntry(ctx context.Context, id string) (*model.Entry, error) {
	return CachedRead(ctx, s.cache, entryKey(id), s.opts.CacheTTL, func(ctx context.Context) (*model.Entry, error) {
		entry, err := s.store.FindEntry(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("finding entry: %w", err)
		}
		if entry == nil {
			return nil, fmt.Errorf("entry %s: %w", id, ErrEntryNotFound)
		}
		return entry, nil
	})
}

// ListEntries returns the finalized entries owned by q.AuthorID. Soft-deleted
// rows are excluded unless q.IncludeDeleted. When q.ParentID is set, the
// parent is resolved first (propagating ErrEntryNotFound) and then used as
// a filter.
func (s *FYFService) ListEntries(ctx context.Context, q ListQuery) ([]*model.Entry, error) {
	if q.ParentID != "" && q.ParentID != model.RootParentID {
		if _, err := s.GetEntry(ctx, q.ParentID); err != nil {
			return nil, err
		}
	}

	return CachedRead(ctx, s.cache, listKey(q), s.opts.CacheTTL, func(ctx context.Context) ([]*model.Entry, error) {
		entries, err := s.store.ListEntries(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("listing entries: %w", err)
		}
		return entries, nil
	})
}

// AddEntry creates a new entry owned by authorID. Directories are created
// finalized; everything else starts pending until Finalize. A non-root
// parentID must reference an existing entry.
func (s *FYFService) AddEntry(ctx context.Context, name string, typ model.EntryType, authorID, parentID string) (*model.Entry, error) {
	if parentID == "" {
		parentID = model.RootParentID
	}
	if parentID != model.RootParentID {
		if _, err := s.GetEntry(ctx, parentID); err != nil {
			return nil, err
		}
	}

	status := model.EntryStatusPending
	if typ == model.EntryTypeDirectory {
		status = model.EntryStatusFinalized
	}

	now := s.clock.Now()
	entry := &model.Entry{
		ID:                  s.idgen.New(),
		Name:                name,
		Type:                typ,
		Status:              status,
		AuthorID:            authorID,
		ParentID:            parentID,
		Permission:          model.PermissionPrivate,
		PermissionInclusive: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	txn := s.newTransaction(entry.ID, authorID, model.ActionAdd)

	if err := s.store.CreateEntry(ctx, entry, txn); err != nil {
		return nil, fmt.Errorf("creating entry: %w", err)
	}

	s.refreshEntryCache(ctx, entry)
	s.logger.Info("entry added", "id", entry.ID, "name", name, "type", typ, "author", authorID)
	return entry, nil
}

// Finalize marks that the entry's backing object upload has completed.
// The object is stated to learn its size; an absent object is an error.
func (s *FYFService) Finalize(ctx context.Context, id string) (*model.Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	info, err := s.objects.StatObject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("stat of backing object: %w", err)
	}

	entry.Size = info.Size
	entry.Status = model.EntryStatusFinalized
	entry.UpdatedAt = s.clock.Now()
	txn := s.newTransaction(entry.ID, entry.AuthorID, model.ActionFinalize)

	if err := s.store.UpdateEntry(ctx, entry, txn); err != nil {
		return nil, fmt.Errorf("finalizing entry: %w", err)
	}

	s.refreshEntryCache(ctx, entry)
	s.logger.Info("entry finalized", "id", entry.ID, "size", entry.Size)
	return entry, nil
}

// EntryUpdate carries the fields UpdateEntry may change. Nil fields are
// left untouched.
type EntryUpdate struct {
	Name                *string
	ParentID            *string
	Permission          *model.EntryPermission
	PermissionInclusive *[]string
}

// UpdateEntry applies the non-nil fields of update to the entry. Changing
// Permission is author-only and fails with ErrNotAuthor otherwise. A new
// parent must exist and must not lie inside the entry's own subtree.
func (s *FYFService) UpdateEntry(ctx context.Context, id string, update EntryUpdate, actorID string) (*model.Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Permission != nil && actorID != entry.AuthorID {
		return nil, fmt.Errorf("entry %s: %w", id, ErrNotAuthor)
	}

	if update.Name != nil {
		entry.Name = *update.Name
	}
	if update.ParentID != nil && *update.ParentID != entry.ParentID {
		if err := s.checkParentChange(ctx, entry, *update.ParentID); err != nil {
			return nil, err
		}
		entry.ParentID = *update.ParentID
	}
	if update.Permission != nil {
		entry.Permission = *update.Permission
	}
	if update.PermissionInclusive != nil {
		entry.PermissionInclusive = *update.PermissionInclusive
	}

	entry.UpdatedAt = s.clock.Now()
	txn := s.newTransaction(entry.ID, actorID, model.ActionModify)

	if err := s.store.UpdateEntry(ctx, entry, txn); err != nil {
		return nil, fmt.Errorf("updating entry: %w", err)
	}

	s.refreshEntryCache(ctx, entry)
	s.logger.Info("entry updated", "id", entry.ID, "actor", actorID)
	return entry, nil
}

// checkParentChange validates that newParent exists and is not the entry
// itself or one of its descendants. Without this guard a reparent into the
// entry's own subtree would make the closure traversal non-terminating.
func (s *FYFService) checkParentChange(ctx context.Context, entry *model.Entry, newParent string) error {
	if newParent == entry.ID {
		return fmt.Errorf("entry %s: %w", entry.ID, ErrParentCycle)
	}
	if newParent == model.RootParentID {
		return nil
	}
	if _, err := s.GetEntry(ctx, newParent); err != nil {
		return err
	}

	descendants, err := s.store.DescendantIDs(ctx, entry.ID)
	if err != nil {
		return fmt.Errorf("computing descendants: %w", err)
	}
	for _, id := range descendants {
		if id == newParent {
			return fmt.Errorf("entry %s: %w", entry.ID, ErrParentCycle)
		}
	}
	return nil
}

// RemoveEntry soft-deletes the entry and its whole descendant closure in
// one atomic bulk update. Exactly one remove transaction is appended, for
// the root of the operation.
func (s *FYFService) RemoveEntry(ctx context.Context, id, actorID string) (*model.Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	txn := s.newTransaction(entry.ID, actorID, model.ActionRemove)

	closure, err := s.store.MarkEntryTree(ctx, entry.ID, true, &now, now, txn)
	if err != nil {
		return nil, fmt.Errorf("removing entry tree: %w", err)
	}

	entry.IsDeleted = true
	entry.IsDeletedSince = &now
	entry.UpdatedAt = now

	s.invalidateClosure(ctx, entry.AuthorID, closure)
	s.refreshEntryCache(ctx, entry)
	s.logger.Info("entry removed", "id", entry.ID, "actor", actorID, "affected", len(closure))
	return entry, nil
}

// RestoreEntry clears the soft-delete mark on the entry and its closure.
// Restoring an already-restored tree is a no-op beyond the audit row.
func (s *FYFService) RestoreEntry(ctx context.Context, id, actorID string) (*model.Entry, error) {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	txn := s.newTransaction(entry.ID, actorID, model.ActionRestore)

	closure, err := s.store.MarkEntryTree(ctx, entry.ID, false, nil, now, txn)
	if err != nil {
		return nil, fmt.Errorf("restoring entry tree: %w", err)
	}

	entry.IsDeleted = false
	entry.IsDeletedSince = nil
	entry.UpdatedAt = now

	s.invalidateClosure(ctx, entry.AuthorID, closure)
	s.refreshEntryCache(ctx, entry)
	s.logger.Info("entry restored", "id", entry.ID, "actor", actorID, "affected", len(closure))
	return entry, nil
}

// DeleteEntry hard-deletes the single entry row. Its transactions go with
// it via the foreign-key cascade; children are untouched. The deletion is
// recorded in the structured log so an audit trace survives the cascade.
// When purgeObject is set the backing object is removed as well.
func (s *FYFService) DeleteEntry(ctx context.Context, id, actorID string, purgeObject bool) error {
	entry, err := s.GetEntry(ctx, id)
	if err != nil {
		return err
	}

	txn := s.newTransaction(entry.ID, actorID, model.ActionDelete)
	if err := s.store.DeleteEntry(ctx, entry.ID, txn); err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}

	// The audit row just written was cascaded away with the entry, so the
	// structured log is the durable record of the deletion.
	s.logger.Info("entry hard-deleted",
		"id", entry.ID, "name", entry.Name, "author", entry.AuthorID,
		"actor", actorID, "action", model.ActionDelete, "purge", purgeObject)

	if purgeObject {
		if err := s.objects.DeleteObject(ctx, entry.ID); err != nil {
			return fmt.Errorf("purging backing object: %w", err)
		}
	}

	if err := s.cache.Delete(ctx, entryKey(entry.ID)); err != nil {
		s.logger.Warn("entry cache invalidation failed", "entry", entry.ID, "error", err)
	}
	if err := s.cache.DeletePrefix(ctx, ownerListPrefix(entry.AuthorID)); err != nil {
		s.logger.Warn("list cache invalidation failed", "author", entry.AuthorID, "error", err)
	}
	return nil
}

// EntryTransactions returns the entry's audit trail, oldest first.
func (s *FYFService) EntryTransactions(ctx context.Context, entryID string) ([]*model.Transaction, error) {
	if _, err := s.GetEntry(ctx, entryID); err != nil {
		return nil, err
	}
	txns, err := s.store.EntryTransactions(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("listing entry transactions: %w", err)
	}
	return txns, nil
}

// UploadURL returns a presigned URL for uploading the entry's content.
func (s *FYFService) UploadURL(ctx context.Context, id string) (string, error) {
	url, err := s.objects.PresignPut(ctx, id, s.opts.UploadURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning upload: %w", err)
	}
	return url, nil
}

// ContentURL returns a presigned URL for downloading the entry's content.
func (s *FYFService) ContentURL(ctx context.Context, id string) (string, error) {
	if _, err := s.GetEntry(ctx, id); err != nil {
		return "", err
	}
	url, err := s.objects.PresignGet(ctx, id, s.opts.ContentURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning download: %w", err)
	}
	return url, nil
}

func (s *FYFService) newTransaction(entryID, actorID string, action model.TransactionAction) *model.Transaction {
	return &model.Transaction{
		ID:        s.idgen.New(),
		EntryID:   entryID,
		ActorID:   actorID,
		Action:    action,
		CreatedAt: s.clock.Now(),
	}
}

// refreshEntryCache pre-warms the mutated entry's single-item key and
// drops every cached list variant for its owner. Cache failures after a
// committed store mutation are logged, not returned: the data is durable
// and the stale window is bounded by the TTL.
func (s *FYFService) refreshEntryCache(ctx context.Context, entry *model.Entry) {
	if err := WriteThrough(ctx, s.cache, entryKey(entry.ID), entry, s.opts.CacheTTL); err != nil {
		s.logger.Warn("cache write-through failed", "entry", entry.ID, "error", err)
	}
	if err := s.cache.DeletePrefix(ctx, ownerListPrefix(entry.AuthorID)); err != nil {
		s.logger.Warn("list cache invalidation failed", "author", entry.AuthorID, "error", err)
	}
}

// invalidateClosure drops the single-item keys of every entry touched by a
// cascading update.
func (s *FYFService) invalidateClosure(ctx context.Context, authorID string, ids []string) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(id)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("closure cache invalidation failed", "author", authorID, "error", err)
	}
}
