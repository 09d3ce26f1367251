package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"expensesync/internal/core"
	"expensesync/internal/log"
	"expensesync/internal/remote"
	"expensesync/internal/storage"
	"expensesync/internal/watch"
)

const imageContentType = "image/jpeg"

// AddExpenseImage compresses file, stores it with a thumbnail and records an
// unsynced local image row for the expense.
func (r *ExpenseRepository) AddExpenseImage(ctx context.Context, expenseID, file string) (core.ExpenseImage, error) {
	if _, err := r.store.GetExpense(ctx, expenseID); err != nil {
		return core.ExpenseImage{}, fmt.Errorf("add image to expense %s: %w", expenseID, err)
	}

	stored, err := r.processor.Process(ctx, file)
	if err != nil {
		return core.ExpenseImage{}, fmt.Errorf("process image: %w", err)
	}

	img := core.ExpenseImage{
		ID:           r.newID(),
		ExpenseID:    expenseID,
		ImageURI:     stored.ImagePath,
		ThumbnailURI: stored.ThumbnailPath,
		CreatedAt:    r.nowMillis(),
	}
	if err := r.store.InsertExpenseImage(ctx, img); err != nil {
		_ = r.processor.Remove(stored.ImagePath, stored.ThumbnailPath)
		return core.ExpenseImage{}, fmt.Errorf("add expense image: %w", err)
	}
	r.hub.Notify(watch.TopicExpenses)
	return img, nil
}

// DeleteExpenseImage removes the local row and its files. The remote copy,
// if any, is left in place.
func (r *ExpenseRepository) DeleteExpenseImage(ctx context.Context, id string) error {
	img, err := r.store.GetExpenseImage(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete expense image: %w", err)
	}
	if err := r.store.DeleteExpenseImage(ctx, id); err != nil {
		return fmt.Errorf("delete expense image: %w", err)
	}
	r.hub.Notify(watch.TopicExpenses)
	r.removeFiles(ctx, img)
	return nil
}

func (r *ExpenseRepository) GetExpenseImages(ctx context.Context, expenseID string) ([]core.ExpenseImage, error) {
	imgs, err := r.store.ListExpenseImages(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("get expense images: %w", err)
	}
	return imgs, nil
}

// SyncExpenseImages uploads every unsynced image file, records it remotely
// and marks the local row synced with the public URL. Images are never
// pulled.
func (r *ExpenseRepository) SyncExpenseImages(ctx context.Context) (SyncReport, error) {
	return reconcile(ctx, r.settings, reconciler[core.ExpenseImage]{
		entity:   EntityImages,
		phase:    PhaseUpload,
		id:       func(img core.ExpenseImage) string { return img.ID },
		unsynced: r.store.ListUnsyncedExpenseImages,
		push: func(ctx context.Context, img core.ExpenseImage) (core.ExpenseImage, error) {
			url, err := r.upload(ctx, img)
			if err != nil {
				return img, err
			}
			img.RemoteURL = url
			if _, err := r.remote.CreateExpenseImage(ctx, img); err != nil {
				return img, fmt.Errorf("create image record: %w", err)
			}
			return img, nil
		},
		markSynced: func(ctx context.Context, img core.ExpenseImage) error {
			if err := r.store.MarkExpenseImageSynced(ctx, img.ID, img.RemoteURL); err != nil {
				return err
			}
			r.hub.Notify(watch.TopicExpenses)
			return nil
		},
	})
}

func (r *ExpenseRepository) upload(ctx context.Context, img core.ExpenseImage) (string, error) {
	f, err := os.Open(img.ImageURI)
	if err != nil {
		return "", fmt.Errorf("open image file: %w", err)
	}
	defer f.Close()

	path := remote.ImagePath(img.ExpenseID, filepath.Base(img.ImageURI))
	url, err := r.objects.Upload(ctx, path, f, imageContentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func (r *ExpenseRepository) removeFiles(ctx context.Context, img core.ExpenseImage) {
	if img.ImageURI == "" && img.ThumbnailURI == "" {
		return
	}
	if err := r.processor.Remove(img.ImageURI, img.ThumbnailURI); err != nil {
		r.logger.WarnContext(ctx, "Failed to remove image files",
			log.NewFields().WithRow(EntityImages, img.ID).WithError(err, "").ToSlice()...)
	}
}
