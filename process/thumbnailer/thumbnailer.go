// Package thumbnailer is a background worker that generates thumbnails for
// uploaded watch photos. It watches the upload directory tree, writes a
// bounded-fit JPEG next to each new image, and backfills the photo record's
// thumb path. Purely a convenience worker; nothing depends on it for
// correctness.
package thumbnailer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"watchvault/models"
)

const (
	thumbWidth  = 320
	thumbSuffix = ".thumb.jpg"
	debounce    = 250 * time.Millisecond
)

func isSupportedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff":
		return true
	}
	return false
}

// Run watches base and its subdirectories until ctx is done. New image files
// are debounced briefly (uploads appear before their bytes finish flushing)
// and then thumbnailed.
func Run(ctx context.Context, db *gorm.DB, base string, log zerolog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// fsnotify is not recursive; watch every existing directory and pick up
	// new ones from create events.
	if err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}
	log.Info().Str("dir", base).Msg("thumbnailer watching")

	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create == 0 && ev.Op&fsnotify.Write == 0 {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				if err := w.Add(ev.Name); err != nil {
					log.Warn().Err(err).Str("dir", ev.Name).Msg("watch add failed")
				}
				continue
			}
			name := filepath.Base(ev.Name)
			if !isSupportedExt(name) || strings.HasSuffix(name, thumbSuffix) {
				continue
			}
			pending[ev.Name] = time.Now()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watcher error")
		case <-ticker.C:
			for path, seen := range pending {
				if time.Since(seen) < debounce {
					continue
				}
				delete(pending, path)
				if err := process(db, base, path); err != nil {
					log.Warn().Err(err).Str("file", path).Msg("thumbnail failed")
				} else {
					log.Debug().Str("file", path).Msg("thumbnail written")
				}
			}
		}
	}
}

// process writes the thumbnail and records its path on the matching photo row.
func process(db *gorm.DB, base, path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return err
	}
	thumb := imaging.Fit(img, thumbWidth, thumbWidth, imaging.Lanczos)
	thumbPath := path + thumbSuffix
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return err
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		return err
	}
	return db.Model(&models.WatchPhoto{}).
		Where("store_path = ?", rel).
		Update("thumb_path", rel+thumbSuffix).Error
}
