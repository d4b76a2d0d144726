package services

import (
	"mime/multipart"

	"github.com/rs/zerolog"
	"github.com/yukikurage/ndt-worklog/internal/metrics"
)

// FileStore keeps uploaded documents. *storage.FileStore implements it.
type FileStore interface {
	Save(field string, header *multipart.FileHeader) (string, error)
	Remove(name string) error
}

// fileUpdate stores new files before the row is updated and removes the
// replaced ones only afterwards, so a failed write never loses a document.
type fileUpdate struct {
	store   FileStore
	metrics *metrics.Metrics
	log     zerolog.Logger

	saved    []string
	replaced []string
}

// save stores header and returns the new name. The previous name is queued
// for removal on commit.
func (u *fileUpdate) save(field string, header *multipart.FileHeader, previous string) (string, error) {
	name, err := u.store.Save(field, header)
	u.metrics.Upload(field, err)
	if err != nil {
		return "", err
	}
	u.saved = append(u.saved, name)
	if previous != "" {
		u.replaced = append(u.replaced, previous)
	}
	return name, nil
}

// commit removes the replaced files.
func (u *fileUpdate) commit() {
	u.removeAll(u.replaced)
}

// rollback removes the files saved by this update.
func (u *fileUpdate) rollback() {
	u.removeAll(u.saved)
}

func (u *fileUpdate) removeAll(names []string) {
	for _, name := range names {
		if err := u.store.Remove(name); err != nil {
			u.log.Warn().Err(err).Str("file", name).Msg("Failed to remove uploaded file")
		}
	}
}

// removeFiles deletes the files of a deleted row.
func removeFiles(store FileStore, log zerolog.Logger, names ...string) {
	u := fileUpdate{store: store, log: log}
	u.removeAll(names)
}
