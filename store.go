package securedata

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/absfs/absfs"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultFileName is the file a store uses inside its data directory
const DefaultFileName = "data"

// DefaultFileMode is the permission given to store files
const DefaultFileMode os.FileMode = 0o600

// DefaultStorePath returns the store file path inside an application data
// directory.
func DefaultStorePath(dir string) string {
	return filepath.Join(dir, DefaultFileName)
}

// StoreConfig contains configuration for a file-backed Store
type StoreConfig struct {
	// FileSystem holds the store file. Use NewOSFileSystem for the host
	// filesystem or memfs in tests.
	FileSystem absfs.FileSystem

	// Path is the location of the store file within FileSystem
	Path string

	// Password enables encryption when non-empty
	Password []byte

	// Spec overrides DocumentSpec for the envelope
	Spec *Spec

	// FileMode is applied to newly written files (default: 0600)
	FileMode os.FileMode

	// Logger receives load and save events; nil discards them
	Logger *logrus.Logger
}

// Validate checks if the configuration is valid
func (c *StoreConfig) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if c.FileSystem == nil {
		return ErrNilFileSystem
	}
	if err := ValidateFilePath(c.Path); err != nil {
		return err
	}
	if c.Spec != nil {
		if err := c.Spec.Validate(); err != nil {
			return fmt.Errorf("invalid spec: %w", err)
		}
	}
	return nil
}

// Store is a Document bound to one file. Saves run in the background;
// writes to the file are serialized and each one captures the document as
// it is when the write starts.
type Store struct {
	fs     absfs.FileSystem
	path   string
	mode   os.FileMode
	doc    *Document
	logger *logrus.Logger

	writeMu sync.Mutex
	pending sync.WaitGroup
}

// OpenStore reads the store file and loads it into a Document. A missing or
// unreadable file yields an empty document; only an invalid config fails.
func OpenStore(config *StoreConfig) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := config.Logger
	if logger == nil {
		logger = discardLogger()
	}
	mode := config.FileMode
	if mode == 0 {
		mode = DefaultFileMode
	}

	s := &Store{
		fs:     config.FileSystem,
		path:   config.Path,
		mode:   mode,
		logger: logger,
	}

	doc, err := LoadDocumentWithConfig(s.readFile(), &DocumentConfig{
		Password: config.Password,
		Spec:     config.Spec,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	s.doc = doc

	s.logger.WithFields(logrus.Fields{
		"path":      s.path,
		"status":    doc.Status().String(),
		"encrypted": doc.Encrypted(),
		"keys":      doc.Len(),
	}).Debug("store opened")
	return s, nil
}

// Document returns the store's live document
func (s *Store) Document() *Document {
	return s.doc
}

// Path returns the store file path
func (s *Store) Path() string {
	return s.path
}

// Reload discards in-memory changes and reads the store file again
func (s *Store) Reload() LoadStatus {
	s.doc.Load(s.readFile())
	return s.doc.Status()
}

func (s *Store) readFile() []byte {
	f, err := s.fs.Open(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.WithFields(logrus.Fields{
				"path":  s.path,
				"error": err,
			}).Warn("store file unreadable, starting empty")
		}
		return nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err,
		}).Warn("store file unreadable, starting empty")
		return nil
	}
	return data
}

// Save writes the document in the background. The returned channel yields
// exactly one value, nil on success, and is then closed. Callers that do
// not care about the outcome may ignore it.
func (s *Store) Save() <-chan error {
	done := make(chan error, 1)
	s.pending.Add(1)

	go func() {
		defer s.pending.Done()

		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic in save: %v", r)
			}
			if err != nil {
				s.logger.WithFields(logrus.Fields{
					"path":  s.path,
					"error": err,
				}).Error("store save failed")
			}
			done <- err
			close(done)
		}()

		err = s.SaveSync()
	}()

	return done
}

// SaveSync writes the document and returns once the file is in place
func (s *Store) SaveSync() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := s.doc.Bytes()
	if err != nil {
		return err
	}
	if err := s.writeFile(data); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"path":  s.path,
		"bytes": len(data),
	}).Debug("store saved")
	return nil
}

// Wait blocks until every Save started so far has finished
func (s *Store) Wait() {
	s.pending.Wait()
}

// writeFile replaces the store file with data by writing a sibling temp
// file and renaming it over the target, so readers see either the old or
// the new contents.
func (s *Store) writeFile(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0o700); err != nil {
			return NewIOError("mkdir", dir, err)
		}
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	f, err := s.fs.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, s.mode)
	if err != nil {
		return NewIOError("open", tmp, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return NewIOError("write", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		s.fs.Remove(tmp)
		return NewIOError("sync", tmp, err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmp)
		return NewIOError("close", tmp, err)
	}

	if err := s.fs.Rename(tmp, s.path); err != nil {
		// Some filesystems refuse to rename over an existing file.
		if rmErr := s.fs.Remove(s.path); rmErr == nil || errors.Is(rmErr, os.ErrNotExist) {
			err = s.fs.Rename(tmp, s.path)
		}
		if err != nil {
			s.fs.Remove(tmp)
			return NewIOError("rename", s.path, err)
		}
	}
	return nil
}
