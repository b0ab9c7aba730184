package securedata

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemFS(t *testing.T) absfs.FileSystem {
	t.Helper()
	fs, err := memfs.NewFS()
	require.NoError(t, err)
	return fs
}

func openTestStore(t *testing.T, fs absfs.FileSystem, path, password string) *Store {
	t.Helper()
	var pw []byte
	if password != "" {
		pw = []byte(password)
	}
	store, err := OpenStore(&StoreConfig{FileSystem: fs, Path: path, Password: pw})
	require.NoError(t, err)
	return store
}

func readAll(t *testing.T, fs absfs.FileSystem, path string) []byte {
	t.Helper()
	f, err := fs.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return data
}

func TestStore_EncryptedRoundTrip(t *testing.T) {
	fs := newMemFS(t)

	store := openTestStore(t, fs, "/app/data", "hunter2")
	assert.Equal(t, LoadStatusEmpty, store.Document().Status())

	store.Document().PutString("user", "alice")
	store.Document().PutInt("age", 42)
	require.NoError(t, <-store.Save())

	data := readAll(t, fs, "/app/data")
	assert.NotContains(t, string(data), "alice")

	reopened := openTestStore(t, fs, "/app/data", "hunter2")
	doc := reopened.Document()
	assert.Equal(t, LoadStatusDecrypted, doc.Status())
	assert.Equal(t, "alice", doc.GetStringOr("user", ""))
	assert.Equal(t, 42, doc.GetIntOr("age", 0))
}

func TestStore_WrongPasswordLoadsEmpty(t *testing.T) {
	fs := newMemFS(t)

	store := openTestStore(t, fs, "/app/data", "hunter2")
	store.Document().PutString("user", "alice")
	require.NoError(t, <-store.Save())

	other := openTestStore(t, fs, "/app/data", "letmein")
	assert.Equal(t, LoadStatusFallback, other.Document().Status())
	assert.Equal(t, 0, other.Document().Len())
}

func TestStore_PlainStore(t *testing.T) {
	fs := newMemFS(t)

	store := openTestStore(t, fs, "/plain.json", "")
	store.Document().PutBool("enabled", true)
	require.NoError(t, store.SaveSync())

	assert.Equal(t, `{"enabled":true}`, string(readAll(t, fs, "/plain.json")))

	reopened := openTestStore(t, fs, "/plain.json", "")
	assert.Equal(t, LoadStatusPlain, reopened.Document().Status())
	assert.True(t, reopened.Document().GetBoolOr("enabled", false))
}

func TestStore_MissingFile(t *testing.T) {
	store := openTestStore(t, newMemFS(t), "/nowhere/data", "pw")
	assert.Equal(t, LoadStatusEmpty, store.Document().Status())
	assert.Equal(t, "/nowhere/data", store.Path())
}

func TestStore_LastSaveWins(t *testing.T) {
	fs := newMemFS(t)
	store := openTestStore(t, fs, "/app/data", "pw")

	results := make([]<-chan error, 0, 20)
	for i := 0; i < 20; i++ {
		store.Document().PutInt("n", i)
		results = append(results, store.Save())
	}
	store.Wait()

	for _, ch := range results {
		assert.NoError(t, <-ch)
	}

	reopened := openTestStore(t, fs, "/app/data", "pw")
	assert.Equal(t, 19, reopened.Document().GetIntOr("n", -1))
}

func TestStore_FireAndForget(t *testing.T) {
	fs := newMemFS(t)
	store := openTestStore(t, fs, "/data", "")
	store.Document().PutString("k", "v")

	store.Save()
	store.Wait()

	assert.Equal(t, `{"k":"v"}`, string(readAll(t, fs, "/data")))
}

func TestStore_NonFiniteFloatDoesNotBlockSaves(t *testing.T) {
	fs := newMemFS(t)

	store := openTestStore(t, fs, "/data", "pw")
	store.Document().PutString("name", "alice")
	require.NoError(t, store.SaveSync())

	assert.Error(t, store.Document().PutFloat64("bad", math.NaN()))
	store.Document().PutString("name", "bob")
	require.NoError(t, store.SaveSync())

	store.Document().PutInt("n", 1)
	require.NoError(t, <-store.Save())

	reopened := openTestStore(t, fs, "/data", "pw")
	assert.Equal(t, "bob", reopened.Document().GetStringOr("name", ""))
	assert.Equal(t, 1, reopened.Document().GetIntOr("n", 0))
	assert.False(t, reopened.Document().Has("bad"))
}

func TestStore_Reload(t *testing.T) {
	fs := newMemFS(t)

	writer := openTestStore(t, fs, "/data", "pw")
	reader := openTestStore(t, fs, "/data", "pw")

	writer.Document().PutString("k", "fresh")
	require.NoError(t, writer.SaveSync())

	assert.False(t, reader.Document().Has("k"))
	assert.Equal(t, LoadStatusDecrypted, reader.Reload())
	assert.Equal(t, "fresh", reader.Document().GetStringOr("k", ""))
}

func TestStore_OSFileSystem(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join("nested", "dir", DefaultFileName)
	fs := NewOSFileSystem(dir)

	store := openTestStore(t, fs, path, "hunter2")
	store.Document().PutString("user", "alice")
	require.NoError(t, <-store.Save())

	store.Document().PutString("user", "bob")
	require.NoError(t, <-store.Save())

	info, err := os.Stat(filepath.Join(dir, path))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileMode, info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Join(dir, "nested", "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, DefaultFileName, entries[0].Name())

	reopened := openTestStore(t, fs, path, "hunter2")
	assert.Equal(t, "bob", reopened.Document().GetStringOr("user", ""))
}

func TestStore_RootedPathCannotEscape(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "root")
	require.NoError(t, os.Mkdir(root, 0o700))

	store, err := OpenStore(&StoreConfig{
		FileSystem: NewOSFileSystem(root),
		Path:       "../escaped",
		Password:   []byte("pw"),
	})
	require.NoError(t, err)
	store.Document().PutString("k", "v")
	require.NoError(t, store.SaveSync())

	_, err = os.Stat(filepath.Join(base, "escaped"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	_, err = os.Stat(filepath.Join(root, "escaped"))
	assert.NoError(t, err)
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, filepath.Join("app", "data"), DefaultStorePath("app"))
}

func TestStoreConfig_Validate(t *testing.T) {
	fs := newMemFS(t)
	badSpec := DefaultSpec().WithIterations(0)

	tests := []struct {
		name    string
		config  *StoreConfig
		wantErr error
	}{
		{"nil config", nil, ErrNilConfig},
		{"nil filesystem", &StoreConfig{Path: "/data"}, ErrNilFileSystem},
		{"empty path", &StoreConfig{FileSystem: fs}, nil},
		{"invalid spec", &StoreConfig{FileSystem: fs, Path: "/data", Spec: &badSpec}, ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenStore(tt.config)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.True(t, IsValidationError(err))
			}
		})
	}

	assert.NoError(t, (&StoreConfig{FileSystem: fs, Path: "/data"}).Validate())
}

// faultyFS fails or panics on selected operations
type faultyFS struct {
	absfs.FileSystem
	failCreate  bool
	panicRename bool
}

func (f *faultyFS) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	if f.failCreate && flag&os.O_CREATE != 0 {
		return nil, errors.New("read-only filesystem")
	}
	return f.FileSystem.OpenFile(name, flag, perm)
}

func (f *faultyFS) Rename(oldpath, newpath string) error {
	if f.panicRename {
		panic("rename exploded")
	}
	return f.FileSystem.Rename(oldpath, newpath)
}

func TestStore_SaveErrors(t *testing.T) {
	t.Run("write failure", func(t *testing.T) {
		logger, hook := test.NewNullLogger()
		fs := &faultyFS{FileSystem: newMemFS(t), failCreate: true}

		store, err := OpenStore(&StoreConfig{FileSystem: fs, Path: "/data", Logger: logger})
		require.NoError(t, err)
		store.Document().PutString("k", "v")

		err = <-store.Save()
		require.Error(t, err)
		assert.True(t, IsIOError(err))
		assert.ErrorIs(t, err, ErrPersistence)

		store.Wait()
		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, logrus.ErrorLevel, entry.Level)
		assert.Equal(t, "store save failed", entry.Message)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		fs := &faultyFS{FileSystem: newMemFS(t), panicRename: true}
		store := openTestStore(t, fs, "/data", "")

		err := <-store.Save()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "rename exploded"))
	})

	t.Run("channel closes after result", func(t *testing.T) {
		store := openTestStore(t, newMemFS(t), "/data", "")
		ch := store.Save()
		assert.NoError(t, <-ch)
		_, open := <-ch
		assert.False(t, open)
	})
}
