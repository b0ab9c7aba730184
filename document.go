package securedata

import (
	"fmt"
	"io"
	"sync"

	"github.com/absfs/securedata/jsontree"
	"github.com/sirupsen/logrus"
)

// LoadStatus records how a Document's contents were obtained. The document
// itself behaves the same in every case; the status only makes the
// difference observable.
type LoadStatus uint8

const (
	// LoadStatusEmpty means there were no bytes to load
	LoadStatusEmpty LoadStatus = iota
	// LoadStatusPlain means the bytes were read as plain JSON
	LoadStatusPlain
	// LoadStatusDecrypted means the bytes were a valid envelope for the password
	LoadStatusDecrypted
	// LoadStatusFallback means bytes were present but could not be read, so
	// the document started empty. A wrong password ends up here.
	LoadStatusFallback
)

// String returns the string representation of the load status
func (s LoadStatus) String() string {
	switch s {
	case LoadStatusEmpty:
		return "empty"
	case LoadStatusPlain:
		return "plain"
	case LoadStatusDecrypted:
		return "decrypted"
	case LoadStatusFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// DocumentConfig contains optional settings for a Document
type DocumentConfig struct {
	// Password enables encryption when non-empty
	Password []byte

	// Spec overrides DocumentSpec for the envelope
	Spec *Spec

	// Logger receives load fallbacks; nil discards them
	Logger *logrus.Logger
}

// Document is a JSON object with typed top-level accessors that serializes
// through an envelope when it has a password. It is safe for concurrent use.
type Document struct {
	mu       sync.RWMutex
	tree     *jsontree.Tree
	password []byte
	codec    *Codec
	status   LoadStatus
	logger   *logrus.Logger
}

// NewDocument creates an empty document. An empty password disables encryption.
func NewDocument(password []byte) *Document {
	d, _ := LoadDocumentWithConfig(nil, &DocumentConfig{Password: password})
	return d
}

// LoadDocument decodes data into a new document. It never fails: unreadable
// data, including data encrypted under another password, yields an empty
// document with Status LoadStatusFallback.
func LoadDocument(data, password []byte) *Document {
	d, _ := LoadDocumentWithConfig(data, &DocumentConfig{Password: password})
	return d
}

// LoadDocumentWithConfig is LoadDocument with explicit settings. It fails
// only when config.Spec is invalid.
func LoadDocumentWithConfig(data []byte, config *DocumentConfig) (*Document, error) {
	if config == nil {
		config = &DocumentConfig{}
	}
	spec := DocumentSpec()
	if config.Spec != nil {
		spec = *config.Spec
	}
	codec, err := NewCodec(spec)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = discardLogger()
	}

	d := &Document{
		codec:  codec,
		logger: logger,
	}
	if len(config.Password) > 0 {
		d.password = make([]byte, len(config.Password))
		copy(d.password, config.Password)
	}
	d.tree, d.status = d.read(data, d.password, d.codec)
	return d, nil
}

// Load replaces the document contents with data, using the document's
// password. The fallback rules of LoadDocument apply.
func (d *Document) Load(data []byte) {
	d.mu.RLock()
	password, codec := d.password, d.codec
	d.mu.RUnlock()

	tree, status := d.read(data, password, codec)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = tree
	d.status = status
}

func (d *Document) read(data, password []byte, codec *Codec) (*jsontree.Tree, LoadStatus) {
	if len(data) == 0 {
		return jsontree.New(), LoadStatusEmpty
	}

	plain := data
	status := LoadStatusPlain
	if password != nil {
		if decoded, err := codec.Decode(data, password); err == nil {
			plain = decoded
			status = LoadStatusDecrypted
		} else {
			d.logger.WithFields(logrus.Fields{
				"bytes": len(data),
				"error": err,
			}).Debug("document bytes are not a valid envelope, reading as plain JSON")
		}
	}

	tree, err := jsontree.Parse(plain)
	if err != nil {
		d.logger.WithFields(logrus.Fields{
			"bytes": len(data),
			"error": err,
		}).Warn("document bytes unreadable, starting empty")
		return jsontree.New(), LoadStatusFallback
	}
	return tree, status
}

// Status reports how the current contents were loaded
func (d *Document) Status() LoadStatus {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Encrypted reports whether Bytes produces an envelope
func (d *Document) Encrypted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.password != nil
}

// PutString stores a string under key
func (d *Document) PutString(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.SetString(key, value)
}

// PutInt stores an integer under key
func (d *Document) PutInt(key string, value int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.SetInt(key, int64(value))
}

// PutFloat64 stores a double under key. NaN and infinities are rejected
// and leave the document unchanged.
func (d *Document) PutFloat64(key string, value float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.tree.SetFloat64(key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

// PutFloat32 stores a float under key; see PutFloat64
func (d *Document) PutFloat32(key string, value float32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.tree.SetFloat32(key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

// PutBool stores a bool under key
func (d *Document) PutBool(key string, value bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.SetBool(key, value)
}

// PutNull stores JSON null under key
func (d *Document) PutNull(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.SetNull(key)
}

// PutTree stores a copy of value as a nested object under key
func (d *Document) PutTree(key string, value *jsontree.Tree) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.SetTree(key, value)
}

// PutValue stores an array, mapping or any other JSON-representable value
func (d *Document) PutValue(key string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.tree.Set(key, value); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}

// GetString returns the string under key
func (d *Document) GetString(key string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.GetString(key)
}

// GetStringOr returns the string under key, or def
func (d *Document) GetStringOr(key, def string) string {
	if v, ok := d.GetString(key); ok {
		return v
	}
	return def
}

// GetInt returns the integer under key
func (d *Document) GetInt(key string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.GetInt(key)
}

// GetIntOr returns the integer under key, or def
func (d *Document) GetIntOr(key string, def int) int {
	if v, ok := d.GetInt(key); ok {
		return v
	}
	return def
}

// GetFloat64 returns the double under key
func (d *Document) GetFloat64(key string) (float64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.GetFloat64(key)
}

// GetFloat64Or returns the double under key, or def
func (d *Document) GetFloat64Or(key string, def float64) float64 {
	if v, ok := d.GetFloat64(key); ok {
		return v
	}
	return def
}

// GetFloat32 returns the float under key
func (d *Document) GetFloat32(key string) (float32, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.GetFloat32(key)
}

// GetFloat32Or returns the float under key, or def
func (d *Document) GetFloat32Or(key string, def float32) float32 {
	if v, ok := d.GetFloat32(key); ok {
		return v
	}
	return def
}

// GetBool returns the bool under key
func (d *Document) GetBool(key string) (bool, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.GetBool(key)
}

// GetBoolOr returns the bool under key, or def
func (d *Document) GetBoolOr(key string, def bool) bool {
	if v, ok := d.GetBool(key); ok {
		return v
	}
	return def
}

// GetTree returns a copy of the nested object under key, or an empty tree
func (d *Document) GetTree(key string) *jsontree.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if t, ok := d.tree.Child(key); ok {
		return t
	}
	return jsontree.New()
}

// GetArray returns a copy of the array under key, or an empty slice
func (d *Document) GetArray(key string) []any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if a, ok := d.tree.Array(key); ok {
		return a
	}
	return []any{}
}

// GetObject returns a copy of the object under key, or an empty map
func (d *Document) GetObject(key string) map[string]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if m, ok := d.tree.Object(key); ok {
		return m
	}
	return map[string]any{}
}

// Has reports whether key is present
func (d *Document) Has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Has(key)
}

// Keys returns the top-level keys in sorted order
func (d *Document) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Keys()
}

// Len returns the number of top-level keys
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Len()
}

// Remove deletes key
func (d *Document) Remove(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.Delete(key)
}

// Clear removes every top-level key
func (d *Document) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree.Clear()
}

// Tree returns a deep copy of the document's JSON object
func (d *Document) Tree() *jsontree.Tree {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Clone()
}

// RawBytes returns the document as plain JSON
func (d *Document) RawBytes() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	b, err := d.tree.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}

// Bytes returns the document as plain JSON, or as an envelope around that
// JSON when the document has a password.
func (d *Document) Bytes() ([]byte, error) {
	d.mu.RLock()
	password, codec := d.password, d.codec
	d.mu.RUnlock()

	raw, err := d.RawBytes()
	if err != nil {
		return nil, err
	}
	if password == nil {
		return raw, nil
	}
	return codec.Encode(raw, password)
}

// String returns the plain JSON text of the document
func (d *Document) String() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.String()
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
