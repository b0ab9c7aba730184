package securedata

import (
	"bytes"
	"math"
	"testing"

	"github.com/absfs/securedata/jsontree"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_PutGet(t *testing.T) {
	doc := NewDocument(nil)
	assert.Equal(t, LoadStatusEmpty, doc.Status())
	assert.False(t, doc.Encrypted())

	doc.PutString("name", "alice")
	doc.PutInt("age", 42)
	require.NoError(t, doc.PutFloat64("height", 1.75))
	require.NoError(t, doc.PutFloat32("ratio", 0.5))
	doc.PutBool("admin", true)
	doc.PutNull("nothing")

	s, ok := doc.GetString("name")
	assert.True(t, ok)
	assert.Equal(t, "alice", s)

	i, ok := doc.GetInt("age")
	assert.True(t, ok)
	assert.Equal(t, 42, i)

	f, ok := doc.GetFloat64("height")
	assert.True(t, ok)
	assert.Equal(t, 1.75, f)

	f32, ok := doc.GetFloat32("ratio")
	assert.True(t, ok)
	assert.Equal(t, float32(0.5), f32)

	b, ok := doc.GetBool("admin")
	assert.True(t, ok)
	assert.True(t, b)

	assert.True(t, doc.Has("nothing"))
	_, ok = doc.GetString("nothing")
	assert.False(t, ok)

	assert.Equal(t, []string{"admin", "age", "height", "name", "nothing", "ratio"}, doc.Keys())
	assert.Equal(t, 6, doc.Len())
}

func TestDocument_NonFiniteFloatsRejected(t *testing.T) {
	tests := []struct {
		name string
		put  func(*Document) error
	}{
		{"float64 NaN", func(d *Document) error { return d.PutFloat64("bad", math.NaN()) }},
		{"float64 +Inf", func(d *Document) error { return d.PutFloat64("bad", math.Inf(1)) }},
		{"float64 -Inf", func(d *Document) error { return d.PutFloat64("bad", math.Inf(-1)) }},
		{"float32 NaN", func(d *Document) error { return d.PutFloat32("bad", float32(math.NaN())) }},
		{"float32 +Inf", func(d *Document) error { return d.PutFloat32("bad", float32(math.Inf(1))) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument([]byte("pw"))
			doc.PutString("name", "alice")

			err := tt.put(doc)
			assert.ErrorIs(t, err, ErrSerialization)
			assert.ErrorIs(t, err, jsontree.ErrUnsupportedValue)
			assert.False(t, doc.Has("bad"))

			doc.PutString("name", "bob")
			_, err = doc.Bytes()
			require.NoError(t, err)
			raw, err := doc.RawBytes()
			require.NoError(t, err)
			assert.Equal(t, `{"name":"bob"}`, string(raw))
		})
	}
}

func TestDocument_Defaults(t *testing.T) {
	doc := NewDocument(nil)
	doc.PutString("name", "alice")

	assert.Equal(t, 0, doc.GetIntOr("missing", 0))
	assert.Equal(t, 7, doc.GetIntOr("name", 7))
	assert.Equal(t, "alice", doc.GetStringOr("name", "bob"))
	assert.Equal(t, "bob", doc.GetStringOr("missing", "bob"))
	assert.Equal(t, 1.5, doc.GetFloat64Or("missing", 1.5))
	assert.Equal(t, float32(2.5), doc.GetFloat32Or("missing", 2.5))
	assert.True(t, doc.GetBoolOr("missing", true))

	assert.Equal(t, 0, doc.GetTree("missing").Len())
	assert.Empty(t, doc.GetArray("missing"))
	assert.NotNil(t, doc.GetArray("missing"))
	assert.Empty(t, doc.GetObject("missing"))
	assert.NotNil(t, doc.GetObject("missing"))
}

func TestDocument_Composites(t *testing.T) {
	doc := NewDocument(nil)

	profile := jsontree.New()
	profile.SetString("city", "Oslo")
	doc.PutTree("profile", profile)

	require.NoError(t, doc.PutValue("tags", []string{"a", "b"}))
	require.NoError(t, doc.PutValue("limits", map[string]int{"max": 3}))

	city, ok := doc.GetTree("profile").GetString("city")
	assert.True(t, ok)
	assert.Equal(t, "Oslo", city)

	assert.Equal(t, []any{"a", "b"}, doc.GetArray("tags"))
	assert.Len(t, doc.GetObject("limits"), 1)

	err := doc.PutValue("bad", func() {})
	assert.ErrorIs(t, err, ErrSerialization)
}

func TestDocument_RemoveClear(t *testing.T) {
	doc := NewDocument(nil)
	doc.PutInt("a", 1)
	doc.PutInt("b", 2)

	doc.Remove("a")
	assert.False(t, doc.Has("a"))
	doc.Remove("missing")
	assert.Equal(t, 1, doc.Len())

	doc.Clear()
	assert.Equal(t, 0, doc.Len())

	raw, err := doc.RawBytes()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(raw))
}

func TestDocument_PlainBytes(t *testing.T) {
	doc := NewDocument(nil)
	doc.PutString("k", "v")

	b, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, `{"k":"v"}`, string(b))
	assert.Equal(t, `{"k":"v"}`, doc.String())

	loaded := LoadDocument(b, nil)
	assert.Equal(t, LoadStatusPlain, loaded.Status())
	v, _ := loaded.GetString("k")
	assert.Equal(t, "v", v)
}

func TestDocument_EncryptedRoundTrip(t *testing.T) {
	doc := NewDocument([]byte("hunter2"))
	assert.True(t, doc.Encrypted())
	doc.PutString("user", "alice")
	doc.PutInt("age", 42)

	b, err := doc.Bytes()
	require.NoError(t, err)
	assert.False(t, bytes.Contains(b, []byte("alice")))

	raw, err := doc.RawBytes()
	require.NoError(t, err)
	assert.Len(t, b, DocumentSpec().EnvelopeSize(len(raw)))

	loaded := LoadDocument(b, []byte("hunter2"))
	assert.Equal(t, LoadStatusDecrypted, loaded.Status())
	assert.Equal(t, "alice", loaded.GetStringOr("user", ""))
	assert.Equal(t, 42, loaded.GetIntOr("age", 0))
}

func TestDocument_LoadFallback(t *testing.T) {
	encrypted, err := NewDocument([]byte("right")).Bytes()
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     []byte
		password []byte
		want     LoadStatus
		wantLen  int
	}{
		{"nil data", nil, nil, LoadStatusEmpty, 0},
		{"empty data with password", []byte{}, []byte("pw"), LoadStatusEmpty, 0},
		{"plain json without password", []byte(`{"a":1}`), nil, LoadStatusPlain, 1},
		{"plain json with password", []byte(`{"a":1}`), []byte("pw"), LoadStatusPlain, 1},
		{"wrong password", encrypted, []byte("wrong"), LoadStatusFallback, 0},
		{"envelope without password", encrypted, nil, LoadStatusFallback, 0},
		{"garbage", []byte("not json"), nil, LoadStatusFallback, 0},
		{"json array", []byte(`[1,2,3]`), nil, LoadStatusFallback, 0},
		{"json null", []byte(`null`), nil, LoadStatusFallback, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := LoadDocument(tt.data, tt.password)
			assert.Equal(t, tt.want, doc.Status())
			assert.Equal(t, tt.wantLen, doc.Len())
		})
	}
}

func TestDocument_FallbackIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	doc, err := LoadDocumentWithConfig([]byte("garbage"), &DocumentConfig{Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, LoadStatusFallback, doc.Status())

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, 7, entry.Data["bytes"])
}

func TestDocument_Reload(t *testing.T) {
	doc := NewDocument([]byte("pw"))
	doc.PutString("v", "one")
	saved, err := doc.Bytes()
	require.NoError(t, err)

	doc.PutString("v", "two")
	doc.Load(saved)
	assert.Equal(t, LoadStatusDecrypted, doc.Status())
	assert.Equal(t, "one", doc.GetStringOr("v", ""))

	doc.Load([]byte("junk"))
	assert.Equal(t, LoadStatusFallback, doc.Status())
	assert.Equal(t, 0, doc.Len())
}

func TestDocument_CustomSpec(t *testing.T) {
	spec := DocumentSpec().WithAlgorithm(Blowfish).WithIterations(3)
	doc, err := LoadDocumentWithConfig(nil, &DocumentConfig{Password: []byte("pw"), Spec: &spec})
	require.NoError(t, err)
	doc.PutBool("ok", true)

	b, err := doc.Bytes()
	require.NoError(t, err)

	loaded, err := LoadDocumentWithConfig(b, &DocumentConfig{Password: []byte("pw"), Spec: &spec})
	require.NoError(t, err)
	assert.Equal(t, LoadStatusDecrypted, loaded.Status())

	// The default document spec cannot read it.
	assert.Equal(t, LoadStatusFallback, LoadDocument(b, []byte("pw")).Status())

	bad := spec.WithSaltLength(0)
	_, err = LoadDocumentWithConfig(nil, &DocumentConfig{Spec: &bad})
	assert.True(t, IsValidationError(err))
}

func TestDocument_PasswordIsCopied(t *testing.T) {
	password := []byte("hunter2")
	doc := NewDocument(password)
	doc.PutString("k", "v")
	copy(password, "xxxxxxx")

	b, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, LoadStatusDecrypted, LoadDocument(b, []byte("hunter2")).Status())
}

func TestLoadStatus_String(t *testing.T) {
	assert.Equal(t, "empty", LoadStatusEmpty.String())
	assert.Equal(t, "plain", LoadStatusPlain.String())
	assert.Equal(t, "decrypted", LoadStatusDecrypted.String())
	assert.Equal(t, "fallback", LoadStatusFallback.String())
	assert.Equal(t, "unknown", LoadStatus(9).String())
}
