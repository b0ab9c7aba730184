// Package securedata protects small application data with a password.
//
// # Overview
//
// The package has two layers. The envelope layer turns bytes into a
// password-protected envelope and back. The document layer keeps a JSON
// object with typed accessors, serializes it through an envelope when it
// has a password, and persists it to a single file on any absfs.FileSystem.
//
// # Envelope Format
//
// An envelope is the concatenation of five regions. There is no header,
// magic or version; every length comes from the Spec both ends share:
//
//	salt || hmacSalt || iv || ciphertext || mac
//
// The cipher key is PBKDF2(password, salt) and the MAC key is
// PBKDF2(password, hmacSalt). The MAC covers the ciphertext only, so a
// changed salt or IV is not caught by the MAC check. Decode rejects an
// envelope of the wrong length before deriving any key, and checks the MAC
// before decrypting. Encode refuses input that would leave the ciphertext
// empty (no input under RC4 or NoPadding).
//
// CAST uses golang.org/x/crypto/cast5, which accepts 16-byte keys only.
// Other CAST implementations allow keys from 5 bytes, so CAST envelopes made
// elsewhere with shorter keys will not decode here, and the reverse.
//
// # Supported Ciphers
//
//   - AES-128, AES-192, AES-256
//   - DES, 3DES
//   - CAST5 (128-bit keys)
//   - RC2, Blowfish
//   - RC4 (stream; mode, padding and iv are ignored)
//
// Block ciphers run in CBC or ECB mode with PKCS#7 or no padding. The
// default, DefaultSpec, is AES-256-CBC with PKCS#7, HMAC-SHA256 and PBKDF2
// with HMAC-SHA1 at 10000 iterations.
//
// # Basic Usage
//
//	envelope, err := securedata.EncryptString("hello", "hunter2")
//	if err != nil {
//		log.Fatal(err)
//	}
//	text, err := securedata.DecryptString(envelope, "hunter2")
//
// # Document Store
//
//	store, err := securedata.OpenStore(&securedata.StoreConfig{
//		FileSystem: securedata.NewOSFileSystem(""),
//		Path:       securedata.DefaultStorePath(appDir),
//		Password:   []byte("hunter2"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	doc := store.Document()
//	doc.PutString("user", "alice")
//	doc.PutInt("age", 42)
//
//	if err := <-store.Save(); err != nil {
//		log.Fatal(err)
//	}
//
// Loading never fails. Bytes that cannot be decrypted or parsed, including
// bytes written under a different password, produce an empty document;
// Document.Status reports which case occurred.
//
// Documents use DocumentSpec, which is DefaultSpec with 128 PBKDF2
// iterations.
//
// # Error Handling
//
// Errors are typed (ValidationError, EncryptionError, CorruptionError,
// AuthenticationError, IOError) and wrap sentinels such as ErrAuthFailed
// and ErrMalformedEnvelope for use with errors.Is:
//
//	if securedata.IsAuthenticationError(err) {
//		// wrong password or tampered data
//	}
//
// # Thread Safety
//
// Codec and Document are safe for concurrent use. Store serializes its
// writes; Save may be called from any goroutine.
package securedata
