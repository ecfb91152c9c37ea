package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

// snapshotFormatVersion identifies the layout written by Export.
const snapshotFormatVersion = 1

var (
	// ErrCorruptSnapshot reports a snapshot whose digest does not match its entries.
	ErrCorruptSnapshot = errors.New("settings snapshot digest mismatch")
	// ErrSnapshotVersion reports a snapshot written in an unknown layout.
	ErrSnapshotVersion = errors.New("unsupported settings snapshot version")
)

type snapshot struct {
	Version int               `cbor:"1,keyasint"`
	Entries map[string]string `cbor:"2,keyasint"`
	Digest  []byte            `cbor:"3,keyasint"`
}

// Export writes the store as a canonical CBOR snapshot carrying a BLAKE2b-256 digest of
// its entries. Equal stores always produce identical bytes.
func (store *Store) Export(writer io.Writer) error {
	entries := store.Entries()
	encoder, modeError := cbor.CanonicalEncOptions().EncMode()
	if modeError != nil {
		return fmt.Errorf("create CBOR encoder: %w", modeError)
	}
	digest, digestError := entriesDigest(encoder, entries)
	if digestError != nil {
		return digestError
	}
	encoded, encodeError := encoder.Marshal(snapshot{Version: snapshotFormatVersion, Entries: entries, Digest: digest})
	if encodeError != nil {
		return fmt.Errorf("encode settings snapshot: %w", encodeError)
	}
	if _, writeError := writer.Write(encoded); writeError != nil {
		return fmt.Errorf("write settings snapshot: %w", writeError)
	}
	return nil
}

// Import replaces the store contents with a snapshot written by Export. The store is left
// unchanged when the snapshot is malformed or its digest does not verify.
func (store *Store) Import(reader io.Reader) error {
	content, readError := io.ReadAll(reader)
	if readError != nil {
		return fmt.Errorf("read settings snapshot: %w", readError)
	}
	var decoded snapshot
	if decodeError := cbor.Unmarshal(content, &decoded); decodeError != nil {
		return fmt.Errorf("decode settings snapshot: %w", decodeError)
	}
	if decoded.Version != snapshotFormatVersion {
		return fmt.Errorf("%w: %d", ErrSnapshotVersion, decoded.Version)
	}
	encoder, modeError := cbor.CanonicalEncOptions().EncMode()
	if modeError != nil {
		return fmt.Errorf("create CBOR encoder: %w", modeError)
	}
	expected, digestError := entriesDigest(encoder, decoded.Entries)
	if digestError != nil {
		return digestError
	}
	if !bytes.Equal(expected, decoded.Digest) {
		return ErrCorruptSnapshot
	}
	store.Replace(decoded.Entries)
	return nil
}

func entriesDigest(encoder cbor.EncMode, entries map[string]string) ([]byte, error) {
	encoded, encodeError := encoder.Marshal(entries)
	if encodeError != nil {
		return nil, fmt.Errorf("encode settings entries: %w", encodeError)
	}
	digest := blake2b.Sum256(encoded)
	return digest[:], nil
}
