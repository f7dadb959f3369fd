package ir

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotFormatVersion is bumped whenever the encoded shape of the IR
// changes incompatibly. Readers reject snapshots from other versions.
const SnapshotFormatVersion = 1

// SnapshotHeader identifies one persisted IR set. The compatibility
// checker and migration generator load two snapshots (old/new) and
// compare them by type name; the build ID lets tooling tell otherwise
// identical snapshots apart.
type SnapshotHeader struct {
	ID            uuid.UUID `msgpack:"id"`
	CreatedAt     time.Time `msgpack:"created_at"`
	FormatVersion int       `msgpack:"format_version"`
}

// Snapshot is a persisted IR set.
type Snapshot struct {
	Header SnapshotHeader `msgpack:"header"`
	Defs   Set            `msgpack:"defs"`
}

// WriteSnapshot encodes defs to w with a fresh header.
func WriteSnapshot(w io.Writer, defs Set) error {
	snap := &Snapshot{
		Header: SnapshotHeader{
			ID:            uuid.New(),
			CreatedAt:     time.Now().UTC(),
			FormatVersion: SnapshotFormatVersion,
		},
		Defs: defs,
	}
	if err := msgpack.NewEncoder(w).Encode(snap); err != nil {
		return fmt.Errorf("ir: encoding snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a snapshot previously written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := msgpack.NewDecoder(r).Decode(snap); err != nil {
		return nil, fmt.Errorf("ir: decoding snapshot: %w", err)
	}
	if snap.Header.FormatVersion != SnapshotFormatVersion {
		return nil, fmt.Errorf("ir: snapshot format version %d, want %d",
			snap.Header.FormatVersion, SnapshotFormatVersion)
	}
	return snap, nil
}
