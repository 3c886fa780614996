package library

import (
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/tonearm/errutil"
	"github.com/xeptore/tonearm/must"
)

// Snapshot layout: an 8-byte magic, a big-endian uint32 format version,
// then the gob-encoded Library. Anything that does not parse exactly this
// way is rejected with ErrSnapshotRebuildRequired; there is no partial
// load or repair path.
var snapshotMagic = [8]byte{'T', 'O', 'N', 'E', 'A', 'R', 'M', 0x01}

const snapshotVersion uint32 = 1

// ErrSnapshotRebuildRequired means the snapshot is absent, damaged, or was
// written by an incompatible version. The only cure is re-running the scan.
var ErrSnapshotRebuildRequired = errors.New("library snapshot rebuild required")

// WriteSnapshot persists lib to path atomically: it writes a temp file in
// the destination dir, syncs it, and renames it over path.
func WriteSnapshot(path string, lib *Library) (err error) {
	flawP := flaw.P{"path": path}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o0755); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create snapshot dir: %v", err)).Append(flawP)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to create snapshot temp file: %v", err)).Append(flawP)
	}
	tmpPath := tmp.Name()
	defer func() {
		if nil != err {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeSnapshotTo(tmp, lib); nil != err {
		_ = tmp.Close()
		return err
	}

	if err := tmp.Sync(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		_ = tmp.Close()
		return flaw.From(fmt.Errorf("failed to sync snapshot temp file: %v", err)).Append(flawP)
	}

	if err := tmp.Close(); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to close snapshot temp file: %v", err)).Append(flawP)
	}

	if err := os.Rename(tmpPath, path); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to move snapshot into place: %v", err)).Append(flawP)
	}

	return nil
}

func writeSnapshotTo(w io.Writer, lib *Library) error {
	flawP := flaw.P{}

	if _, err := w.Write(snapshotMagic[:]); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write snapshot magic: %v", err)).Append(flawP)
	}

	if err := binary.Write(w, binary.BigEndian, snapshotVersion); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to write snapshot version: %v", err)).Append(flawP)
	}

	if err := gob.NewEncoder(w).Encode(lib); nil != err {
		flawP["err_debug_tree"] = errutil.Tree(err).FlawP()
		return flaw.From(fmt.Errorf("failed to encode library: %v", err)).Append(flawP)
	}

	return nil
}

// ReadSnapshot loads the library persisted at path. It fails closed: a
// missing file, foreign or truncated header, version mismatch, or decode
// failure all surface ErrSnapshotRebuildRequired.
func ReadSnapshot(path string) (lib *Library, err error) {
	f, err := os.Open(path)
	if nil != err {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no snapshot at %q", ErrSnapshotRebuildRequired, path)
		}
		flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to open snapshot: %v", err)).Append(flawP)
	}
	defer func() {
		if closeErr := f.Close(); nil != closeErr {
			if nil != err {
				if errutil.IsFlaw(err) {
					err = must.BeFlaw(err).Join(flaw.From(closeErr))
				}
				return
			}
			flawP := flaw.P{"path": path, "err_debug_tree": errutil.Tree(closeErr).FlawP()}
			err = flaw.From(fmt.Errorf("failed to close snapshot: %v", closeErr)).Append(flawP)
		}
	}()

	var magic [8]byte
	if _, err := io.ReadFull(f, magic[:]); nil != err {
		return nil, fmt.Errorf("%w: snapshot at %q has a truncated header", ErrSnapshotRebuildRequired, path)
	}
	if magic != snapshotMagic {
		return nil, fmt.Errorf("%w: snapshot at %q has a foreign header", ErrSnapshotRebuildRequired, path)
	}

	var version uint32
	if err := binary.Read(f, binary.BigEndian, &version); nil != err {
		return nil, fmt.Errorf("%w: snapshot at %q has a truncated version tag", ErrSnapshotRebuildRequired, path)
	}
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: snapshot at %q has version %d, this build reads version %d", ErrSnapshotRebuildRequired, path, version, snapshotVersion)
	}

	var out Library
	if err := gob.NewDecoder(f).Decode(&out); nil != err {
		return nil, fmt.Errorf("%w: snapshot at %q does not decode: %v", ErrSnapshotRebuildRequired, path, err)
	}

	return &out, nil
}
