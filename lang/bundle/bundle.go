// Package bundle implements the §6.3 persistence format: a TAR-like
// container holding one entry per target architecture object blob, one
// "bitcode" entry (the serialised LLIR module), and one "metadata" entry
// describing every symbol in the session's table.
//
// Grounded on original_source/toolchain/compiler/src/codegen/metadata.cpp
// for the exact CATA_META/CATA_END textual framing and
// object_type.{hpp,cpp} for the per-variant type serialisation order; the
// container itself uses the standard library's archive/tar, the
// idiomatic Go choice for "one entry per architecture plus a bitcode
// entry plus a metadata entry" that the original's bespoke byte-stream
// format doesn't need reinventing for.
package bundle

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/emberlang/ember/lang/session"
)

// EntryBitcode and EntryMetadata are the fixed, non-architecture entry
// names every bundle carries; an architecture's object blob is stored
// under "obj/<triple>".
const (
	EntryBitcode = "bitcode"
	EntryMetadata = "metadata"
)

// Write assembles a bundle for sess at path: one "obj/<triple>" entry per
// (triple, blob) pair in objects, a "bitcode" entry holding the LLIR
// module's textual form, and a "metadata" entry built from sess.Table.
// The bundle is first assembled in a staging file named after sess.ID
// alongside path, then renamed atomically into place, so a reader never
// observes a partially-written bundle.
func Write(path string, sess *session.Session, objects map[string][]byte) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for triple, blob := range objects {
		if err := writeEntry(tw, "obj/"+triple, blob); err != nil {
			return fmt.Errorf("bundle: writing arch entry %q: %w", triple, err)
		}
	}

	bitcode := []byte(sess.Builder.Module().String())
	if err := writeEntry(tw, EntryBitcode, bitcode); err != nil {
		return fmt.Errorf("bundle: writing bitcode entry: %w", err)
	}

	meta, err := buildMetadata(sess)
	if err != nil {
		return fmt.Errorf("bundle: building metadata: %w", err)
	}
	if err := writeEntry(tw, EntryMetadata, meta); err != nil {
		return fmt.Errorf("bundle: writing metadata entry: %w", err)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("bundle: closing tar writer: %w", err)
	}

	dir := filepath.Dir(path)
	staging := filepath.Join(dir, ".bundle-"+sess.ID.String())
	if err := os.WriteFile(staging, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("bundle: writing staging file: %w", err)
	}
	if err := os.Rename(staging, path); err != nil {
		os.Remove(staging)
		return fmt.Errorf("bundle: renaming staging file into place: %w", err)
	}
	return nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{Name: name, Size: int64(len(data)), Mode: 0o644}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

// Read opens the bundle at path, returning the raw bytes of every entry
// keyed by its tar entry name ("bitcode", "metadata", "obj/<triple>").
func Read(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string][]byte{}
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("bundle: reading tar entry: %w", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("bundle: reading entry %q: %w", hdr.Name, err)
		}
		out[hdr.Name] = data
	}
	return out, nil
}

// StagingName returns the staging file name Write would use for id,
// exported for tests that want to assert no stale staging file is left
// behind after a successful Write.
func StagingName(dir string, id uuid.UUID) string {
	return filepath.Join(dir, ".bundle-"+id.String())
}
