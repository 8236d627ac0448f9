// Package artifact defines the on-disk form of a compiled expression unit:
// a canonical CBOR body carrying the source, the emitted code and the
// symbols it requires, framed by a small header and content-hashed with
// BLAKE2b-256. Equal units produce byte-identical artifacts, so the hash
// doubles as a build cache key.
package artifact

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	// Magic is the artifact file magic number (4 bytes).
	Magic = "SBLC"

	// Version is the artifact format version (uint16, little-endian).
	Version uint16 = 0x0001
)

// Unit is one compiled expression unit.
type Unit struct {
	// Source is the expression text the unit was compiled from.
	Source string
	// Code is the emitted target code.
	Code string
	// Requires lists the external symbols the emitted code depends on.
	Requires []string
}

// canonicalUnit is the hashing form: requires sorted and deduplicated, plus
// a format version so future layout changes never collide with old hashes.
type canonicalUnit struct {
	Version  uint16
	Source   string
	Code     string
	Requires []string
}

func (u *Unit) canonical() canonicalUnit {
	requires := append([]string(nil), u.Requires...)
	sort.Strings(requires)
	deduped := requires[:0]
	for i, r := range requires {
		if i == 0 || r != requires[i-1] {
			deduped = append(deduped, r)
		}
	}
	return canonicalUnit{
		Version:  Version,
		Source:   u.Source,
		Code:     u.Code,
		Requires: deduped,
	}
}

// MarshalBinary produces the deterministic CBOR encoding of the unit.
// Requires order and duplication in the Unit do not affect the output.
func (u *Unit) MarshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("creating CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(u.canonical())
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// Hash computes the BLAKE2b-256 content hash of the canonical encoding.
func (u *Unit) Hash() ([32]byte, error) {
	data, err := u.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}
	return blake2b.Sum256(data), nil
}

// HashString returns the content hash as lowercase hex.
func (u *Unit) HashString() (string, error) {
	sum, err := u.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum[:]), nil
}

// Write writes the unit to w and returns its content hash.
// Layout: MAGIC(4) | VERSION(2) | BODY_LEN(8) | BODY.
func Write(w io.Writer, u *Unit) ([32]byte, error) {
	body, err := u.MarshalBinary()
	if err != nil {
		return [32]byte{}, err
	}

	var header bytes.Buffer
	header.WriteString(Magic)
	if err := binary.Write(&header, binary.LittleEndian, Version); err != nil {
		return [32]byte{}, err
	}
	if err := binary.Write(&header, binary.LittleEndian, uint64(len(body))); err != nil {
		return [32]byte{}, err
	}

	if _, err := w.Write(header.Bytes()); err != nil {
		return [32]byte{}, fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return [32]byte{}, fmt.Errorf("writing body: %w", err)
	}
	return blake2b.Sum256(body), nil
}

// maxBodyLen bounds the declared body length so a corrupt header cannot
// drive an arbitrary allocation.
const maxBodyLen = 64 << 20

// Read reads a unit written by Write, verifying magic and version.
func Read(r io.Reader) (*Unit, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, fmt.Errorf("bad magic %q, want %q", magic, Magic)
	}

	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("unsupported artifact version 0x%04x, want 0x%04x", version, Version)
	}

	var bodyLen uint64
	if err := binary.Read(r, binary.LittleEndian, &bodyLen); err != nil {
		return nil, fmt.Errorf("reading body length: %w", err)
	}
	if bodyLen > maxBodyLen {
		return nil, fmt.Errorf("artifact body length %d exceeds limit %d", bodyLen, maxBodyLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	var cu canonicalUnit
	if err := cbor.Unmarshal(body, &cu); err != nil {
		return nil, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	return &Unit{Source: cu.Source, Code: cu.Code, Requires: cu.Requires}, nil
}
