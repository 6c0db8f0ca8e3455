// archive.go - qop-style trailer-first asset package reader (A4).
//
// Grounded on original_source/libs/qop.h: concatenated path+data blobs,
// followed by a flat per-file index, followed by a 12-byte footer
// {index_len, archive_size, magic}. Opening computes a power-of-two,
// open-addressing hashmap sized >= 1.5x the file count and linearly probes
// on collision, exactly as qop_read_index does.

package pixelcore

import (
	"encoding/binary"
	"fmt"
)

const (
	archiveMagic     = 0x66706f71 // "qopf" little-endian
	archiveHeaderLen = 12
	archiveIndexLen  = 20
)

// ArchiveFlag mirrors qop's per-file flag bits. Only None is meaningful
// here; compression/encryption are asset-pipeline concerns out of scope
// for this reader.
type ArchiveFlag uint16

const ArchiveFlagNone ArchiveFlag = 0

type archiveEntry struct {
	hash    uint64
	offset  uint32
	size    uint32
	pathLen uint16
	flags   ArchiveFlag
}

// Archive is an opened, trailer-parsed package file held fully in memory.
// Its hashmap mirrors qop_desc's open-addressed qop_file table.
type Archive struct {
	data []byte

	filesOffset uint32
	indexOffset uint32
	indexLen    uint32

	hashmapMask uint32
	hashmap     []archiveEntry
}

// FileCount returns the number of files indexed by the archive (qop_open's
// return of index_len after qop_read_index).
func (a *Archive) FileCount() int { return int(a.indexLen) }

// HashmapSize returns the number of slots in the open-addressing table —
// always a power of two, at least 1.5x FileCount().
func (a *Archive) HashmapSize() int { return len(a.hashmap) }

// OpenArchive parses a complete archive image already read into memory.
// Fatal-class malformations (bad magic, an index_len that can't fit in the
// file) are reported as errors rather than a crash, since asset loading
// happens at runtime from untrusted paths on disk, not at program
// initialization like the hunk's own fatal-on-exhaustion errors.
func OpenArchive(data []byte) (*Archive, error) {
	if len(data) <= archiveHeaderLen {
		return nil, fmt.Errorf("pixelcore: archive too short (%d bytes)", len(data))
	}

	trailer := data[len(data)-archiveHeaderLen:]
	indexLen := binary.LittleEndian.Uint32(trailer[0:4])
	archiveSize := binary.LittleEndian.Uint32(trailer[4:8])
	magic := binary.LittleEndian.Uint32(trailer[8:12])

	if magic != archiveMagic {
		return nil, fmt.Errorf("pixelcore: bad archive magic %#x", magic)
	}
	if uint64(indexLen)*archiveIndexLen > uint64(len(data)-archiveHeaderLen) {
		return nil, fmt.Errorf("pixelcore: archive index_len %d overruns file", indexLen)
	}

	a := &Archive{
		data:        data,
		indexLen:    indexLen,
		filesOffset: uint32(len(data)) - archiveSize,
		indexOffset: uint32(len(data)) - indexLen*archiveIndexLen - archiveHeaderLen,
	}

	hashmapLen := uint32(1)
	minLen := (indexLen*3 + 1) / 2
	for hashmapLen < minLen {
		hashmapLen <<= 1
	}
	a.hashmapMask = hashmapLen - 1
	a.hashmap = make([]archiveEntry, hashmapLen)

	cursor := a.indexOffset
	for i := uint32(0); i < indexLen; i++ {
		row := data[cursor : cursor+archiveIndexLen]
		cursor += archiveIndexLen

		hash := binary.LittleEndian.Uint64(row[0:8])
		idx := uint32(hash) & a.hashmapMask
		for a.hashmap[idx].size > 0 {
			idx = (idx + 1) & a.hashmapMask
		}
		a.hashmap[idx] = archiveEntry{
			hash:    hash,
			offset:  binary.LittleEndian.Uint32(row[8:12]),
			size:    binary.LittleEndian.Uint32(row[12:16]),
			pathLen: binary.LittleEndian.Uint16(row[16:18]),
			flags:   ArchiveFlag(binary.LittleEndian.Uint16(row[18:20])),
		}
	}

	return a, nil
}

// archiveHash is qop_hash: 64-bit MurmurOAAT over the path bytes,
// NUL-exclusive (callers never pass the terminator byte).
func archiveHash(path string) uint64 {
	h := uint64(0x0747f2e5c8ea3f57)
	for i := 0; i < len(path); i++ {
		h ^= uint64(path[i])
		h *= 0x5bd1e9955bd1e995
		h ^= h >> 47
	}
	return h
}

// find locates a file by path, or reports ok == false. Soft failure per
// spec.md §7 (unknown path is a normal runtime condition, not a
// programming error).
func (a *Archive) find(path string) (archiveEntry, bool) {
	hash := archiveHash(path)
	idx := uint32(hash) & a.hashmapMask
	for a.hashmap[idx].size > 0 {
		if a.hashmap[idx].hash == hash {
			return a.hashmap[idx], true
		}
		idx = (idx + 1) & a.hashmapMask
	}
	return archiveEntry{}, false
}

// Stat reports a file's size without reading its bytes, or ok == false if
// path isn't in the archive.
func (a *Archive) Stat(path string) (size int, ok bool) {
	e, ok := a.find(path)
	if !ok {
		return 0, false
	}
	return int(e.size), true
}

// Read returns a file's full contents as a slice sharing the archive's
// backing array (callers must not mutate it), or ok == false if path isn't
// present.
func (a *Archive) Read(path string) (contents []byte, ok bool) {
	e, found := a.find(path)
	if !found {
		return nil, false
	}
	start := a.filesOffset + e.offset + uint32(e.pathLen)
	return a.data[start : start+e.size], true
}
