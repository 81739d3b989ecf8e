package badger

import (
	"encoding/binary"

	"github.com/poiesic/askbase/core"
)

// Key prefixes for the different record families. Every section, chunk
// and tenant-scoped key embeds the owning tenant's ID, so no scan or
// lookup can cross a tenant boundary.
const (
	tenantRecordPrefix  = "tenrec"
	tenantKeyHashPrefix = "tenkey"
	tenantIDSeq         = "tenrecseq"
	sectionRecordPrefix = "secrec"
	sectionIDSeq        = "secrecseq"
	chunkRecordPrefix   = "chkrec"
	counterPrefix       = "quotactr"
	sessionPrefix       = "sesrec"
)

// makeTenantKey generates a key for a tenant record by ID.
func makeTenantKey(id core.ID) []byte {
	return appendUint64([]byte(tenantRecordPrefix+":"), uint64(id))
}

// makeTenantKeyHashKey generates a key for the API key hash index.
func makeTenantKeyHashKey(keyHash string) []byte {
	return []byte(tenantKeyHashPrefix + ":" + keyHash)
}

// makeSectionKey generates a composite key for a section record.
// Format: prefix:tenantID:sectionID, fixed-width BigEndian so
// lexicographic iteration follows insertion order.
func makeSectionKey(tenantID, sectionID core.ID) []byte {
	buf := appendUint64([]byte(sectionRecordPrefix+":"), uint64(tenantID))
	return appendUint64(buf, uint64(sectionID))
}

// makeSectionScanPrefix generates the scan prefix for a tenant's sections.
func makeSectionScanPrefix(tenantID core.ID) []byte {
	return appendUint64([]byte(sectionRecordPrefix+":"), uint64(tenantID))
}

// makeChunkKey generates a composite key for a chunk record.
// Format: prefix:tenantID:sectionID:ordinal. Section IDs come from a
// monotonic sequence, so iteration order equals insertion order.
func makeChunkKey(tenantID, sectionID core.ID, ordinal int) []byte {
	buf := appendUint64([]byte(chunkRecordPrefix+":"), uint64(tenantID))
	buf = appendUint64(buf, uint64(sectionID))
	return appendUint64(buf, uint64(ordinal))
}

// makeChunkScanPrefix generates the scan prefix for a tenant's chunks.
func makeChunkScanPrefix(tenantID core.ID) []byte {
	return appendUint64([]byte(chunkRecordPrefix+":"), uint64(tenantID))
}

// makeChunkSectionPrefix generates the scan prefix for one section's chunks.
func makeChunkSectionPrefix(tenantID, sectionID core.ID) []byte {
	buf := appendUint64([]byte(chunkRecordPrefix+":"), uint64(tenantID))
	return appendUint64(buf, uint64(sectionID))
}

// makeCounterKey generates a key for a quota counter.
func makeCounterKey(name string) []byte {
	return []byte(counterPrefix + ":" + name)
}

// makeSessionKey generates a key for a session history record.
func makeSessionKey(sessionID string) []byte {
	return []byte(sessionPrefix + ":" + sessionID)
}

// appendUint64 appends a BigEndian uint64 so lexicographic sort works.
func appendUint64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}
