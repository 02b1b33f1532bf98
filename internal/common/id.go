package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
// Format: doc_<uuid>
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// ContentHash returns the deterministic hex hash of chunk text, used for
// deduplication and stable chunk ID construction.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ChunkID builds the deterministic chunk ID for a chunk within a tenant.
// Format: <documentID>_chunk_<index>_<hash8>. The hash suffix tolerates
// duplicate text across documents while keeping IDs stable on reprocess.
func ChunkID(documentID string, index int, contentHash string) string {
	hash8 := contentHash
	if len(hash8) > 8 {
		hash8 = hash8[:8]
	}
	return fmt.Sprintf("%s_chunk_%d_%s", documentID, index, hash8)
}
