package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/answerdesk/core"
)

// Key prefixes for different data types
const (
	templatePrefix         = "tplrec"
	templateTitlePrefix    = "tpltitle"
	templateModifiedPrefix = "tplmod"
	templateIDSeq          = "tplrecseq"
	memoPrefix             = "memrec"
)

// makeTemplateKey generates a key for a template by ID.
func makeTemplateKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", templatePrefix, id))
}

// makeTemplateTitleKey generates the unique title index key.
// Format: prefix:title
func makeTemplateTitleKey(title string) []byte {
	return []byte(templateTitlePrefix + ":" + title)
}

// makeTemplateModifiedKey generates a composite key for the modification
// time index.
// Format: prefix:timestamp:id
func makeTemplateModifiedKey(modified time.Time, id core.ID) []byte {
	prefix := templateModifiedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(modified.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeMemoKey generates a key for the memo of an answer record.
// Format: prefix:answerID, with the ID in BigEndian so keys sort by ID.
func makeMemoKey(answerID int64) []byte {
	prefix := []byte(memoPrefix + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	// Flip the sign bit so negative IDs sort before positive ones
	binary.BigEndian.PutUint64(buf[offset:], uint64(answerID)^(1<<63))
	return buf
}
