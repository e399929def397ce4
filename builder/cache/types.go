package cache

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// RunStatus is the lifecycle state of a journaled run
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusCommitted RunStatus = "committed"
	StatusAborted   RunStatus = "aborted"
)

// RunRecord describes one generation run.
// A run is pending between the post write and the catalog save.
type RunRecord struct {
	ID         uint64    `msgpack:"id"`
	Title      string    `msgpack:"title"`
	Date       string    `msgpack:"date"`
	File       string    `msgpack:"file"`        // post filename inside OutputDir
	OutputDir  string    `msgpack:"output_dir"`  // directory holding the post and catalog
	Catalog    string    `msgpack:"catalog"`     // catalog filename inside OutputDir
	Source     string    `msgpack:"source"`      // feed that supplied the topic, empty on fallback
	HTMLHash   string    `msgpack:"html_hash"`   // snapshot key in the content store
	Status     RunStatus `msgpack:"status"`
	StartedAt  int64     `msgpack:"started_at"`
	FinishedAt int64     `msgpack:"finished_at,omitempty"`
}

// Constants for compression thresholds
const (
	RawThreshold  = 8 * 1024 // < 8KB stored raw
	SchemaVersion = 1
)

// HashContent computes BLAKE3 hash of content and returns hex string
func HashContent(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Encode serializes a value to msgpack bytes
func Encode(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Decode deserializes msgpack bytes to a value
func Decode(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}

// runKey orders run records by id under bolt's byte-wise key sort
func runKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}
