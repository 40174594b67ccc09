package util

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// HashRecords fingerprints an ordered sequence of field maps. Two dataset
// snapshots share a fingerprint only if they hold the same rows in the same
// order with the same field values.
func HashRecords(rows []map[string]string) string {
	h := sha256.New()
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buffer.Reset()
		for _, k := range keys {
			buffer.WriteString(k)
			buffer.WriteByte(0x1f)
			buffer.WriteString(row[k])
			buffer.WriteByte(0x1e)
		}
		h.Write(buffer.Bytes())
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
