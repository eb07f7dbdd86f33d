package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key names the artifact of kind produced from inputs, for example
// Key("svg", dot). Inputs are hashed through their JSON encoding, so equal
// inputs always map to the same key and a changed scene maps to a new one.
func Key(kind string, inputs ...any) string {
	raw, _ := json.Marshal(inputs)
	return kind + ":" + Hash(raw)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
