package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// Kind separates the entry types of one server.
type Kind string

const (
	KindSongs  Kind = "songs"
	KindThumbs Kind = "thumbs"
)

// tmpSuffix marks an entry that is still being written.
const tmpSuffix = ".tmp"

// safeName keeps ids from escaping their shard directory.
var safeName = strings.NewReplacer("/", "_", "\\", "_", "..", "__")

// Shard returns the three directory levels for id: the first six hex digits of its SHA-256, in pairs.
func Shard(id string) (string, string, string) {
	hash := sha256.Sum256([]byte(id))
	digest := hex.EncodeToString(hash[:3])
	return digest[0:2], digest[2:4], digest[4:6]
}

// Path returns root/serverID/kind/h0h1/h2h3/h4h5/id.ext.
func Path(root, serverID string, kind Kind, id, ext string) string {
	a, b, c := Shard(id)
	name := safeName.Replace(id)
	if ext = strings.TrimPrefix(ext, "."); ext != "" {
		name += "." + ext
	}
	return filepath.Join(root, safeName.Replace(serverID), string(kind), a, b, c, name)
}
