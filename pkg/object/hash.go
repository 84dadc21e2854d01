package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// HashObject computes the SHA-256 of the envelope "type len\0content",
// mirroring Git's object hashing but with SHA-256.
func HashObject(objType ObjectType, data []byte) Hash {
	header := fmt.Sprintf("%s %d\x00", objType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// HashBlob computes the identity hash of raw blob content. Pure: the
// same bytes always produce the same hash, independent of path.
func HashBlob(data []byte) Hash {
	return HashObject(TypeBlob, data)
}

// HashTree computes the identity hash of a tree. MarshalTree re-sorts
// the entries, so caller order never influences the result.
func HashTree(tr *TreeObj) Hash {
	return HashObject(TypeTree, MarshalTree(tr))
}

// HashCommit computes the identity hash of a commit over its canonical
// payload: parents, tree hash, timestamp, and message. Two commits with
// identical values for those four fields share one hash.
func HashCommit(c *CommitObj) Hash {
	return HashObject(TypeCommit, CommitIdentityPayload(c))
}

// HashTag computes the identity hash of an annotated tag object.
func HashTag(t *TagObj) Hash {
	return HashObject(TypeTag, MarshalTag(t))
}
