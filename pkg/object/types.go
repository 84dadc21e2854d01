package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// Blob holds raw content bytes supplied by the caller.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Exactly one of ContentHash
// (files) or SubtreeHash (directories) is set.
type TreeEntry struct {
	Name        string
	IsDir       bool
	ContentHash Hash
	SubtreeHash Hash
	Size        int64
}

// TreeObj holds a list of tree entries. Serialization sorts entries by
// Name, so two trees describing the same name→hash mapping always hash
// identically regardless of construction order.
type TreeObj struct {
	Entries []TreeEntry
}

// CommitObj is an immutable node in the history graph.
//
// Identity is the hash of the canonical payload built from TreeHash,
// Parents, Timestamp, and Message (see HashCommit). Author metadata,
// the domain label, and the per-commit stats ride in the stored record
// but do not participate in identity.
type CommitObj struct {
	TreeHash     Hash
	Parents      []Hash
	AuthorID     string
	AuthorName   string
	AuthorEmail  string
	Message      string
	Timestamp    int64
	Domain       string
	FilesChanged int
	Additions    int
	Deletions    int
	Signature    string
}

// IsRoot reports whether the commit has no parents.
func (c *CommitObj) IsRoot() bool { return len(c.Parents) == 0 }

// IsMerge reports whether the commit has two parents.
func (c *CommitObj) IsMerge() bool { return len(c.Parents) == 2 }

// TagObj is an annotated tag: an immutable, stored object pointing at a
// commit. Lightweight tags are plain refs and never produce a TagObj.
type TagObj struct {
	TargetHash Hash
	Name       string
	Tagger     string
	Timestamp  int64
	Message    string
}
