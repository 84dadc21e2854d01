package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are re-sorted by Name so the
// output is deterministic no matter how the tree was assembled. Each
// entry is one line:
//
//	kind contenthash subtreehash size name
//
// where kind is "file" or "dir" and empty hashes are written as "-".
// The name comes last so that names containing spaces round-trip;
// names must not contain newlines (WriteTree enforces this).
func MarshalTree(tr *TreeObj) []byte {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		kind := "file"
		if e.IsDir {
			kind = "dir"
		}
		fmt.Fprintf(&buf, "%s %s %s %d %s\n",
			kind, hashOrDash(e.ContentHash), hashOrDash(e.SubtreeHash), e.Size, e.Name)
	}
	return buf.Bytes()
}

func hashOrDash(h Hash) string {
	if h == "" {
		return "-"
	}
	return string(h)
}

func dashOrHash(s string) Hash {
	if s == "-" {
		return Hash("")
	}
	return Hash(s)
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return tr, nil
	}
	for _, line := range strings.Split(text, "\n") {
		parts := strings.SplitN(line, " ", 5)
		if len(parts) != 5 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		var isDir bool
		switch parts[0] {
		case "dir":
			isDir = true
		case "file":
			isDir = false
		default:
			return nil, fmt.Errorf("unmarshal tree: unknown kind %q", parts[0])
		}
		size, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: bad size %q: %w", parts[3], err)
		}
		if parts[4] == "" {
			return nil, fmt.Errorf("unmarshal tree: empty name in entry %q", line)
		}
		tr.Entries = append(tr.Entries, TreeEntry{
			Name:        parts[4],
			IsDir:       isDir,
			ContentHash: dashOrHash(parts[1]),
			SubtreeHash: dashOrHash(parts[2]),
			Size:        size,
		})
	}
	return tr, nil
}

// validateTreeEntries rejects entry names the line-oriented tree format
// cannot represent. Spaces are fine (the name is the last field); a
// newline would split the entry into two unparseable lines.
func validateTreeEntries(tr *TreeObj) error {
	for _, e := range tr.Entries {
		if e.Name == "" {
			return fmt.Errorf("tree entry with empty name")
		}
		if strings.ContainsAny(e.Name, "\n\r") {
			return fmt.Errorf("tree entry name %q contains a line break", e.Name)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// CommitIdentityPayload builds the canonical bytes a commit's hash is
// computed over:
//
//	tree H
//	parent H     (zero, one, or two)
//	timestamp T
//
//	message
//
// Author metadata, domain, stats, and signature are intentionally
// excluded: identity is (parents, tree, timestamp, message).
func CommitIdentityPayload(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// MarshalCommit serializes the full commit record:
//
//	tree H
//	parent H       (zero or more)
//	author-id A
//	author-name N
//	author-email E
//	domain D       (optional)
//	timestamp T
//	files-changed N
//	additions N
//	deletions N
//	signature S    (optional)
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author-id %s\n", c.AuthorID)
	fmt.Fprintf(&buf, "author-name %s\n", c.AuthorName)
	fmt.Fprintf(&buf, "author-email %s\n", c.AuthorEmail)
	if strings.TrimSpace(c.Domain) != "" {
		fmt.Fprintf(&buf, "domain %s\n", c.Domain)
	}
	fmt.Fprintf(&buf, "timestamp %d\n", c.Timestamp)
	fmt.Fprintf(&buf, "files-changed %d\n", c.FilesChanged)
	fmt.Fprintf(&buf, "additions %d\n", c.Additions)
	fmt.Fprintf(&buf, "deletions %d\n", c.Deletions)
	if strings.TrimSpace(c.Signature) != "" {
		fmt.Fprintf(&buf, "signature %s\n", c.Signature)
	}
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// validateCommitHeader rejects field values that would corrupt the
// newline-delimited header. A name like "Evil\nparent <hash>" would
// otherwise inject a spurious header line and the stored record could
// never be read back.
func validateCommitHeader(c *CommitObj) error {
	fields := []struct{ key, val string }{
		{"author-id", c.AuthorID},
		{"author-name", c.AuthorName},
		{"author-email", c.AuthorEmail},
		{"domain", c.Domain},
		{"signature", c.Signature},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.val, "\n\r") {
			return fmt.Errorf("commit header %s contains a line break", f.key)
		}
	}
	return nil
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			// Allow empty values (e.g. "author-email ").
			key = line
			val = ""
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			c.Parents = append(c.Parents, Hash(val))
		case "author-id":
			c.AuthorID = val
		case "author-name":
			c.AuthorName = val
		case "author-email":
			c.AuthorEmail = val
		case "domain":
			c.Domain = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val, err)
			}
			c.Timestamp = ts
		case "files-changed":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad files-changed %q: %w", val, err)
			}
			c.FilesChanged = n
		case "additions":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad additions %q: %w", val, err)
			}
			c.Additions = n
		case "deletions":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad deletions %q: %w", val, err)
			}
			c.Deletions = n
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// TagObj
// ---------------------------------------------------------------------------

// MarshalTag serializes an annotated tag:
//
//	object H
//	tag NAME
//	tagger T
//	timestamp T
//
//	message
func MarshalTag(t *TagObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "object %s\n", string(t.TargetHash))
	fmt.Fprintf(&buf, "tag %s\n", t.Name)
	fmt.Fprintf(&buf, "tagger %s\n", t.Tagger)
	fmt.Fprintf(&buf, "timestamp %d\n", t.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(t.Message)
	return buf.Bytes()
}

// validateTagHeader mirrors validateCommitHeader for the tag format.
func validateTagHeader(t *TagObj) error {
	fields := []struct{ key, val string }{
		{"tag", t.Name},
		{"tagger", t.Tagger},
	}
	for _, f := range fields {
		if strings.ContainsAny(f.val, "\n\r") {
			return fmt.Errorf("tag header %s contains a line break", f.key)
		}
	}
	return nil
}

// UnmarshalTag parses a TagObj from its serialized form.
func UnmarshalTag(data []byte) (*TagObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal tag: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &TagObj{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			key = line
			val = ""
		}
		switch key {
		case "object":
			t.TargetHash = Hash(val)
		case "tag":
			t.Name = val
		case "tagger":
			t.Tagger = val
		case "timestamp":
			ts, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal tag: bad timestamp %q: %w", val, err)
			}
			t.Timestamp = ts
		default:
			return nil, fmt.Errorf("unmarshal tag: unknown header key %q", key)
		}
	}
	return t, nil
}
