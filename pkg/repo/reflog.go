package repo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/draftline/quill/pkg/object"
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// ReflogEntry records one historical move of a reference. OldHash is
// zeroHash for the entry that created the ref.
type ReflogEntry struct {
	Ref       string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

// appendReflog logs a ref move under .quill/logs/<ref>. Log lines are
// "old new timestamp reason"; the reason runs to end of line and may
// contain spaces.
func (r *Repository) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}

	logPath := filepath.Join(r.QuillDir, "logs", filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}

	line := fmt.Sprintf("%s %s %d %s\n",
		hashOrZero(oldHash), hashOrZero(newHash), time.Now().Unix(), reason)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

func hashOrZero(h object.Hash) string {
	if strings.TrimSpace(string(h)) == "" {
		return zeroHash
	}
	return string(h)
}

// ReadReflog returns reflog entries for a ref, newest first. An empty
// ref or "HEAD" resolves to the checked-out branch's log. A ref with no
// log yields an empty result, not an error. Unparseable lines are
// skipped.
func (r *Repository) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	refName := r.reflogRefName(ref)

	logPath := filepath.Join(r.QuillDir, "logs", filepath.FromSlash(refName))
	f, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if e, ok := parseReflogLine(scanner.Text()); ok {
			e.Ref = refName
			entries = append(entries, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseReflogLine(line string) (ReflogEntry, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ReflogEntry{}, false
	}
	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 4 {
		return ReflogEntry{}, false
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ReflogEntry{}, false
	}
	return ReflogEntry{
		OldHash:   object.Hash(parts[0]),
		NewHash:   object.Hash(parts[1]),
		Timestamp: ts,
		Reason:    parts[3],
	}, true
}

// reflogRefName maps the user-facing ref argument to a log path. Short
// branch names expand under refs/heads/; an empty argument or "HEAD"
// follows the symbolic HEAD when it points at a branch.
func (r *Repository) reflogRefName(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "HEAD" {
		head, err := r.Head()
		if err == nil && strings.HasPrefix(head, "refs/") {
			return head
		}
		return "HEAD"
	}
	if strings.HasPrefix(ref, "refs/") {
		return ref
	}
	return "refs/heads/" + ref
}
