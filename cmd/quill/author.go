package main

import (
	"os"

	"github.com/draftline/quill/pkg/repo"
)

// resolveAuthor builds the author identity from flags, falling back to
// QUILL_AUTHOR_* environment variables and finally $USER.
func resolveAuthor(name, email string) repo.Author {
	if name == "" {
		name = os.Getenv("QUILL_AUTHOR_NAME")
	}
	if name == "" {
		name = os.Getenv("USER")
	}
	if name == "" {
		name = "unknown"
	}
	if email == "" {
		email = os.Getenv("QUILL_AUTHOR_EMAIL")
	}

	id := email
	if id == "" {
		id = name
	}
	return repo.Author{ID: id, Name: name, Email: email}
}
