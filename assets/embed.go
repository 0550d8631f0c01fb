package assets

import (
	"embed"
	"io/fs"
)

//go:embed snake.yaml sql/*.sql
var FS embed.FS

// DefaultConfig returns the built-in settings document.
func DefaultConfig() ([]byte, error) {
	return FS.ReadFile("snake.yaml")
}

// Migrations returns the SQL migrations rooted at their directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "sql")
	if err != nil {
		panic(err)
	}
	return sub
}
