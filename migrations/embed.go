// Package migrations embeds the SQL schema of the server and of the client's
// local database.
package migrations

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed server/*.sql local/*.sql
var files embed.FS

func Server() fs.FS {
	return sub("server")
}

func Local() fs.FS {
	return sub("local")
}

// Resolve returns dir from disk when set, otherwise fallback.
func Resolve(dir string, fallback fs.FS) fs.FS {
	if dir == "" {
		return fallback
	}
	return os.DirFS(dir)
}

func sub(dir string) fs.FS {
	dirFS, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return dirFS
}
