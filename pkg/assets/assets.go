// Package assets embeds the browser viewer and writes it, together with the
// exported graph data, into the built site's static directory.
//
// The output layout under <outDir> mirrors what the viewer pages expect:
//
//	graphson.json        graph interchange document
//	js/nodes.js          var nodes_data = [...]
//	js/links.js          var links_data = [...]
//	js/toctree.js        var toctree_data = {...}
//	html/linkgraph.html  force-directed link graph viewer
//	html/toctree.html    hierarchical toctree viewer
//	js/graph-view.js     viewer code
//	js/tree-view.js
//	css/style.css
//
// The viewer pages live three directories below the site root, which is why
// page paths in the exported data carry a "../../../" prefix.
package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed static
var staticFS embed.FS

// Write copies the embedded viewer files into outDir, creating directories
// as needed. Existing files are overwritten so repeated builds stay current.
func Write(outDir string) error {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	return fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dest := filepath.Join(outDir, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}
		data, err := fs.ReadFile(sub, path)
		if err != nil {
			return err
		}
		return os.WriteFile(dest, data, 0o644)
	})
}

// Files lists the embedded viewer file paths, relative to the output
// directory. Useful for verifying an installation.
func Files() []string {
	var files []string
	sub, _ := fs.Sub(staticFS, "static")
	fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		files = append(files, path)
		return nil
	})
	return files
}
