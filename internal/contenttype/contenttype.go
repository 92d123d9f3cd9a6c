// Package contenttype maps file names to the Content-Type stored with
// uploaded site objects.
package contenttype

import "path"

// Default is returned for files without a known extension.
const Default = "application/octet-stream"

var byExtension = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".txt":  "text/plain",
}

// Resolve looks at the last extension of name only and matches it case
// sensitively, so "a.tar.gz" and "INDEX.HTML" both resolve to Default.
func Resolve(name string) string {
	ext := path.Ext(path.Base(name))
	if ct, ok := byExtension[ext]; ok {
		return ct
	}
	return Default
}
