// Package source loads schema documents from files, an fs.FS, or HTTP.
package source
