// Package connectors provides the document sources deskref reads from.
// Each connector implements driven.DocumentSource and, where the source can
// report changes, driven.Watcher.
//
//   - filesystem: a documents directory (or a single file), watched with fsnotify
//   - reference: an in-memory structured reference payload
package connectors
