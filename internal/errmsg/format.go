// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalog operations
	OpCatalogLoad  Op = "load catalog"
	OpSongLookup   Op = "find song"
	OpNowPlaying   Op = "save now playing list"
	OpImport       Op = "import music"
	OpRescan       Op = "rescan music directory"
	OpReadTags     Op = "read file tags"
	OpLibraryIndex Op = "build library index"

	// Playlist operations
	OpPlaylistCreate     Op = "create playlist"
	OpPlaylistDelete     Op = "delete playlist"
	OpPlaylistLookup     Op = "find playlist"
	OpPlaylistAddSong    Op = "add song to playlist"
	OpPlaylistRemoveSong Op = "remove song from playlist"

	// Search
	OpSearch Op = "search"

	// History journal
	OpHistoryOpen Op = "open play history"
	OpHistoryLoad Op = "load play history"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
