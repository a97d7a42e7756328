// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import "strings"

// unsafeFilename characters are replaced one-for-one, so sanitizing never
// changes the rune count and is idempotent.
var unsafeFilename = strings.NewReplacer(
	"<", "_", ">", "_", ":", "_", `"`, "_",
	"/", "_", `\`, "_", "|", "_", "?", "_", "*", "_",
)

// SanitizeFilename maps a paper title to a filesystem-safe file stem.
// Distinct titles can sanitize to the same name; the later download wins.
func SanitizeFilename(title string) string {
	return unsafeFilename.Replace(title)
}
