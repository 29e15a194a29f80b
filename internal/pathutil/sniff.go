package pathutil

import (
	"os"

	"github.com/h2non/filetype"
)

// sniffLen is enough for filetype's magic-byte matchers without reading a
// meaningful fraction of small files.
const sniffLen = 512

// SniffExtension reads up to sniffLen bytes from path and returns the
// matched type's extension (including the leading dot), or "" if the
// content is unrecognized or the file can't be read. Used only as a
// fallback when the save path has no file extension (SPEC_FULL.md §4.A);
// response headers are not consulted.
func SniffExtension(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return ""
	}
	buf = buf[:n]

	kind, err := filetype.Match(buf)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return "." + kind.Extension
}
