package validation

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/username/budgetfolio/backend/src/logger"
)

// isBinaryContent reports whether a buffer holds something other than
// text. Null bytes or invalid UTF-8 both disqualify it.
func isBinaryContent(buf []byte) bool {
	return bytes.IndexByte(buf, 0) != -1 || !utf8.Valid(buf)
}

// ValidateTextFileContent inspects the leading bytes of an upload to ensure
// it is text and not a binary file with a forged extension. The read
// pointer is reset so the actual parser can read the full file.
func ValidateTextFileContent(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	// Read first 1024 bytes (1KB) for detection
	buffer := make([]byte, 1024)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for content checking: %w", err)
	}

	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	// An empty file is fine here; it simply yields an empty report.
	if n == 0 {
		return nil
	}

	// A multi-byte UTF-8 rune can straddle the 1KB boundary; ignore the
	// truncated tail when validating.
	content := buffer[:n]
	if n == len(buffer) {
		for i := 0; i < utf8.UTFMax && i < len(content); i++ {
			if r, _ := utf8.DecodeLastRune(content); r != utf8.RuneError {
				break
			}
			content = content[:len(content)-1]
		}
	}

	if isBinaryContent(content) {
		logger.L.Warn("File rejected: Binary content detected in text upload")
		return fmt.Errorf("file appears to be binary, not text/CSV")
	}

	return nil
}
