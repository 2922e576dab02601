package protocol

import (
	"strings"
)

// Quoted returns the substring between the first double quote of line and
// its final character. It assumes the line ends right after the closing
// quote and does not handle escapes.
//
// A line with no quote yields everything but its last character, which is
// what the arithmetic gives. Callers must tolerate garbage on malformed lines.
func Quoted(line string) string {
	start := strings.IndexByte(line, '"') + 1
	end := len(line) - 1

	if end < start {
		return ""
	}

	return line[start:end]
}

// Column returns everything from the column'th space separated token of line
// onwards. The offset is computed from the lengths of the preceding tokens so
// runs of spaces inside the payload survive.
func Column(line string, column int) string {
	if column < 1 {
		column = 1
	}

	offset := 0
	tokens := strings.Split(line, " ")

	for i := 0; i < column-1 && i < len(tokens); i++ {
		offset += len(tokens[i]) + 1
	}

	if offset > len(line) {
		return ""
	}

	return line[offset:]
}

// ReverseClient turns the byte-reversed init6 client token into a bracketed
// tag, e.g. "tahc" becomes "[CHAT]".
func ReverseClient(token string) string {
	b := []byte(token)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	return "[" + strings.ToUpper(string(b)) + "]"
}

// IsListingHeader reports whether an info payload opens a channel listing.
func IsListingHeader(message string) bool {
	return strings.HasPrefix(message, "Listing ")
}

// IsListingEntry reports whether an info payload is one row of a channel
// listing, i.e. `name | users | x | topic`.
func IsListingEntry(message string) bool {
	return strings.Count(message, "| ") == 3
}

// IsListing is IsListingHeader or IsListingEntry.
func IsListing(message string) bool {
	return IsListingHeader(message) || IsListingEntry(message)
}
