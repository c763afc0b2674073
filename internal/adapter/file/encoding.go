package file

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

// Encodings lists the accepted encoding names.
var Encodings = []string{EncodingUTF8, EncodingWindows1252, EncodingISO88591}

// CanonicalEncoding maps an accepted encoding name or alias to its canonical
// name. Unknown names are returned lowercased and trimmed.
func CanonicalEncoding(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf8":
		return EncodingUTF8
	case "cp1252":
		return EncodingWindows1252
	case "latin1":
		return EncodingISO88591
	}
	return n
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch CanonicalEncoding(name) {
	case EncodingUTF8:
		// Spreadsheet exports frequently prepend a BOM; it must not end up in
		// the first column name.
		return unicode.UTF8BOM, nil
	case EncodingWindows1252:
		return charmap.Windows1252, nil
	case EncodingISO88591:
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// decode wraps r so that it yields UTF-8.
func decode(r io.Reader, name string) (io.Reader, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
