package extractors

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// textDecoder turns raw PDF string bytes into UTF-8. ok is false when the
// bytes are not valid for that encoding.
type textDecoder struct {
	name   string
	decode func(string) (string, bool)
}

// pdfTextDecoders are tried in order until one succeeds. Latin-1 maps every
// byte, so the chain always produces text.
var pdfTextDecoders = []textDecoder{
	{name: "utf-8", decode: func(s string) (string, bool) {
		return s, utf8.ValidString(s)
	}},
	{name: "cp1252", decode: func(s string) (string, bool) {
		out, err := charmap.Windows1252.NewDecoder().String(s)
		if err != nil || strings.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return out, true
	}},
	{name: "latin-1", decode: func(s string) (string, bool) {
		out, err := charmap.ISO8859_1.NewDecoder().String(s)
		return out, err == nil
	}},
}

func decodePDFText(s string) (string, string) {
	for _, d := range pdfTextDecoders {
		if out, ok := d.decode(s); ok {
			return out, d.name
		}
	}
	return strings.ToValidUTF8(s, ""), "lossy"
}
