package http

import "github.com/indigo-web/utils/uf"

// Escape makes the string safe to be printed into logs or HTML: every byte outside the
// printable ASCII range is replaced with an escape sequence. Strings without such bytes are
// returned as is, without allocating.
func Escape(p string) string {
	var (
		buff   []byte
		offset int
	)

	for i := 0; i < len(p); i++ {
		if isASCIIPrintable(p[i]) {
			continue
		}

		if buff == nil {
			buff = make([]byte, 0, len(p)+len(p)/2)
		}

		buff = append(buff, p[offset:i]...)
		buff = appendEscaped(buff, p[i])
		offset = i + 1
	}

	if buff == nil {
		return p
	}

	return uf.B2S(append(buff, p[offset:]...))
}

func isASCIIPrintable(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}

const hexdigits = "0123456789abcdef"

func appendEscaped(buff []byte, c byte) []byte {
	switch c {
	case '\n':
		return append(buff, '\\', 'n')
	case '\r':
		return append(buff, '\\', 'r')
	case '\t':
		return append(buff, '\\', 't')
	default:
		return append(buff, '\\', 'x', hexdigits[c>>4], hexdigits[c&0xf])
	}
}
