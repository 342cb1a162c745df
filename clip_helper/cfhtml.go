package clip_helper

import (
	"fmt"
	"strings"
)

// CF_HTML clipboard format, per the "HTML Clipboard Format" document: an
// ASCII header with byte offsets into the UTF-8 body, then the HTML wrapped
// in fragment markers. Offsets are written as zero-padded 10-digit numbers so
// the header length is independent of the values.
const (
	cfHTMLHeader = "Version:0.9\r\n" +
		"StartHTML:%010d\r\n" +
		"EndHTML:%010d\r\n" +
		"StartFragment:%010d\r\n" +
		"EndFragment:%010d\r\n"
	cfHTMLPre  = "<html>\r\n<body>\r\n<!--StartFragment-->"
	cfHTMLPost = "<!--EndFragment-->\r\n</body>\r\n</html>"
)

// BuildCFHTML renders an HTML fragment into the CF_HTML wire format.
func BuildCFHTML(fragment string) []byte {
	headerLen := len(fmt.Sprintf(cfHTMLHeader, 0, 0, 0, 0))

	startHTML := headerLen
	startFragment := startHTML + len(cfHTMLPre)
	endFragment := startFragment + len(fragment)
	endHTML := endFragment + len(cfHTMLPost)

	var b strings.Builder
	b.Grow(endHTML)
	fmt.Fprintf(&b, cfHTMLHeader, startHTML, endHTML, startFragment, endFragment)
	b.WriteString(cfHTMLPre)
	b.WriteString(fragment)
	b.WriteString(cfHTMLPost)
	return []byte(b.String())
}

// ParseCFHTML extracts the fragment from a CF_HTML payload. Used when the OS
// clipboard carries HTML written by another application.
func ParseCFHTML(data []byte) (string, bool) {
	s := string(data)
	start := strings.Index(s, "<!--StartFragment-->")
	end := strings.Index(s, "<!--EndFragment-->")
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start+len("<!--StartFragment-->") : end], true
}
