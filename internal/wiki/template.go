package wiki

import (
	"fmt"
	"strings"

	"github.com/gausby/mg-org-wiki/internal/parser"
	"github.com/gausby/mg-org-wiki/internal/storage"
)

// Filename maps a topic to its entry file name, appending the fixed
// extension unless the topic already carries it.
func Filename(topic string) string {
	if strings.HasSuffix(topic, storage.Extension) {
		return topic
	}
	return topic + storage.Extension
}

// Render produces the skeleton inserted into a freshly created entry:
// title line, keyword line, blank separator, and a bare heading ready for
// body text.
func Render(title, keywords string) string {
	return RenderWithBody(title, keywords, "")
}

// RenderWithBody builds a full entry: the standard header followed by body,
// or the bare skeleton heading when body is empty.
func RenderWithBody(title, keywords, body string) string {
	header := fmt.Sprintf("%s %s\n%s %s\n\n", parser.TitleMarker, title, parser.KeywordsMarker, keywords)
	if body == "" {
		return header + "* "
	}
	return header + body
}
