package render

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
)

// xmlRenderer emits a generic XML rendering of any result value. The
// value is flattened through its JSON form so the element names match
// the field names the JSON renderer shows, label maps included.
type xmlRenderer struct {
	w io.Writer
}

func (r *xmlRenderer) Render(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return err
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	writeElement(&b, "result", tree, 0)
	_, err = io.WriteString(r.w, b.String())
	return err
}

var elementNameRE = regexp.MustCompile(`[^a-zA-Z0-9_.\-]`)

// elementName turns an arbitrary map key into a legal XML name.
func elementName(key string) string {
	name := elementNameRE.ReplaceAllString(key, "_")
	if name == "" || !isNameStart(name[0]) {
		name = "_" + name
	}
	return name
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func writeElement(b *strings.Builder, name string, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			fmt.Fprintf(b, "%s<%s/>\n", indent, name)
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprintf(b, "%s<%s>\n", indent, name)
		for _, k := range keys {
			writeElement(b, elementName(k), val[k], depth+1)
		}
		fmt.Fprintf(b, "%s</%s>\n", indent, name)
	case []any:
		if len(val) == 0 {
			fmt.Fprintf(b, "%s<%s/>\n", indent, name)
			return
		}
		fmt.Fprintf(b, "%s<%s>\n", indent, name)
		for _, item := range val {
			writeElement(b, "item", item, depth+1)
		}
		fmt.Fprintf(b, "%s</%s>\n", indent, name)
	case nil:
		fmt.Fprintf(b, "%s<%s/>\n", indent, name)
	default:
		var esc strings.Builder
		xml.EscapeText(&esc, []byte(fmt.Sprint(val)))
		fmt.Fprintf(b, "%s<%s>%s</%s>\n", indent, name, esc.String(), name)
	}
}
