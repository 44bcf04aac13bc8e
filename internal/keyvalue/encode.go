package keyvalue

import (
	"sort"
	"strings"
)

// Encode writes records in the canonical (unwrapped) shape under root.
// Fields are written in name order; records keep their insertion order.
func Encode(root string, rs *Records) string {
	var b strings.Builder
	writeQuoted(&b, root)
	b.WriteString("\n{\n")
	for _, id := range rs.keys {
		rec := rs.items[id]
		b.WriteString("\t")
		writeQuoted(&b, id)
		b.WriteString("\n\t{\n")

		names := make([]string, 0, len(rec))
		for name := range rec {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString("\t\t")
			writeQuoted(&b, name)
			b.WriteString("\t\t")
			writeQuoted(&b, rec[name])
			b.WriteString("\n")
		}
		b.WriteString("\t}\n")
	}
	b.WriteString("}\n")
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(escaper.Replace(s))
	b.WriteByte('"')
}
