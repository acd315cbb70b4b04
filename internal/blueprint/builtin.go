package blueprint

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed builtin
var builtinFS embed.FS

func builtin(name string) string {
	data, err := fs.ReadFile(builtinFS, path.Join("builtin", name))
	if err != nil {
		panic("blueprint: missing built-in template " + name)
	}
	return string(data)
}

// BuiltinLicenses returns the license identifiers with built-in texts.
func BuiltinLicenses() []string {
	entries, _ := fs.ReadDir(builtinFS, "builtin/licenses")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".tmpl"))
	}
	slices.Sort(out)
	return out
}

func builtinLicense(id string) (string, bool) {
	data, err := fs.ReadFile(builtinFS, "builtin/licenses/"+id+".tmpl")
	if err != nil {
		return "", false
	}
	return string(data), true
}
