package writers

import (
	"sort"
	"strings"
)

type ConsoleWriter struct {
}

// Write concatenates the rendered files in file name order so console output
// is stable from run to run.
func (c ConsoleWriter) Write(files map[string]string) (string, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	builder := strings.Builder{}
	for _, name := range names {
		builder.WriteString(name)
		builder.WriteString("\n")
		builder.WriteString(files[name])
		builder.WriteString("\n")
	}

	return builder.String(), nil
}
