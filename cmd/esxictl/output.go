package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// render writes v to w in the requested format (yaml, json or table).
func render(w io.Writer, format string, v any) error {
	switch format {
	case "", "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table":
		return renderTable(w, v)
	}
	return &userError{
		msg:  fmt.Sprintf("unknown output format %q", format),
		hint: "use --output yaml, json or table",
	}
}

// renderTable prints one row per leaf value. Top-level keys (host names) get their own
// column; nested keys are joined with ":" the same way Get keys are.
func renderTable(w io.Writer, v any) error {
	plain, err := toPlain(v)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("HOST"),
		text.FgHiCyan.Sprint("KEY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	top, ok := plain.(map[string]any)
	if !ok {
		flatten("", plain, func(key string, value any) {
			t.AppendRow(table.Row{"", key, formatCell(value)})
		})
		t.Render()
		return nil
	}

	hosts := make([]string, 0, len(top))
	for h := range top {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	for _, h := range hosts {
		flatten("", top[h], func(key string, value any) {
			t.AppendRow(table.Row{h, key, formatCell(value)})
		})
	}
	t.Render()
	return nil
}

// toPlain converts v into maps, slices and scalars through its YAML form.
func toPlain(v any) (any, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, v any, emit func(key string, value any)) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + ":" + k
	}

	switch n := v.(type) {
	case map[string]any:
		if len(n) == 0 {
			emit(prefix, "")
			return
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(join(k), n[k], emit)
		}
	case []any:
		if len(n) == 0 {
			emit(prefix, "")
			return
		}
		for i, item := range n {
			flatten(join(strconv.Itoa(i)), item, emit)
		}
	default:
		emit(prefix, n)
	}
}

func formatCell(v any) string {
	if v == nil {
		return "-"
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > 100 {
		s = s[:97] + "..."
	}
	return s
}
