package config

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var lines []string
	lines = append(lines, "# MarketMind configuration (TOML)", "")

	top, sections, order := splitSections(GetConfigOptions())
	for _, o := range top {
		writeTOMLOptionLines(&lines, o.Key, o.Default, o.Comment)
	}
	for _, section := range order {
		lines = append(lines, "["+section+"]")
		for _, o := range sections[section] {
			writeTOMLOptionLines(&lines, o.Key, o.Default, o.Comment)
		}
	}
	return strings.Join(lines, "\n")
}

// UpdateTOML merges missing defaults into an existing TOML string and
// comments out keys the schema no longer knows. Missing keys land inside
// their existing section (top-level keys before the first table) so the
// result stays valid TOML. It reports whether anything changed.
func UpdateTOML(existing string) (string, bool) {
	opts := GetConfigOptions()
	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Key] = true
	}

	existingKeys := make(map[string]bool)
	sectionLast := map[string]int{}
	firstHeader := -1
	currentSection := ""
	lines := strings.Split(existing, "\n")
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]") {
			currentSection = strings.TrimSpace(trim[1 : len(trim)-1])
			if firstHeader == -1 {
				firstHeader = len(out)
			}
			out = append(out, line)
			sectionLast[currentSection] = len(out) - 1
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		fullKey := key
		if currentSection != "" {
			fullKey = currentSection + "." + key
		}
		existingKeys[fullKey] = true
		if !known[fullKey] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
		} else {
			out = append(out, line)
		}
		sectionLast[currentSection] = len(out) - 1
	}

	var topLevel, tail []string
	after := map[int][]string{}
	var newSections []string
	fresh := map[string][]ConfigOption{}
	for _, o := range opts {
		if existingKeys[o.Key] {
			continue
		}
		changed = true
		section, key, dotted := strings.Cut(o.Key, ".")
		if !dotted {
			writeTOMLOption(&topLevel, o.Key, o.Default, o.Comment)
			continue
		}
		if idx, ok := sectionLast[section]; ok {
			extra := after[idx]
			writeTOMLOption(&extra, key, o.Default, o.Comment)
			after[idx] = extra
			continue
		}
		if _, seen := fresh[section]; !seen {
			newSections = append(newSections, section)
		}
		fresh[section] = append(fresh[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	if !changed {
		return existing, false
	}

	if len(newSections) > 0 {
		tail = append(tail, "", "# Added by config update")
		for _, section := range newSections {
			tail = append(tail, "["+section+"]")
			for _, o := range fresh[section] {
				writeTOMLOption(&tail, o.Key, o.Default, o.Comment)
			}
			tail = append(tail, "")
		}
	}

	final := make([]string, 0, len(out)+len(topLevel)+len(tail))
	if firstHeader == -1 {
		final = append(final, out...)
		final = append(final, topLevel...)
	} else {
		for i, line := range out {
			if i == firstHeader {
				final = append(final, topLevel...)
			}
			final = append(final, line)
			final = append(final, after[i]...)
		}
	}
	final = append(final, tail...)
	return strings.Join(final, "\n"), true
}

// splitSections groups dotted keys by their first segment, keeping the
// order of first appearance. Keys inside a section lose the prefix.
func splitSections(opts []ConfigOption) ([]ConfigOption, map[string][]ConfigOption, []string) {
	var top []ConfigOption
	sections := make(map[string][]ConfigOption)
	var order []string
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, seen := sections[section]; !seen {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

func parseTOMLKey(line string) (string, bool) {
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") {
		return "", false
	}
	if strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func writeTOMLOptionLines(lines *[]string, key string, value any, comment string) {
	writeTOMLOption(lines, key, value, comment)
	*lines = append(*lines, "")
}

func writeTOMLOption(lines *[]string, key string, value any, comment string) {
	if comment != "" {
		*lines = append(*lines, "# "+comment)
	}
	*lines = append(*lines, fmt.Sprintf("%s = %s", key, tomlValue(value)))
}

func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
