package console

import "strings"

// ANSI escape codes used to style narration.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	BrightRed    = "\033[91m"
	BrightYellow = "\033[93m"
)

// Colorize wraps text with color and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
func Colorize(color, text string) string {
	return color + text + Reset
}

// StripANSI removes all \033[...m sequences from s.
func StripANSI(s string) string {
	result := make([]byte, 0, len(s))
	i := 0
	for i < len(s) {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j + 1
				continue
			}
		}
		result = append(result, s[i])
		i++
	}
	return string(result)
}

// Style picks a color for a narration line from its leading marker.
//
// Postcondition: StripANSI(Style(line)) == line.
func Style(line string) string {
	switch {
	case line == "":
		return line
	case strings.HasPrefix(line, "!!!"):
		return Colorize(Bold+BrightRed, line)
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "=="):
		return Colorize(Bold+BrightYellow, line)
	case strings.HasPrefix(line, "-- "):
		return Colorize(Yellow, line)
	case strings.HasPrefix(line, "LEVEL UP"), strings.HasPrefix(line, "+"),
		strings.HasPrefix(line, "You gain"), strings.HasPrefix(line, "Boss slain"),
		strings.HasPrefix(line, "You defeated"):
		return Colorize(Green, line)
	case strings.HasPrefix(line, "> "):
		return Colorize(Cyan, line)
	case strings.HasPrefix(line, "("):
		return Colorize(Dim, line)
	case strings.HasPrefix(line, "You died"), strings.HasPrefix(line, "You have fallen"),
		strings.HasPrefix(line, "You were defeated"), strings.HasPrefix(line, "Game over"):
		return Colorize(Red, line)
	case strings.HasPrefix(line, "Encounter:"):
		return Colorize(Magenta, line)
	}
	return line
}
