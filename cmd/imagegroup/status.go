package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

type statusStyle struct {
	tag   string
	color text.Color
}

var statusStyles = map[statusKind]statusStyle{
	statusInfo:  {tag: "INFO", color: text.FgBlue},
	statusOK:    {tag: "OK", color: text.FgGreen},
	statusWarn:  {tag: "WARN", color: text.FgYellow},
	statusError: {tag: "ERROR", color: text.FgRed},
}

const (
	statusLabelWidth = 28
	statusIndent     = "  "
)

// renderStatusLine formats "  label:   [TAG] message" with the label padded
// to a fixed column.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusStyles[kind]
	if !ok {
		style = statusStyles[statusInfo]
	}

	tag := "[" + style.tag + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", tag)
	if colorize {
		return style.color.Sprint(line)
	}
	return line
}

// tailLabel keeps the end of s, which for URLs is the file name, and marks
// the cut with "...". It counts runes so multi-byte text is never split.
func tailLabel(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(r[len(r)-maxRunes:])
	}
	return "..." + string(r[len(r)-(maxRunes-3):])
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
