// Package parse reconstructs structured messages from LINE talk-history
// exports. The export format is line oriented: a header line, a saved-at
// line, then date-header blocks containing tab-separated message lines.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kotonoha/talktrend/pkg/talktrend/internalerr"
)

// Message is a single chat message reconstructed from the export.
// Text may contain embedded newlines for multi-line messages.
type Message struct {
	Timestamp time.Time
	Author    string
	Text      string
}

const (
	headerMarker  = "[LINE]"
	savedAtMarker = "保存日時："
)

var (
	// Date header: YYYY/M/D(weekday glyph)
	dateRe = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})\([月火水木金土日]\)$`)

	// Message time: H:MM or HH:MM
	timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	// Embedded URLs are stripped from message content before the
	// emptiness and metadata checks.
	urlRe = regexp.MustCompile(`https?://\S+`)
)

// Metadata content that is dropped even when the line is otherwise a
// well-formed message: attachment placeholders, member-change
// announcements, and call-event announcements (short and verbose forms,
// with or without the ☎ glyph).
var metaPatterns = []string{
	`^\[スタンプ\]$`,
	`^\[写真\]$`,
	`^\[動画\]$`,
	`^\[ファイル\]$`,
	`^\[アルバム\]$`,
	`^\[ノート\]$`,
	`^\[通話\]`,
	`^☎?\s*通話時間`,
	`^☎?\s*不在着信`,
	`通話をキャンセルしました$`,
	`グループ通話が開始されました。$`,
	`が参加しました。$`,
	`が退出しました。$`,
	`がメンバーを追加しました。$`,
	`がメンバーを削除しました。$`,
}

// Parser converts raw export text into an ordered message list.
type Parser struct {
	metaRe *regexp.Regexp
}

// NewParser creates a parser with the built-in metadata patterns compiled.
func NewParser() *Parser {
	return &Parser{
		metaRe: regexp.MustCompile(strings.Join(metaPatterns, "|")),
	}
}

// Parse scans raw text line by line and returns the messages in file
// order. Malformed lines are silently skipped; only a zero-message
// result is reported, as internalerr.ErrNoMessages.
func (p *Parser) Parse(raw string) ([]Message, error) {
	lines := splitLines(raw)

	var messages []Message
	var currentDate time.Time
	haveDate := false

	i := 0
	lineNumber := 0
	for i < len(lines) {
		line := lines[i]
		lineNumber++
		i++

		if line == "" {
			continue
		}
		if lineNumber == 1 && strings.HasPrefix(line, headerMarker) {
			continue
		}
		if lineNumber == 2 && strings.HasPrefix(line, savedAtMarker) {
			continue
		}

		if d, ok := parseDateLine(line); ok {
			currentDate = d
			haveDate = true
			continue
		}

		if !haveDate {
			continue
		}

		msg, consumed := p.parseMessageLine(line, currentDate, lines, i)
		if msg != nil {
			messages = append(messages, *msg)
		}
		i += consumed
		lineNumber += consumed
	}

	if len(messages) == 0 {
		return nil, internalerr.ErrNoMessages
	}
	return messages, nil
}

// splitLines splits on newlines, stripping trailing carriage returns.
func splitLines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	// A trailing newline produces one empty trailing element; keep it,
	// blank lines are skipped by the scanner anyway.
	return lines
}

// parseDateLine matches a date-header line. Calendar-invalid dates
// (month 13, February 30) are treated as non-matches, not errors.
func parseDateLine(line string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes out-of-range values; a round trip detects them.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// parseMessageLine parses one candidate message line. Returns the message
// (nil when the line is rejected) and the number of extra lines consumed
// by multi-line reconstruction.
func (p *Parser) parseMessageLine(line string, date time.Time, lines []string, next int) (*Message, int) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return nil, 0
	}

	timeStr := strings.TrimSpace(parts[0])
	author := strings.TrimSpace(parts[1])
	content := strings.TrimSpace(parts[2])

	tm := timeRe.FindStringSubmatch(timeStr)
	if tm == nil {
		return nil, 0
	}
	hour, _ := strconv.Atoi(tm[1])
	minute, _ := strconv.Atoi(tm[2])

	// Lines with an empty author are system notifications (join/leave,
	// call events without an attributable sender).
	if author == "" {
		return nil, 0
	}
	if content == "" {
		return nil, 0
	}

	consumed := 0
	if isMultilineStart(content) {
		content, consumed = readMultiline(content, lines, next)
	}

	content = strings.TrimSpace(urlRe.ReplaceAllString(content, ""))
	if content == "" {
		return nil, consumed
	}
	if p.metaRe.MatchString(content) {
		return nil, consumed
	}
	if hour > 23 || minute > 59 {
		return nil, consumed
	}

	ts := time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
	return &Message{Timestamp: ts, Author: author, Text: content}, consumed
}

// isMultilineStart reports whether content opens a multi-line message:
// it starts with a quote character but does not close it on the same line.
func isMultilineStart(content string) bool {
	return strings.HasPrefix(content, `"`) && !strings.HasSuffix(content, `"`)
}

// isMessageLine reports whether a line has the shape of a message line
// (leading H:MM field followed by a tab), used to terminate multi-line
// consumption when the closing quote is missing.
func isMessageLine(line string) bool {
	parts := strings.SplitN(line, "\t", 2)
	if len(parts) < 2 {
		return false
	}
	return timeRe.MatchString(strings.TrimSpace(parts[0]))
}

// readMultiline accumulates continuation lines of a quoted multi-line
// message. Consumption stops at a line ending in the closing quote, or
// just before the next syntactically valid message line when the quote
// was never closed. Blank lines become embedded empty strings.
func readMultiline(first string, lines []string, start int) (string, int) {
	contentLines := []string{strings.TrimPrefix(first, `"`)}
	consumed := 0

	for i := start; i < len(lines); i++ {
		line := lines[i]
		consumed++

		if line == "" {
			contentLines = append(contentLines, "")
			continue
		}
		if isMessageLine(line) {
			consumed--
			break
		}
		if strings.HasSuffix(line, `"`) {
			contentLines = append(contentLines, strings.TrimSuffix(line, `"`))
			break
		}
		contentLines = append(contentLines, line)
	}

	return strings.Join(contentLines, "\n"), consumed
}
