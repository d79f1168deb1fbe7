// Package importer reads cards from Q:/A: markdown notes.
//
// Cards are written as
//
//	Q: What is the capital of France?
//	A: Paris
//	---
//
// A question or answer continues on the following lines until the next
// marker. "---" ends a card, and so does the next "Q:". "C:" context
// blocks are accepted and discarded.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Entry is a parsed question/answer pair.
type Entry struct {
	Question string
	Answer   string
	// Line is the 1-based line of the question marker.
	Line int
}

type section int

const (
	outside section = iota
	inQuestion
	inAnswer
	inContext
)

var markers = []struct {
	prefix  string
	section section
}{
	{prefix: "Q:", section: inQuestion},
	{prefix: "A:", section: inAnswer},
	{prefix: "C:", section: inContext},
}

const separator = "---"

type entryBuilder struct {
	entries []Entry
	current Entry
	section section
	lines   []string
}

func (b *entryBuilder) flushSection() {
	text := strings.TrimSpace(strings.Join(b.lines, "\n"))
	switch b.section {
	case inQuestion:
		b.current.Question = text
	case inAnswer:
		b.current.Answer = text
	}
	b.lines = nil
}

func (b *entryBuilder) finishEntry() {
	b.flushSection()
	if b.current.Question != "" {
		b.entries = append(b.entries, b.current)
	}
	b.current = Entry{}
	b.section = outside
}

// ParseFile parses the notes file at path.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	entries, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

// Parse extracts every entry with a question from r.
func Parse(r io.Reader) ([]Entry, error) {
	var b entryBuilder
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if strings.TrimSpace(line) == separator {
			b.finishEntry()
			continue
		}

		matched := false
		for _, m := range markers {
			if !strings.HasPrefix(line, m.prefix) {
				continue
			}
			matched = true
			if m.section == inQuestion && b.section != outside {
				b.finishEntry()
			} else {
				b.flushSection()
			}
			if m.section == inQuestion {
				b.current.Line = lineNumber
			}
			b.section = m.section
			b.lines = append(b.lines, strings.TrimPrefix(line[len(m.prefix):], " "))
			break
		}
		if !matched && b.section != outside {
			b.lines = append(b.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	b.finishEntry()
	return b.entries, nil
}
