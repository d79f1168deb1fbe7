// Package export writes decks as markdown notes and PDF handouts.
//
// The markdown uses the Q:/A: layout read by the importer, so an exported
// deck can be imported again. Scheduling details go in C: lines, which the
// importer ignores.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/at-ishikawa/flashcards/internal/flashcard"
)

//go:embed templates/deck.md.go.tmpl
var fallbackDeckTemplate string

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

type deckView struct {
	Deck  flashcard.Deck
	Cards []flashcard.Card
}

// ParseDeckTemplate parses the template at templatePath, falling back to the
// embedded template when the path is empty or cannot be parsed.
func ParseDeckTemplate(templatePath string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"schedule": describeSchedule,
	}

	if templatePath != "" {
		tmpl, err := template.New(filepath.Base(templatePath)).Funcs(funcMap).ParseFiles(templatePath)
		if err == nil {
			return tmpl, nil
		}
		slog.Default().Warn("failed to parse a deck template, using the embedded one",
			slog.String("templatePath", templatePath),
			slog.Any("error", err),
		)
	}

	tmpl, err := template.New("deck").Funcs(funcMap).Parse(fallbackDeckTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse embedded deck template: %w", err)
	}
	return tmpl, nil
}

// WriteMarkdown renders deck and its cards to w.
func WriteMarkdown(w io.Writer, tmpl *template.Template, deck flashcard.Deck, cards []flashcard.Card) error {
	if err := tmpl.Execute(w, deckView{Deck: deck, Cards: cards}); err != nil {
		return fmt.Errorf("render deck %s: %w", deck.ID, err)
	}
	return nil
}

// Deck writes <dir>/<deck-name>.md and returns its path. When pdf is not nil,
// the same markdown is rendered to <dir>/<deck-name>.pdf and that path is
// returned as well.
func Deck(dir string, tmpl *template.Template, deck flashcard.Deck, cards []flashcard.Card, pdf *PDFOptions) (markdownPath, pdfPath string, err error) {
	if pdf != nil {
		if err := pdf.Validate(); err != nil {
			return "", "", err
		}
	}

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, tmpl, deck, cards); err != nil {
		return "", "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output directory: %w", err)
	}
	markdownPath = filepath.Join(dir, FileName(deck)+".md")
	if err := os.WriteFile(markdownPath, buf.Bytes(), 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", markdownPath, err)
	}

	if pdf == nil {
		return markdownPath, "", nil
	}
	pdfPath = filepath.Join(dir, FileName(deck)+".pdf")
	if err := RenderPDF(buf.Bytes(), pdfPath, *pdf); err != nil {
		return markdownPath, "", err
	}
	return markdownPath, pdfPath, nil
}

// FileName returns a file-system friendly base name for deck.
func FileName(deck flashcard.Deck) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(deck.Name), "-"), "-")
	if name == "" {
		return deck.ID
	}
	return name
}

func describeSchedule(card flashcard.Card) string {
	if card.NextReviewAt == nil {
		return "new card"
	}
	return fmt.Sprintf("next review %s, interval %d days, repetitions %d, easiness %.2f",
		card.NextReviewAt.Format("2006-01-02"), card.Interval, card.Repetitions, card.EasinessFactor)
}
