package book

import (
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"bookcatalog/internal/apperr"
)

const (
	// MinTitleLength is the minimum number of characters in a trimmed title.
	MinTitleLength = 3
	// MaxPageCount is the largest page count the books table can hold.
	MaxPageCount = math.MaxInt32
)

// Book represents a catalog record.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Publisher     string    `json:"publisher"`
	PublishedDate string    `json:"published_date"`
	PageCount     int       `json:"page_count"`
	Language      string    `json:"language"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateInput holds the caller-supplied fields of a new book.
type CreateInput struct {
	Title         string
	Author        string
	Publisher     string
	PublishedDate string
	PageCount     int
	Language      string
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title         *string
	Author        *string
	Publisher     *string
	PublishedDate *string
	PageCount     *int
	Language      *string
}

// IsEmpty reports whether the patch sets no field.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Author == nil && p.Publisher == nil &&
		p.PublishedDate == nil && p.PageCount == nil && p.Language == nil
}

// Apply copies the set fields onto b.
func (p Patch) Apply(b *Book) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Publisher != nil {
		b.Publisher = *p.Publisher
	}
	if p.PublishedDate != nil {
		b.PublishedDate = *p.PublishedDate
	}
	if p.PageCount != nil {
		b.PageCount = *p.PageCount
	}
	if p.Language != nil {
		b.Language = *p.Language
	}
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(strings.TrimSpace(title)) < MinTitleLength {
		return apperr.Validation("title must be at least %d characters", MinTitleLength)
	}
	return nil
}

func validatePageCount(n int) error {
	if n < 0 {
		return apperr.Validation("page_count must not be negative")
	}
	if n > MaxPageCount {
		return apperr.Validation("page_count must be at most %d", MaxPageCount)
	}
	return nil
}

func validateText(field, value string) error {
	if strings.ContainsRune(value, 0) {
		return apperr.Validation("%s must not contain NUL characters", field)
	}
	return nil
}

func (in CreateInput) validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validatePageCount(in.PageCount); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"author", in.Author},
		{"publisher", in.Publisher},
		{"published_date", in.PublishedDate},
		{"language", in.Language},
	} {
		if err := validateText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (p Patch) validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.PageCount != nil {
		if err := validatePageCount(*p.PageCount); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"title", p.Title},
		{"author", p.Author},
		{"publisher", p.Publisher},
		{"published_date", p.PublishedDate},
		{"language", p.Language},
	} {
		if f.value == nil {
			continue
		}
		if err := validateText(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}
