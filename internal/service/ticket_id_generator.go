package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

const ticketNumberWidth = 6

// TicketIDGenerator derives human-readable ticket ids such as "BI-000001".
type TicketIDGenerator struct {
	categories repository.CategoryRepository
	tickets    repository.TicketRepository
}

// NewTicketIDGenerator builds the generator.
func NewTicketIDGenerator(categories repository.CategoryRepository, tickets repository.TicketRepository) *TicketIDGenerator {
	return &TicketIDGenerator{categories: categories, tickets: tickets}
}

// Generate reserves the next id in the named category.
func (g *TicketIDGenerator) Generate(ctx context.Context, categoryName string) (string, error) {
	name := strings.TrimSpace(categoryName)
	if name == "" {
		return "", apperrors.NewBadRequest("category name is required", nil)
	}
	category, err := g.categories.GetByName(ctx, name)
	if err != nil {
		return "", lookupErr(err, "category", map[string]any{"category": name})
	}
	return g.GenerateFor(ctx, category)
}

// GenerateFor reserves the next id for an already resolved category. The
// counter belongs to the prefix, so "billing" and "bills" draw from one
// sequence and never hand out the same id.
func (g *TicketIDGenerator) GenerateFor(ctx context.Context, category *domain.Category) (string, error) {
	prefix := TicketIDPrefix(category.Name)
	if prefix == "" {
		return "", apperrors.NewBadRequest("category name is required", nil)
	}
	next, err := g.tickets.NextSequence(ctx, prefix)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return FormatTicketID(prefix, next), nil
}

// TicketIDPrefix derives the prefix from a category name. Names made of
// several words take the first letter of the first two words
// ("technical_issue" gives "TI-"); single words take their first two letters
// ("billing" gives "BI-").
func TicketIDPrefix(categoryName string) string {
	words := strings.FieldsFunc(strings.TrimSpace(categoryName), isWordSeparator)
	switch {
	case len(words) == 0:
		return ""
	case len(words) == 1:
		return strings.ToUpper(firstRunes(words[0], 2)) + "-"
	default:
		return strings.ToUpper(firstRunes(words[0], 1)+firstRunes(words[1], 1)) + "-"
	}
}

// FormatTicketID zero-pads n behind prefix.
func FormatTicketID(prefix string, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, ticketNumberWidth, n)
}

func isWordSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) < n {
		return string(runes)
	}
	return string(runes[:n])
}
