package server

import (
	"github.com/edgard/bookrec/internal/catalog"
	apperrors "github.com/edgard/bookrec/internal/errors"
	"github.com/edgard/bookrec/internal/recommend"
)

// Placeholders for optional catalog fields.
const (
	NotAvailable        = "N/A"
	NoDescription       = "No description available"
	GenericErrorMessage = "An error occurred while processing your request."
)

// BookPayload is the public shape of a recommended book. AverageRating is
// either a number or NotAvailable.
type BookPayload struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	PublishedDate string   `json:"publishedDate"`
	AverageRating any      `json:"averageRating"`
	Description   string   `json:"description"`
}

// SuccessPayload is returned when a book was recommended.
type SuccessPayload struct {
	RecommendedBook BookPayload `json:"recommended_book"`
	ThankYouMessage string      `json:"thank_you_message"`
}

// ErrorPayload is returned for every failure. Reason is the error code.
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Reason  string `json:"reason"`
}

func newSuccessPayload(rec recommend.Recommendation) SuccessPayload {
	return SuccessPayload{
		RecommendedBook: newBookPayload(rec.Book),
		ThankYouMessage: rec.Message,
	}
}

func newBookPayload(b catalog.Entry) BookPayload {
	p := BookPayload{
		Title:         b.Title,
		Authors:       b.Authors,
		PublishedDate: b.PublishedDate,
		AverageRating: NotAvailable,
		Description:   b.Description,
	}
	if p.Authors == nil {
		p.Authors = []string{}
	}
	if p.PublishedDate == "" {
		p.PublishedDate = NotAvailable
	}
	if b.AverageRating != nil {
		p.AverageRating = *b.AverageRating
	}
	if p.Description == "" {
		p.Description = NoDescription
	}
	return p
}

func newErrorPayload(err error) ErrorPayload {
	return ErrorPayload{
		Error:   err.Error(),
		Message: GenericErrorMessage,
		Reason:  apperrors.Code(err),
	}
}
