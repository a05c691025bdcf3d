// Package validation turns untrusted form input into a well-formed ad.
package validation

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"

	"jam-board/internal/domain"
)

var (
	ErrTitleMissing    = errors.New("title missing")
	ErrPriceBelowFloor = errors.New("price below configured floor")
)

type Validator struct {
	priceFloor   int64
	enforceFloor bool
}

// NewValidator builds a validator. The floor is only checked when enforce
// is true; otherwise any price, negatives included, passes through.
func NewValidator(priceFloor int64, enforce bool) *Validator {
	return &Validator{priceFloor: priceFloor, enforceFloor: enforce}
}

// ParseForm builds an ad from the submission form fields. The title is the
// only hard requirement; price falls back to 0 on any unparsable input.
func (v *Validator) ParseForm(form url.Values) (*domain.Ad, error) {
	ad := &domain.Ad{
		Title:       form.Get("title"),
		Description: form.Get("description"),
		ImageURL:    form.Get("image_url"),
		Price:       ParsePrice(form.Get("price")),
	}
	if err := v.Normalize(ad); err != nil {
		return nil, err
	}
	return ad, nil
}

// Normalize trims the text fields in place and applies the validation
// gates. Shared by the form path and the JSON API path.
func (v *Validator) Normalize(ad *domain.Ad) error {
	ad.Title = strings.TrimSpace(ad.Title)
	ad.Description = strings.TrimSpace(ad.Description)
	ad.ImageURL = strings.TrimSpace(ad.ImageURL)

	if ad.Title == "" {
		return ErrTitleMissing
	}
	if v.enforceFloor && ad.Price < v.priceFloor {
		return ErrPriceBelowFloor
	}
	return nil
}

// ParsePrice coerces raw user input to a price. Unparsable or non-finite
// values become 0 rather than an error.
func ParsePrice(raw string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int64(f)
}
