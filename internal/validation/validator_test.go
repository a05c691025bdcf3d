package validation

import (
	"errors"
	"net/url"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"650", 650},
		{" 650 ", 650},
		{"649.99", 649},
		{"-5", -5},
		{"0", 0},
		{"", 0},
		{"not-a-number", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-Inf", 0},
	}

	for _, tc := range cases {
		if got := ParsePrice(tc.in); got != tc.want {
			t.Errorf("ParsePrice(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseFormRejectsWhitespaceTitle(t *testing.T) {
	v := NewValidator(0, false)

	form := url.Values{}
	form.Set("title", "   ")
	form.Set("price", "100")

	if _, err := v.ParseForm(form); !errors.Is(err, ErrTitleMissing) {
		t.Fatalf("err = %v, want ErrTitleMissing", err)
	}
}

func TestParseFormTrimsFields(t *testing.T) {
	v := NewValidator(0, false)

	form := url.Values{}
	form.Set("title", "  Fender Stratocaster  ")
	form.Set("description", "  wenig gespielt  ")
	form.Set("image_url", " /static/img/strat.jpg ")
	form.Set("price", "650")

	ad, err := v.ParseForm(form)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if ad.Title != "Fender Stratocaster" {
		t.Errorf("Title = %q", ad.Title)
	}
	if ad.Description != "wenig gespielt" {
		t.Errorf("Description = %q", ad.Description)
	}
	if ad.ImageURL != "/static/img/strat.jpg" {
		t.Errorf("ImageURL = %q", ad.ImageURL)
	}
	if ad.Price != 650 {
		t.Errorf("Price = %d", ad.Price)
	}
}

func TestParseFormCoercesBadPrice(t *testing.T) {
	v := NewValidator(0, false)

	form := url.Values{}
	form.Set("title", "X")
	form.Set("price", "not-a-number")

	ad, err := v.ParseForm(form)
	if err != nil {
		t.Fatalf("ParseForm: %v", err)
	}
	if ad.Price != 0 {
		t.Fatalf("Price = %d, want 0", ad.Price)
	}
}

func TestPriceFloor(t *testing.T) {
	form := url.Values{}
	form.Set("title", "Gratis Notenständer")
	form.Set("price", "-10")

	// Negative prices pass by default.
	if _, err := NewValidator(0, false).ParseForm(form); err != nil {
		t.Fatalf("unenforced floor rejected ad: %v", err)
	}

	// With the floor enforced the same ad is rejected.
	if _, err := NewValidator(0, true).ParseForm(form); !errors.Is(err, ErrPriceBelowFloor) {
		t.Fatalf("err = %v, want ErrPriceBelowFloor", err)
	}
}
