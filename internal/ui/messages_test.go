package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rogerio-castellano/store-dashboard/internal/backend"
	"github.com/shopspring/decimal"
)

func TestNewMessages_Language(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"fr", "fr"},
		{"fr-CI", "fr"},
		{"en-US", "en"},
		{"", "fr"},
		{"zz-invalid-tag", "fr"},
	}
	for _, tt := range tests {
		if got := NewMessages(tt.in, "").Lang(); got != tt.want {
			t.Errorf("NewMessages(%q): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}

func TestMessages_Translate(t *testing.T) {
	fr := NewMessages("fr", "")
	if got := fr.T(MsgTabSales); got != "Ventes" {
		t.Errorf("expected Ventes, got %q", got)
	}
	en := NewMessages("en", "")
	if got := en.T(MsgTabSales); got != "Sales" {
		t.Errorf("expected Sales, got %q", got)
	}
}

func TestMessages_Money(t *testing.T) {
	en := NewMessages("en", "FCFA")
	if got := en.Money(decimal.RequireFromString("12.5")); got != "12.50 FCFA" {
		t.Errorf("expected 12.50 FCFA, got %q", got)
	}
	if got := NewMessages("en", "").Money(decimal.RequireFromString("0.005")); got != "0.01" {
		t.Errorf("expected 0.01, got %q", got)
	}
	if got := NewMessages("en", "").Money(decimal.RequireFromString("-7")); got != "-7.00" {
		t.Errorf("expected -7.00, got %q", got)
	}
}

func TestMessages_MoneyKeepsLargeAmountsExact(t *testing.T) {
	en := NewMessages("en", "")
	got := en.Money(decimal.RequireFromString("1234567890123456789.994"))
	if plain := strings.ReplaceAll(got, en.groupSep, ""); en.groupSep != "" && plain != "1234567890123456789.99" {
		t.Errorf("expected every digit kept, got %q", got)
	}
	if en.groupSep == "" && got != "1234567890123456789.99" {
		t.Errorf("expected every digit kept, got %q", got)
	}

	if got := groupDigits("1234567", ","); got != "1,234,567" {
		t.Errorf("expected 1,234,567, got %q", got)
	}
	if got := groupDigits("123456", " "); got != "123 456" {
		t.Errorf("expected 123 456, got %q", got)
	}
}

func TestMessages_Error(t *testing.T) {
	en := NewMessages("en", "")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation verbatim", &backend.ValidationError{Status: 400, Message: "Stock insuffisant"}, "Stock insuffisant"},
		{"wrapped validation", fmt.Errorf("save: %w", &backend.ValidationError{Status: 422, Message: "bad"}), "bad"},
		{"credentials", backend.ErrInvalidCredentials, MsgBadCredentials},
		{"network", &backend.NetworkError{Op: "get", Err: context.DeadlineExceeded}, MsgServerUnreachable},
		{"other", errors.New("boom"), "Loading failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := en.Error(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
