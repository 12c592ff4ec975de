package model

import (
	"fmt"
	"strings"
)

// AccountKind classifies an investment account for tax purposes.
type AccountKind string

const (
	AccountKindISA AccountKind = "isa"
	AccountKindGIA AccountKind = "gia"
)

// ParseAccountKind accepts the short ids and the legacy long spellings.
func ParseAccountKind(s string) (AccountKind, error) {
	switch s {
	case "isa", "ISA":
		return AccountKindISA, nil
	case "gia", "GeneralInvestmentAccount":
		return AccountKindGIA, nil
	}
	return "", fmt.Errorf("unknown account kind %q", s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *AccountKind) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountKind(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k AccountKind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

// Account is one broker account discovered in an import file.
type Account struct {
	ID         string
	PlatformID string
	ImportID   string
	Label      *string // nil until overlaid from the manifest
	Kind       *AccountKind
}

// DisplayName returns the label when known, else the id.
func (a Account) DisplayName() string {
	if a.Label != nil && *a.Label != "" {
		return *a.Label
	}
	return a.ID
}
