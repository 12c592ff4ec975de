// Package manifest loads the TOML descriptors that accompany import files and
// pairs them with the files they describe.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/cleared-dev/holdings/internal/id"
	"github.com/cleared-dev/holdings/internal/importerr"
	"github.com/cleared-dev/holdings/internal/model"
)

// Extension is the file extension of manifest descriptors.
const Extension = ".toml"

// Manifest declares an import file's fingerprint, source platform and
// account metadata overrides.
type Manifest struct {
	SHA256Sum string            `toml:"sha256sum"`
	Platform  model.Platform    `toml:"platform"`
	Accounts  []AccountMetadata `toml:"accounts"`
}

// AccountMetadata overlays a label and kind onto a discovered account with the same id.
type AccountMetadata struct {
	ID    string            `toml:"id"`
	Label string            `toml:"label"`
	Kind  model.AccountKind `toml:"kind"`
}

// Matches reports whether m applies to account.
func (m AccountMetadata) Matches(account model.Account) bool {
	return m.ID == account.ID
}

// Apply overlays label and kind onto account if it matches. Reports whether it applied.
func (m AccountMetadata) Apply(account *model.Account) bool {
	if !m.Matches(*account) {
		return false
	}
	label := m.Label
	kind := m.Kind
	account.Label = &label
	account.Kind = &kind
	return true
}

// Lookup returns the metadata entry for an account id.
func (m *Manifest) Lookup(accountID string) (AccountMetadata, bool) {
	for _, md := range m.Accounts {
		if md.ID == accountID {
			return md, true
		}
	}
	return AccountMetadata{}, false
}

// Parse decodes descriptor text. Any decode or shape failure is a *importerr.StructuralError.
func Parse(text string) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(text, &m)
	if err != nil {
		return nil, &importerr.StructuralError{Loc: importerr.At(""), Msg: "decoding manifest", Err: err}
	}

	for _, key := range []string{"sha256sum", "platform", "accounts"} {
		if !md.IsDefined(key) {
			return nil, importerr.Structural("manifest: missing required field %q", key)
		}
	}

	fp, err := id.NormalizeFingerprint(m.SHA256Sum)
	if err != nil {
		return nil, &importerr.StructuralError{Loc: importerr.At(""), Msg: "manifest: sha256sum", Err: err}
	}
	m.SHA256Sum = fp

	seen := make(map[string]bool, len(m.Accounts))
	for i, acct := range m.Accounts {
		for _, key := range []string{"id", "label", "kind"} {
			if !acct.defined(key) {
				return nil, importerr.Structural("manifest: accounts[%d]: missing required field %q", i, key)
			}
		}
		if seen[acct.ID] {
			return nil, importerr.Structural("manifest: account %q declared more than once", acct.ID)
		}
		seen[acct.ID] = true
	}

	return &m, nil
}

// defined reports whether a decoded account entry carries a value for key.
// TOML metadata cannot address individual array-table elements, so required
// account fields are checked on the decoded values.
func (m AccountMetadata) defined(key string) bool {
	switch key {
	case "id":
		return m.ID != ""
	case "label":
		return m.Label != ""
	case "kind":
		return m.Kind != ""
	}
	return false
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(string(data))
	if err != nil {
		return nil, importerr.Locate(err, importerr.At(path))
	}
	return m, nil
}
