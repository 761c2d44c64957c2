package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Kind is the entity class encoded in an identifier.
type Kind string

const (
	KindUser       Kind = "user"
	KindWorkspace  Kind = "workspace"
	KindPlatform   Kind = "platform"
	KindUnit       Kind = "unit"
	KindDeployment Kind = "deploy"
	KindLog        Kind = "log"
	KindDomain     Kind = "domain"
	KindPack       Kind = "pack"
)

// ID is a namespaced entity identifier of the form exo.{kind}.{hex}.
// The random suffix is 12 bytes from crypto/rand, hex encoded, and is
// never reused.
type ID string

const idNamespace = "exo"

var idPattern = regexp.MustCompile(`^exo\.([a-z-]+)\.([a-z0-9]+)$`)

// NewID generates a fresh identifier for the given kind.
func NewID(kind Kind) ID {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("domain: reading random bytes: %v", err))
	}
	return ID(fmt.Sprintf("%s.%s.%s", idNamespace, kind, hex.EncodeToString(buf)))
}

// ParseID validates the raw string and returns it as an ID.
func ParseID(raw string) (ID, error) {
	if !idPattern.MatchString(raw) {
		return "", fmt.Errorf("malformed id %q", raw)
	}
	return ID(raw), nil
}

// ParseIDKind validates the raw string against a specific kind.
func ParseIDKind(raw string, kind Kind) (ID, error) {
	id, err := ParseID(raw)
	if err != nil {
		return "", err
	}
	if id.Kind() != kind {
		return "", fmt.Errorf("id %q is not a %s id", raw, kind)
	}
	return id, nil
}

// Kind returns the kind segment of the identifier.
func (id ID) Kind() Kind {
	parts := strings.SplitN(string(id), ".", 3)
	if len(parts) != 3 {
		return ""
	}
	return Kind(parts[1])
}

// Suffix returns the random segment of the identifier with the
// namespace and kind stripped. Documents store this as their _id.
func (id ID) Suffix() string {
	parts := strings.SplitN(string(id), ".", 3)
	if len(parts) != 3 {
		return ""
	}
	return parts[2]
}

func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool {
	return id == ""
}
