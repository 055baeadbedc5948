// Package password hashes and verifies account passwords.
//
// New hashes are bcrypt. Accounts imported from the old store carry an
// unsalted SHA-256 hex digest; Verify accepts those and reports that the
// caller should replace the stored hash.
package password

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("password mismatch")

// Hash returns a bcrypt hash of plain.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify checks plain against stored. needsUpgrade is true when stored is a
// legacy digest that matched.
func Verify(stored, plain string) (needsUpgrade bool, err error) {
	if isLegacy(stored) {
		sum := sha256.Sum256([]byte(plain))
		want := hex.EncodeToString(sum[:])
		if subtle.ConstantTimeCompare([]byte(strings.ToLower(stored)), []byte(want)) != 1 {
			return false, ErrMismatch
		}
		return true, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err != nil {
		return false, ErrMismatch
	}
	return false, nil
}

func isLegacy(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}
