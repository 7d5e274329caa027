package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Deliberately expensive so stolen records resist
// brute force; keyLen is fixed at 32 bytes.
const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 32
	saltBytes    = 8
)

// ErrMalformedRecord is returned when a stored password record does not
// contain the `salt.hash` separator. That record was never written by
// HashPassword, so this is a data-integrity problem, not a bad login.
var ErrMalformedRecord = errors.New("malformed password record")

// HashPassword derives a password record of the form
// `saltHex + "." + derivedHex` using a fresh random salt.
func HashPassword(plain string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	key, err := scrypt.Key([]byte(plain), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", err
	}
	return saltHex + "." + hex.EncodeToString(key), nil
}

// VerifyPassword re-derives the key with the salt extracted from the
// stored record and compares in constant time. A wrong password is
// (false, nil); only a record missing the separator is an error.
func VerifyPassword(plain, record string) (bool, error) {
	saltHex, storedHex, found := strings.Cut(record, ".")
	if !found {
		return false, ErrMalformedRecord
	}
	key, err := scrypt.Key([]byte(plain), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(key)), []byte(storedHex)) == 1, nil
}
