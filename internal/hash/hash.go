package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor for new hashes. Tests lower it.
var Cost = bcrypt.DefaultCost

// ErrTooLong is returned for passwords bcrypt would silently truncate.
var ErrTooLong = errors.New("password longer than 72 bytes")

func HashPassword(password string) (string, error) {
	if len(password) > 72 {
		return "", ErrTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NeedsRehash reports whether hash was produced with a cost other than Cost.
func NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	return err != nil || c != Cost
}
