package auth

import "golang.org/x/crypto/bcrypt"

// maxPasswordBytes is bcrypt's input limit. Longer passwords are
// truncated before hashing so that Hash and Verify always agree.
const maxPasswordBytes = 72

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return PasswordHasher{cost: cost}
}

// Hash generates a salted bcrypt hash of the password. The salt is
// random per call, so hashing the same password twice yields
// different encodings.
func (h PasswordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the password matches the stored hash.
// A malformed stored hash never raises an error, it just fails
// verification.
func (h PasswordHasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password))
	return err == nil
}

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
