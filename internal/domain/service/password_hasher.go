package service

// PasswordHasher abstracts password hashing so the application layer does not
// depend on a specific algorithm.
type PasswordHasher interface {
	// Hash returns the hash of a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether the plaintext password matches the hash.
	Check(password, hash string) bool
}
