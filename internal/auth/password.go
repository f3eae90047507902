package auth

import "golang.org/x/crypto/bcrypt"

// dummyHash is a bcrypt digest of a throwaway value. When a login names an
// unknown account we still run a full bcrypt comparison against it so the
// response time does not reveal whether the username exists.
var dummyHash = func() string {
	h, err := bcrypt.GenerateFromPassword([]byte("road-damage-dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(h)
}()

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// CompareDummy burns the same bcrypt work as a real comparison and always
// fails. Used when the account does not exist.
func CompareDummy(plain string) error {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plain))
	return bcrypt.ErrMismatchedHashAndPassword
}
