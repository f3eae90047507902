package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret!" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := ComparePassword(hash, "s3cret!"); err != nil {
		t.Errorf("ComparePassword(correct) = %v, want nil", err)
	}
	if err := ComparePassword(hash, "s3cret"); err == nil {
		t.Error("ComparePassword(near-miss) should fail")
	}
	if err := ComparePassword(hash, ""); err == nil {
		t.Error("ComparePassword(empty) should fail")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("same-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("same-password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password must differ (random salt)")
	}
}

func TestCompareDummyAlwaysFails(t *testing.T) {
	for _, password := range []string{"", "anything", "road-damage-dummy"} {
		if err := CompareDummy(password); err == nil {
			t.Errorf("CompareDummy(%q) = nil, want error", password)
		}
	}
}
