package auth

import "testing"

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("password stored in plaintext")
	}

	ok, err := CheckPassword(hash, "hunter22")
	if err != nil || !ok {
		t.Fatalf("CheckPassword(correct) = %v, %v", ok, err)
	}
	ok, err = CheckPassword(hash, "hunter23")
	if err != nil || ok {
		t.Fatalf("CheckPassword(wrong) = %v, %v", ok, err)
	}

	other, _ := HashPassword("hunter22")
	if other == hash {
		t.Fatal("hashes should be salted")
	}
}

func TestCheckPassword_BadHash(t *testing.T) {
	if _, err := CheckPassword("not-bcrypt", "x"); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
