package crypto

import (
	"strings"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	passwords := []string{
		"hunter2",
		"",
		"correct horse battery staple",
		"senha com acentuação çãõ",
		strings.Repeat("x", 200),
	}

	for _, password := range passwords {
		encoded, err := HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword(%q): %v", password, err)
		}
		if !strings.Contains(encoded, ".") {
			t.Errorf("encoding missing separator: %q", encoded)
		}
		if !VerifyPassword(password, encoded) {
			t.Errorf("VerifyPassword(%q, hash) = false, want true", password)
		}
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	encoded, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if VerifyPassword("hunter3", encoded) {
		t.Error("wrong password verified as true")
	}
	if VerifyPassword("", encoded) {
		t.Error("empty password verified as true")
	}
}

func TestHashPassword_NonDeterministic(t *testing.T) {
	first, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical; salts are not fresh")
	}
	if !VerifyPassword("hunter2", first) || !VerifyPassword("hunter2", second) {
		t.Error("both encodings must verify the original password")
	}
}

func TestVerifyPassword_PlaintextFallback(t *testing.T) {
	// Records without the separator are legacy/bootstrap plaintext entries.
	if !VerifyPassword("130903", "130903") {
		t.Error("plaintext record did not verify")
	}
	if VerifyPassword("wrong", "130903") {
		t.Error("plaintext record verified a wrong password")
	}
}

func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"bad key hex", "zzzz.00112233445566778899aabbccddeeff"},
		{"bad salt hex", strings.Repeat("ab", 64) + ".nothex"},
		{"short key", "abcd.00112233445566778899aabbccddeeff"},
		{"short salt", strings.Repeat("ab", 64) + ".abcd"},
		{"separator only", "."},
		{"trailing separator", strings.Repeat("ab", 64) + "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyPassword("anything", tt.encoded) {
				t.Errorf("malformed encoding %q verified as true", tt.encoded)
			}
		})
	}
}

func TestSignToken_RoundTrip(t *testing.T) {
	token, err := GenerateSessionToken()
	if err != nil {
		t.Fatal(err)
	}
	if len(token) != SessionTokenBytes*2 {
		t.Fatalf("token length = %d, want %d", len(token), SessionTokenBytes*2)
	}

	signed := SignToken(token, "secret")

	got, ok := ParseSignedToken(signed, "secret")
	if !ok {
		t.Fatal("signed token did not verify")
	}
	if got != token {
		t.Errorf("parsed token = %q, want %q", got, token)
	}

	if _, ok := ParseSignedToken(signed, "other-secret"); ok {
		t.Error("token verified under the wrong secret")
	}
	if _, ok := ParseSignedToken(token, "secret"); ok {
		t.Error("unsigned token verified")
	}
	if _, ok := ParseSignedToken(signed+"ff", "secret"); ok {
		t.Error("tampered token verified")
	}
}
