package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetGetDelete(t *testing.T) {
	gokeyring.MockInit()

	for _, s := range []Secret{SecretDatabase, SecretOpenAI} {
		t.Run(string(s), func(t *testing.T) {
			if err := Set(s, "value-"+string(s)); err != nil {
				t.Fatalf("Set() failed: %v", err)
			}
			got, err := Get(s)
			if err != nil {
				t.Fatalf("Get() failed: %v", err)
			}
			if got != "value-"+string(s) {
				t.Errorf("Get() = %q", got)
			}

			if err := Delete(s); err != nil {
				t.Fatalf("Delete() failed: %v", err)
			}
			if _, err := Get(s); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want %v", err, ErrNotFound)
			}
			if err := Delete(s); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
			}
		})
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretOpenAI, "sk-test"); err != nil {
		t.Fatal(err)
	}
	if got := Lookup(SecretDatabase); got != "" {
		t.Errorf("Lookup(database) = %q, want empty", got)
	}
	if got := Lookup(SecretOpenAI); got != "sk-test" {
		t.Errorf("Lookup(openai) = %q", got)
	}
}

func TestSetEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := Set(SecretOpenAI, ""); err == nil {
		t.Error("Set with empty value should return an error")
	}
}

func TestParseSecret(t *testing.T) {
	tests := []struct {
		in      string
		want    Secret
		wantErr bool
	}{
		{"database", SecretDatabase, false},
		{"db", SecretDatabase, false},
		{"openai", SecretOpenAI, false},
		{"aws", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSecret(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSecret(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()

	if !IsAvailable() {
		t.Error("IsAvailable() = false, want true in mock mode")
	}
}
