package bunny

import (
	"testing"
	"time"
)

func TestSignUpload(t *testing.T) {
	expiresAt := time.Unix(1700000000, 0).UTC()
	got := signUpload(101, "test-api-key", "guid-123", expiresAt)
	want := "13d581d469f0cc6346f22a9a10df47adf70d2b88342391c5972d230a7e9f3411"
	if got != want {
		t.Fatalf("signature mismatch:\n got %s\nwant %s", got, want)
	}
}

func TestSignUploadVariesWithInputs(t *testing.T) {
	expiresAt := time.Unix(1700000000, 0).UTC()
	base := signUpload(101, "test-api-key", "guid-123", expiresAt)

	if signUpload(102, "test-api-key", "guid-123", expiresAt) == base {
		t.Fatal("expected library id to affect the signature")
	}
	if signUpload(101, "other-key", "guid-123", expiresAt) == base {
		t.Fatal("expected api key to affect the signature")
	}
	if signUpload(101, "test-api-key", "guid-124", expiresAt) == base {
		t.Fatal("expected guid to affect the signature")
	}
	if signUpload(101, "test-api-key", "guid-123", expiresAt.Add(time.Second)) == base {
		t.Fatal("expected expiry to affect the signature")
	}
}
