package users

import "testing"

func TestUnsubscribeTokenRoundTrip(t *testing.T) {
	token, err := MintUnsubscribeToken("secret", 42)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	userID, err := ParseUnsubscribeToken("secret", token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Errorf("expected user 42, got %d", userID)
	}
}

func TestUnsubscribeTokenWrongSecret(t *testing.T) {
	token, err := MintUnsubscribeToken("secret", 42)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	if _, err := ParseUnsubscribeToken("other-secret", token); err == nil {
		t.Error("expected token signed with different secret to fail")
	}
}

func TestUnsubscribeTokenGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := ParseUnsubscribeToken("secret", tok); err == nil {
			t.Errorf("expected %q to be rejected", tok)
		}
	}
}
