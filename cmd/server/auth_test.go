package main

import (
	"strings"
	"testing"
)

func TestSessionValueRoundTrip(t *testing.T) {
	auth := newAuthService(nil, "test-secret")

	value := auth.createSessionValue("admin@example.com")
	email, ok := auth.verifySessionValue(value)
	if !ok || email != "admin@example.com" {
		t.Fatalf("verifySessionValue = %q, %v", email, ok)
	}
}

func TestSessionValueRejectsTampering(t *testing.T) {
	auth := newAuthService(nil, "test-secret")

	value := auth.createSessionValue("admin@example.com")

	if _, ok := auth.verifySessionValue(value + "x"); ok {
		t.Fatal("accepted tampered signature")
	}
	if _, ok := auth.verifySessionValue("no-dot-here"); ok {
		t.Fatal("accepted malformed value")
	}

	other := newAuthService(nil, "different-secret")
	if _, ok := other.verifySessionValue(value); ok {
		t.Fatal("accepted value signed with another secret")
	}

	parts := strings.Split(value, ".")
	forged := "Zm9yZ2Vk" + "." + parts[1]
	if _, ok := auth.verifySessionValue(forged); ok {
		t.Fatal("accepted forged payload with stolen signature")
	}
}
