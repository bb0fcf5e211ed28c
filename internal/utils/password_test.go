package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "hunter3") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordCostFloor(t *testing.T) {
	hash, err := HashPassword("hunter2", 0)
	if err != nil {
		t.Fatalf("HashPassword with cost 0: %v", err)
	}
	if !VerifyPassword(hash, "hunter2") {
		t.Error("hash from floored cost does not verify")
	}
}
