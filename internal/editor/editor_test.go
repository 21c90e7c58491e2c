package editor

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/playmatatu/arcade/internal/models"
)

func TestHashAndVerifyEditorKey(t *testing.T) {
	hash, err := HashEditorKey("correct horse")
	if err != nil {
		t.Fatalf("HashEditorKey: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("key stored in plain text")
	}
	if !VerifyEditorKey(hash, "correct horse") {
		t.Error("matching key rejected")
	}
	if VerifyEditorKey(hash, "battery staple") {
		t.Error("wrong key accepted")
	}
	if VerifyEditorKey("not-a-hash", "correct horse") {
		t.Error("malformed hash accepted")
	}
}

func TestHasRole(t *testing.T) {
	acc := &models.EditorAccount{Username: "ed", Roles: pq.StringArray{"viewer", RoleLevels}}
	if !HasRole(acc, RoleLevels) {
		t.Error("expected levels role")
	}
	if HasRole(acc, "admin") {
		t.Error("unexpected admin role")
	}
	if HasRole(nil, RoleLevels) {
		t.Error("nil account has no roles")
	}
}

func TestWithoutDatabase(t *testing.T) {
	if _, err := ValidateEditorCredentials(nil, "ed", "key"); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("ValidateEditorCredentials = %v", err)
	}
	if err := CreateEditor(nil, "ed", "Ed", "key", nil); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("CreateEditor = %v", err)
	}
	if err := LogEditorAction(nil, "ed", "", "", "save", nil, true); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("LogEditorAction = %v", err)
	}
}
