package history

import (
	"encoding/json"
	"testing"
)

func TestCommitAndList(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Commit(json.RawMessage(`{"personalInfo":{"name":"Ada"}}`), "ada", "Publish configuration")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Hash == "" {
		t.Fatal("expected commit hash")
	}

	second, err := svc.Commit(json.RawMessage(`{"personalInfo":{"name":"Grace"}}`), "grace", "Publish configuration")
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}

	revisions, err := svc.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].Hash != second.Hash {
		t.Errorf("expected newest first, got %s", revisions[0].Hash)
	}
	if revisions[1].Author != "ada" {
		t.Errorf("expected author ada, got %q", revisions[1].Author)
	}
}

func TestListEmptyRepo(t *testing.T) {
	svc := New(t.TempDir())
	revisions, err := svc.List(10)
	if err != nil {
		t.Fatalf("list on empty dir: %v", err)
	}
	if len(revisions) != 0 {
		t.Errorf("expected no revisions, got %d", len(revisions))
	}
}

func TestShowReturnsHistoricContent(t *testing.T) {
	svc := New(t.TempDir())

	first, err := svc.Commit(json.RawMessage(`{"personalInfo":{"name":"Ada"},"projects":[]}`), "ada", "v1")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if _, err := svc.Commit(json.RawMessage(`{"personalInfo":{"name":"Grace"},"projects":[]}`), "ada", "v2"); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	raw, rev, err := svc.Show(first.Hash)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if rev.Message != "v1" {
		t.Errorf("expected message v1, got %q", rev.Message)
	}
	var doc struct {
		PersonalInfo struct {
			Name string `json:"name"`
		} `json:"personalInfo"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode historic content: %v", err)
	}
	if doc.PersonalInfo.Name != "Ada" {
		t.Errorf("expected historic name Ada, got %q", doc.PersonalInfo.Name)
	}
}

func TestCommitLimit(t *testing.T) {
	svc := New(t.TempDir())
	for i := 0; i < 3; i++ {
		if _, err := svc.Commit(json.RawMessage(`{}`), "ada", "publish"); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}
	revisions, err := svc.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(revisions) != 2 {
		t.Errorf("expected limit of 2, got %d", len(revisions))
	}
}
