package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func withStdin(t *testing.T, content string, fn func()) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteString(content); err != nil {
		t.Fatal(err)
	}
	w.Close()

	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()

	fn()
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return string(buf[:n])
}

func TestInsertThenGet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	withStdin(t, `{"id":"u1","name":"ada"}`, func() {
		if err := cmdInsert([]string{"--file", dbPath, "users"}); err != nil {
			t.Fatalf("cmdInsert: %v", err)
		}
	})

	out := captureStdout(t, func() {
		if err := cmdGet([]string{"--file", dbPath, "--format", "json", "users", "u1"}); err != nil {
			t.Fatalf("cmdGet: %v", err)
		}
	})

	if !strings.Contains(out, `"name":"ada"`) {
		t.Errorf("stdout = %q, want it to contain the stored payload", out)
	}
}

func TestGetMissingIDFails(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	withStdin(t, `{"id":"u1"}`, func() {
		if err := cmdInsert([]string{"--file", dbPath, "users"}); err != nil {
			t.Fatalf("cmdInsert: %v", err)
		}
	})

	err := cmdGet([]string{"--file", dbPath, "users", "does-not-exist"})
	if err == nil {
		t.Fatal("expected cmdGet to fail for a missing id")
	}
}

func TestListShowsInsertedCollection(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	withStdin(t, `{"id":"u1"}`, func() {
		if err := cmdInsert([]string{"--file", dbPath, "users"}); err != nil {
			t.Fatal(err)
		}
	})

	out := captureStdout(t, func() {
		if err := cmdList([]string{"--file", dbPath}); err != nil {
			t.Fatalf("cmdList: %v", err)
		}
	})

	if !strings.Contains(out, "users") {
		t.Errorf("list output = %q, want it to mention users", out)
	}
}
