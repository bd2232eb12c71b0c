// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/nutrismart-tui/internal/model"
)

func testTranscript() *Transcript {
	return &Transcript{
		Owner: "ada@example.com",
		Messages: []model.ChatMessage{
			{Role: model.RoleUser, Text: "what should I eat?", Timestamp: 1700000000000},
			{Role: model.RoleAssistant, Text: "Something iron-rich.", Timestamp: 1700000000001, RequiresAuth: true},
		},
	}
}

func TestMarkdownExport(t *testing.T) {
	content, err := NewMarkdownExporter(nil).Export(testTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	md := string(content)
	for _, want := range []string{
		"# NutriSmart Conversation",
		"### You",
		"### NutriSmart",
		"what should I eat?",
		"Something iron-rich.",
		"Sign in for personalized answers.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMarkdownExportEmptyTranscript(t *testing.T) {
	if _, err := NewMarkdownExporter(nil).Export(&Transcript{}); err == nil {
		t.Error("expected error for empty transcript")
	}
	if _, err := NewMarkdownExporter(nil).Export(nil); err == nil {
		t.Error("expected error for nil transcript")
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	content, err := NewJSONExporter().Export(testTranscript())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var decoded jsonTranscript
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded.Owner != "ada@example.com" {
		t.Errorf("wrong owner: %q", decoded.Owner)
	}
	if len(decoded.Messages) != 2 {
		t.Fatalf("wrong message count: %d", len(decoded.Messages))
	}
	if !decoded.Messages[1].RequiresAuth {
		t.Error("requires_auth flag lost in export")
	}
}

func TestExportToFileWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	opts := &Options{OutputDir: dir, IncludeTimestamps: false}

	path, err := ExportMarkdown(testTranscript(), opts)
	if err != nil {
		t.Fatalf("ExportMarkdown failed: %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("written outside output dir: %s", path)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "nutrismart_chat_") || !strings.HasSuffix(base, ".md") {
		t.Errorf("unexpected filename: %s", base)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}
