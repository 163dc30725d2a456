package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lawvn/lawfetch/internal/model"
)

func TestSafeTitle(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"plain ascii", "Traffic Law 2023", "Traffic_Law_2023"},
		{"vietnamese diacritics", "Luật Giao Thông 2023", "Luat_Giao_Thong_2023"},
		{"d with stroke", "Nghị định 100/2019", "Nghi_dinh_1002019"},
		{"punctuation dropped", "Thông tư số 32/2023/TT-BCA", "Thong_tu_so_322023TT_BCA"},
		{"mixed separators", "Văn  bản -- hợp nhất", "Van_ban_hop_nhat"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SafeTitle(tt.title)
			if result != tt.expected {
				t.Errorf("SafeTitle(%q) = %q, expected %q", tt.title, result, tt.expected)
			}
		})
	}
}

func TestSafeTitle_Truncation(t *testing.T) {
	long := strings.Repeat("a", 200)
	result := SafeTitle(long)
	if len([]rune(result)) != MaxStemLength {
		t.Errorf("Expected stem truncated to %d runes, got %d", MaxStemLength, len([]rune(result)))
	}
}

func TestURLHash(t *testing.T) {
	hash := URLHash("https://x/a")
	if hash != "3a1b40c4" {
		t.Errorf("URLHash = %s, expected 3a1b40c4", hash)
	}
	if len(hash) != HashLength {
		t.Errorf("Expected hash length %d, got %d", HashLength, len(hash))
	}

	// Distinct URLs must hash differently.
	if URLHash("https://x/a") == URLHash("https://x/b") {
		t.Error("Different URLs should produce different hashes")
	}

	// Deterministic across calls.
	if URLHash("https://x/a") != hash {
		t.Error("URLHash should be deterministic")
	}
}

func TestBaseName(t *testing.T) {
	name := BaseName("Luật Giao Thông 2023", "https://x/a")
	if name != "Luat_Giao_Thong_2023_3a1b40c4" {
		t.Errorf("BaseName = %s, expected Luat_Giao_Thong_2023_3a1b40c4", name)
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name     string
		kind     model.ArtifactKind
		expected string
	}{
		{"pdf", model.KindPDF, "Luat_Giao_Thong_2023_3a1b40c4.pdf"},
		{"docx", model.KindDOCX, "Luat_Giao_Thong_2023_3a1b40c4.docx"},
		{"zip", model.KindZIP, "Luat_Giao_Thong_2023_3a1b40c4.zip"},
		{"unknown defaults to pdf", model.KindUnknown, "Luat_Giao_Thong_2023_3a1b40c4.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := ArtifactPath("out", "Luật Giao Thông 2023", "https://x/a", tt.kind)
			expected := filepath.Join("out", tt.expected)
			if path != expected {
				t.Errorf("ArtifactPath = %s, expected %s", path, expected)
			}
		})
	}
}

func TestCandidatePaths(t *testing.T) {
	paths := CandidatePaths("out", "Doc", "https://x/a")

	if len(paths) != len(model.KnownExtensions()) {
		t.Fatalf("Expected %d candidate paths, got %d", len(model.KnownExtensions()), len(paths))
	}
	// PDF is the most common format and must be probed first.
	if !strings.HasSuffix(paths[0], ".pdf") {
		t.Errorf("First candidate should be .pdf, got %s", paths[0])
	}
	for i, ext := range model.KnownExtensions() {
		if !strings.HasSuffix(paths[i], ext) {
			t.Errorf("Candidate %d: expected suffix %s, got %s", i, ext, paths[i])
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Error("Expected directory to exist after EnsureDir")
	}

	// Second call on an existing directory is a no-op.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if size := FileSize(path); size != 16 {
		t.Errorf("Expected size 16, got %d", size)
	}
	if size := FileSize(filepath.Join(dir, "missing.pdf")); size != -1 {
		t.Errorf("Expected -1 for missing file, got %d", size)
	}
	if size := FileSize(dir); size != -1 {
		t.Errorf("Expected -1 for directory, got %d", size)
	}
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "doc.docx")
	if err := os.WriteFile(docx, []byte("PK\x03\x04"), 0o644); err != nil {
		t.Fatal(err)
	}

	candidates := []string{
		filepath.Join(dir, "doc.pdf"),
		docx,
		filepath.Join(dir, "doc.zip"),
	}
	if found := FirstExisting(candidates); found != docx {
		t.Errorf("Expected %s, got %s", docx, found)
	}

	if found := FirstExisting([]string{filepath.Join(dir, "nope")}); found != "" {
		t.Errorf("Expected empty string for no match, got %s", found)
	}
}

func TestRemoveQuiet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "partial.pdf.part")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	RemoveQuiet(path)
	if FileExists(path) {
		t.Error("Expected file removed")
	}

	// Removing a missing file must not panic.
	RemoveQuiet(path)
}
