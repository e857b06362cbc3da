package shared

import (
	"os"
	"path/filepath"
	"testing"

	tu "github.com/jackedtechbro/mbid-to-lidarr/internal/testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("produces valid unique ids", func(t *testing.T) {
		a := GenerateID()
		b := GenerateID()

		if a == b {
			t.Error("expected distinct ids")
		}
		if !IsMBID(a) {
			t.Errorf("expected generated id to be a valid uuid, got %s", a)
		}
	})
}

func TestIsMBID(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "canonical mbid",
			input: "5b11f4ce-a62d-471e-81fc-a69a8278c7da",
			want:  true,
		},
		{
			name:  "uppercase mbid",
			input: "5B11F4CE-A62D-471E-81FC-A69A8278C7DA",
			want:  true,
		},
		{
			name:  "arbitrary text",
			input: "nirvana",
			want:  false,
		},
		{
			name:  "truncated id",
			input: "5b11f4ce-a62d-471e",
			want:  false,
		},
		{
			name:  "empty string",
			input: "",
			want:  false,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMBID(tt.input); got != tt.want {
				t.Errorf("IsMBID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotenv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("expected no error for missing file, got %v", err)
		}
	})

	t.Run("loads variables from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		envPath := filepath.Join(tmpDir, ".env")

		content := "MBLI_TEST_VARIABLE=loaded_from_file\n"
		if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		if err := LoadDotenv(envPath); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer os.Unsetenv("MBLI_TEST_VARIABLE")

		if got := os.Getenv("MBLI_TEST_VARIABLE"); got != "loaded_from_file" {
			t.Errorf("expected variable loaded from file, got %q", got)
		}
	})

	t.Run("empty path means .env in the working directory", func(t *testing.T) {
		wd := tu.MustGetwd(t)
		defer tu.MustChdir(t, wd)
		tu.MustChdir(t, t.TempDir())

		content := "MBLI_TEST_DEFAULT_PATH=from_cwd\n"
		if err := os.WriteFile(".env", []byte(content), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		if err := LoadDotenv(""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer os.Unsetenv("MBLI_TEST_DEFAULT_PATH")

		if got := os.Getenv("MBLI_TEST_DEFAULT_PATH"); got != "from_cwd" {
			t.Errorf("expected variable loaded from default path, got %q", got)
		}
	})
}
