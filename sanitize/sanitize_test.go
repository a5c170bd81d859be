package sanitize

import "testing"

func TestFolderName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain address untouched",
			input: "alice@x.com",
			want:  "alice@x.com",
		},
		{
			name:  "display name with unsafe characters",
			input: `"Eve / Corp" <eve@x.com>`,
			want:  `_Eve _ Corp_ _eve@x.com_`,
		},
		{
			name:  "every unsafe character replaced",
			input: `<>:"/\|?*`,
			want:  "_________",
		},
		{
			name:  "newline preserved in folder names",
			input: "line1\nline2",
			want:  "line1\nline2",
		},
		{
			name:  "unicode untouched",
			input: "Grüße vom Büro",
			want:  "Grüße vom Büro",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FolderName(tt.input); got != tt.want {
				t.Errorf("FolderName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "safe subject untouched",
			input: "Weekly Report",
			want:  "Weekly Report",
		},
		{
			name:  "path separators replaced",
			input: `re: foo/bar\baz`,
			want:  "re_ foo_bar_baz",
		},
		{
			name:  "newline replaced in file names",
			input: "line1\nline2",
			want:  "line1_line2",
		},
		{
			name:  "carriage return preserved",
			input: "line1\rline2",
			want:  "line1\rline2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileName(tt.input); got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		`"Eve / Corp" <eve@x.com>`,
		"Subject: with * wildcards?",
		"multi\nline\nsubject",
		"already_clean",
	}

	for _, input := range inputs {
		once := FolderName(input)
		if twice := FolderName(once); twice != once {
			t.Errorf("FolderName not idempotent for %q: %q != %q", input, twice, once)
		}

		once = FileName(input)
		if twice := FileName(once); twice != once {
			t.Errorf("FileName not idempotent for %q: %q != %q", input, twice, once)
		}
	}
}
