package filetype

import "testing"

func TestForFilename(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	tests := []struct {
		name string
		file string
		want string
	}{
		{name: "pdf", file: "report.pdf", want: "pdf"},
		{name: "uppercase extension", file: "PHOTO.JPG", want: "image"},
		{name: "docx", file: "notes.docx", want: "doc"},
		{name: "spreadsheet", file: "budget.xlsx", want: "xlsx"},
		{name: "unknown extension", file: "binary.xyz", want: Other},
		{name: "no extension", file: "README", want: Other},
		{name: "dotfile", file: ".gitignore", want: Other},
		{name: "multiple dots", file: "backup.tar.zip", want: "zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.ForFilename(tt.file); got != tt.want {
				t.Errorf("ForFilename(%q) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}
