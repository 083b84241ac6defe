package mysql

import "strings"

// dashIfEmpty isi placeholder "-" untuk kolom NOT NULL yang boleh
// datang kosong dari upload (filename, content type)
func dashIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// nullIfBlank simpan NULL untuk kolom nullable yang belum terisi,
// bukan placeholder string
func nullIfBlank(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
