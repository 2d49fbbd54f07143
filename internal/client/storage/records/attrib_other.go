//go:build !windows

package records

// На unix-системах файлы лежат в dot-каталоге, отдельный атрибут не нужен.

func hide(string) error { return nil }

func unhide(string) error { return nil }
