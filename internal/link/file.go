package link

import (
	"context"
	"fmt"
	"path/filepath"
)

const FileTypeID = "file"

// File links to a file on the local disk.
type File struct {
	path    string
	command string
}

func FileType(command string) Type {
	return Type{
		ID:          FileTypeID,
		Name:        "File",
		Description: "An attached file.",
		Icon:        "document",
		Value:       Field{Label: "Path", Visible: true, Required: true},
		Value2:      Field{Label: "", Visible: false},
		New: func(value, _ string) (Link, error) {
			path, err := filepath.Abs(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidValue, value)
			}
			return &File{path: path, command: command}, nil
		},
	}
}

func (f *File) Type() Type { return FileType(f.command) }

func (f *File) Path() string { return f.path }

func (f *File) FormatValue() string {
	return filepath.Base(f.path)
}

func (f *File) Values() (string, string) {
	return f.path, ""
}

func (f *File) View(ctx context.Context, l Launcher) error {
	if err := l.Launch(ctx, f.command, f.path); err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	return nil
}
