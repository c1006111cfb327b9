package link

import (
	"context"
	"fmt"
	"net/url"
)

const URITypeID = "uri"

// URI links to a web page or any other absolute URI.
type URI struct {
	uri     string
	title   string
	command string
}

func URIType(command string) Type {
	return Type{
		ID:          URITypeID,
		Name:        "URI",
		Description: "A URI of a file or web page.",
		Icon:        "web",
		Value:       Field{Label: "URI", Visible: true, Required: true},
		Value2:      Field{Label: "Title", Visible: true},
		New: func(value, value2 string) (Link, error) {
			u, err := url.Parse(value)
			if err != nil || !u.IsAbs() {
				return nil, fmt.Errorf("%w: %q is not an absolute URI", ErrInvalidValue, value)
			}
			return &URI{uri: u.String(), title: value2, command: command}, nil
		},
	}
}

func (u *URI) Type() Type { return URIType(u.command) }

func (u *URI) URI() string { return u.uri }

func (u *URI) Title() string { return u.title }

func (u *URI) FormatValue() string {
	if u.title != "" {
		return u.title
	}
	return u.uri
}

func (u *URI) Values() (string, string) {
	return u.uri, u.title
}

func (u *URI) View(ctx context.Context, l Launcher) error {
	if err := l.Launch(ctx, u.command, u.uri); err != nil {
		return fmt.Errorf("error opening URI: %w", err)
	}
	return nil
}
