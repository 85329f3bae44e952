// Package users resolves display names for the user ids attached to alerts.
//
// There is no identity store yet. Placeholder answers every id with one fixed
// name; a real directory can replace it without touching alert creation.
package users

import (
	"context"
	"strings"
)

// DefaultPlaceholderName is the name reported for every user by Placeholder.
const DefaultPlaceholderName = "UsuárioFixo"

type Directory interface {
	DisplayName(ctx context.Context, userID int64) (string, error)
}

type Placeholder struct {
	name string
}

func NewPlaceholder(name string) *Placeholder {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlaceholderName
	}
	return &Placeholder{name: name}
}

func (p *Placeholder) DisplayName(context.Context, int64) (string, error) {
	return p.name, nil
}
