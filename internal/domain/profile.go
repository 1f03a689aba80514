package domain

import (
	"fmt"
	"strings"
	"time"
)

type ProfileName string

// Profile is a saved set of chat parameters, so a session can be started by
// name instead of repeating every flag.
type Profile struct {
	Name      ProfileName
	Params    ChatParams
	UpdatedAt time.Time
}

func (p Profile) Validate() error {
	if strings.TrimSpace(string(p.Name)) == "" {
		return fmt.Errorf("profile name is required")
	}
	if strings.ContainsAny(string(p.Name), " \t\n/") {
		return fmt.Errorf("profile name %q must not contain whitespace or '/'", p.Name)
	}

	return p.Params.Validate()
}
