package toml

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Profiles []profileSchema `toml:"profiles"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported profiles schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type profileSchema struct {
	Name      string         `toml:"name"`
	Gateway   gatewaySchema  `toml:"gateway"`
	Customer  customerSchema `toml:"customer"`
	Polling   pollingSchema  `toml:"polling,omitempty"`
	UpdatedAt string         `toml:"updated_at,omitempty"`
}

type gatewaySchema struct {
	URLBase string `toml:"url_base"`
	Form    int    `toml:"form"`
	CSQ     string `toml:"csq"`
}

type customerSchema struct {
	Title  string `toml:"title"`
	Name   string `toml:"name,omitempty"`
	Email  string `toml:"email,omitempty"`
	Phone  string `toml:"phone,omitempty"`
	Author string `toml:"author,omitempty"`
}

type pollingSchema struct {
	Interval         string `toml:"interval,omitempty"`
	IncludeOwnEvents bool   `toml:"include_own_events,omitempty"`
}
