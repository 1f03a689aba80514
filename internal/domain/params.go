package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const DefaultPollInterval = 5 * time.Second

// ChatParams holds everything needed to open one chat session against a
// SocialMiner/UCCX gateway.
type ChatParams struct {
	// Form is the chat form identifier configured on the gateway (>= 100000 in practice).
	Form int
	// URLBase is the gateway base address, e.g. https://sm.example.com/ccp.
	URLBase string
	// CSQ is the contact service queue tag the chat is routed to.
	CSQ           string
	Title         string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Author        string

	PollInterval     time.Duration
	IncludeOwnEvents bool
}

func (p ChatParams) Validate() error {
	if p.Form < 1 {
		return fmt.Errorf("%w: form is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.URLBase) == "" {
		return fmt.Errorf("%w: url base is required", ErrInvalidParams)
	}
	parsed, err := url.Parse(p.URLBase)
	if err != nil {
		return fmt.Errorf("%w: parse url base: %v", ErrInvalidParams, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: url base must use http or https", ErrInvalidParams)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: url base host is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.CSQ) == "" {
		return fmt.Errorf("%w: csq is required", ErrInvalidParams)
	}
	if p.PollInterval < 0 {
		return fmt.Errorf("%w: poll interval must not be negative", ErrInvalidParams)
	}

	return nil
}

// WithDefaults fills the display fields the way the gateway form expects:
// the customer name falls back to the title and the author to the customer name.
func (p ChatParams) WithDefaults() ChatParams {
	p.URLBase = strings.TrimRight(strings.TrimSpace(p.URLBase), "/")
	if p.CustomerName == "" {
		p.CustomerName = p.Title
	}
	if p.Author == "" {
		p.Author = p.CustomerName
	}
	if p.PollInterval == 0 {
		p.PollInterval = DefaultPollInterval
	}

	return p
}
