package cmd

import (
	"time"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/spf13/cobra"
)

// paramFlags are the chat parameter flags shared by "chat" and "profile save".
type paramFlags struct {
	urlBase          string
	form             int
	csq              string
	title            string
	customerName     string
	customerEmail    string
	customerPhone    string
	author           string
	pollInterval     time.Duration
	includeOwnEvents bool
}

func (f *paramFlags) register(cmd *cobra.Command, defaultURLBase string) {
	flags := cmd.Flags()
	flags.StringVar(&f.urlBase, "url-base", defaultURLBase, "gateway base URL, e.g. https://sm.example.com/ccp (env UCCX_URL_BASE)")
	flags.IntVar(&f.form, "form", 0, "chat form ID configured on the gateway")
	flags.StringVar(&f.csq, "csq", "", "contact service queue tag")
	flags.StringVar(&f.title, "title", "", "chat title shown to the agent")
	flags.StringVar(&f.customerName, "name", "", "customer name (defaults to the title)")
	flags.StringVar(&f.customerEmail, "email", "", "customer email")
	flags.StringVar(&f.customerPhone, "phone", "", "customer phone number")
	flags.StringVar(&f.author, "author", "", "message author (defaults to the customer name)")
	flags.DurationVar(&f.pollInterval, "interval", domain.DefaultPollInterval, "event poll interval")
	flags.BoolVar(&f.includeOwnEvents, "include-own", false, "also receive the customer's own events")
}

// apply overlays explicitly set flags onto base. With an empty base every
// flag value is taken, defaults included.
func (f *paramFlags) apply(cmd *cobra.Command, base domain.ChatParams, fromProfile bool) domain.ChatParams {
	changed := func(name string) bool {
		return !fromProfile || cmd.Flags().Changed(name)
	}

	if changed("url-base") && f.urlBase != "" {
		base.URLBase = f.urlBase
	}
	if changed("form") {
		base.Form = f.form
	}
	if changed("csq") {
		base.CSQ = f.csq
	}
	if changed("title") {
		base.Title = f.title
	}
	if changed("name") {
		base.CustomerName = f.customerName
	}
	if changed("email") {
		base.CustomerEmail = f.customerEmail
	}
	if changed("phone") {
		base.CustomerPhone = f.customerPhone
	}
	if changed("author") {
		base.Author = f.author
	}
	if changed("interval") {
		base.PollInterval = f.pollInterval
	}
	if changed("include-own") {
		base.IncludeOwnEvents = f.includeOwnEvents
	}

	return base
}
