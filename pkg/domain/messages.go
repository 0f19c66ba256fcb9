package domain

import "strings"

// Messages is the catalog of bot texts. Placeholders use the {name} form.
type Messages struct {
	Ready          string `json:"ready" yaml:"ready" mapstructure:"ready"`
	Welcome        string `json:"welcome" yaml:"welcome" mapstructure:"welcome"`
	GreetingPrompt string `json:"greeting_prompt" yaml:"greeting_prompt" mapstructure:"greeting_prompt"`
	PhoneRequest   string `json:"phone_request" yaml:"phone_request" mapstructure:"phone_request"`
	PhoneInvalid   string `json:"phone_invalid" yaml:"phone_invalid" mapstructure:"phone_invalid"`
	Thanks         string `json:"thanks" yaml:"thanks" mapstructure:"thanks"`
	NoInformation  string `json:"no_information" yaml:"no_information" mapstructure:"no_information"`
	NotUnderstood  string `json:"not_understood" yaml:"not_understood" mapstructure:"not_understood"`
	NoOptions      string `json:"no_options" yaml:"no_options" mapstructure:"no_options"`
	OptionDeadEnd  string `json:"option_dead_end" yaml:"option_dead_end" mapstructure:"option_dead_end"`
	AlreadyAtStart string `json:"already_at_start" yaml:"already_at_start" mapstructure:"already_at_start"`
	LoadFailure    string `json:"load_failure" yaml:"load_failure" mapstructure:"load_failure"`
}

// DefaultMessages returns the built-in catalog.
func DefaultMessages() Messages {
	return Messages{
		Ready:          "👋 The chat is ready. Please type 'Hi' or any greeting to start!",
		Welcome:        "Hey! Welcome to Emirates Aviation University. May I know your name please?",
		GreetingPrompt: "Please type a greeting to start the chat.",
		PhoneRequest:   "Nice to meet you, {name}! Please give me your phone number so EAU can contact you for your admission assistance.",
		PhoneInvalid:   "Please provide a valid phone number.",
		Thanks:         "Thank you, {name}!",
		NoInformation:  "Sorry, I don't have information on that.",
		NotUnderstood:  "Sorry, I couldn't understand that. Please select an option or try again.",
		NoOptions:      "Sorry, no options available at this level.",
		OptionDeadEnd:  "Sorry, this option has no further information.",
		AlreadyAtStart: "You're already at the starting point!",
		LoadFailure:    "Error loading chatbot. Please try again later.",
	}
}

// LoadFailureMessage is rendered by hosts when no tree could be loaded.
var LoadFailureMessage = DefaultMessages().LoadFailure

// Merge returns m with every non-empty field of override applied on top.
func (m Messages) Merge(override Messages) Messages {
	pick := func(base, over string) string {
		if over != "" {
			return over
		}
		return base
	}
	return Messages{
		Ready:          pick(m.Ready, override.Ready),
		Welcome:        pick(m.Welcome, override.Welcome),
		GreetingPrompt: pick(m.GreetingPrompt, override.GreetingPrompt),
		PhoneRequest:   pick(m.PhoneRequest, override.PhoneRequest),
		PhoneInvalid:   pick(m.PhoneInvalid, override.PhoneInvalid),
		Thanks:         pick(m.Thanks, override.Thanks),
		NoInformation:  pick(m.NoInformation, override.NoInformation),
		NotUnderstood:  pick(m.NotUnderstood, override.NotUnderstood),
		NoOptions:      pick(m.NoOptions, override.NoOptions),
		OptionDeadEnd:  pick(m.OptionDeadEnd, override.OptionDeadEnd),
		AlreadyAtStart: pick(m.AlreadyAtStart, override.AlreadyAtStart),
		LoadFailure:    pick(m.LoadFailure, override.LoadFailure),
	}
}

// Format substitutes {name} with the given user name.
func Format(template, name string) string {
	return strings.ReplaceAll(template, "{name}", name)
}
