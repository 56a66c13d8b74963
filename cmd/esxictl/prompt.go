package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// confirm asks before a destructive host operation. --yes skips the prompt;
// without a terminal the operation is refused.
func confirm(msg string) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, &userError{msg: "confirmation required but stdin is not a terminal", hint: "re-run with --yes"}
	}
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// readPassword reads a password without echoing. Returns empty string if blank.
func readPassword(field string) string {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ""
	}
	fmt.Fprintf(os.Stderr, "  %s: ", field)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(pw)
}

// parseOptionValue converts a command line value into the type an advanced option expects:
// integers become int64, true/false become bool, anything else stays a string.
func parseOptionValue(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// parseAssignments parses NAME=VALUE arguments.
func parseAssignments(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &userError{msg: fmt.Sprintf("invalid option assignment %q", a), hint: "use NAME=VALUE, e.g. Annotations.WelcomeMessage=hello"}
		}
		out[strings.TrimSpace(name)] = parseOptionValue(value)
	}
	return out, nil
}
