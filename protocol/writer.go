package protocol

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrEmptyCommand     = errors.New("Command is empty, there is nothing to send")
	ErrMultilineCommand = errors.New("Command is malformed, it contains a line break")

	// ClassicPreamble selects the chat gateway on a classic server
	ClassicPreamble = []byte{0x03, 0x04}

	// Init6Preamble selects the init6 chat protocol
	Init6Preamble = "C1"
)

// WriteCommand writes a single outbound chat line, e.g. "/friends list".
func WriteCommand(w io.Writer, command string) error {
	if strings.TrimSpace(command) == "" {
		return ErrEmptyCommand
	}

	if strings.ContainsAny(command, "\r\n") {
		return fmt.Errorf("Failed to write '%s': %w", command, ErrMultilineCommand)
	}

	_, err := io.WriteString(w, command+Terminal)
	return err
}

// WriteLines writes each line followed by a terminator in a single write.
func WriteLines(w io.Writer, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}

	b := strings.Join(lines, Terminal) + Terminal

	_, err := io.WriteString(w, b)
	return err
}

// WriteClassicLogin writes the classic gateway login.
func WriteClassicLogin(w io.Writer, username, password string) error {
	return WriteLines(w, string(ClassicPreamble)+username, password)
}

// WriteInit6Login writes the init6 login sequence. home may be empty.
func WriteInit6Login(w io.Writer, username, password, home string) error {
	lines := []string{
		Init6Preamble,
		"ACCT " + username,
		"PASS " + password,
	}

	if home != "" {
		lines = append(lines, "HOME "+home)
	}

	lines = append(lines, "LOGIN")

	return WriteLines(w, lines...)
}
