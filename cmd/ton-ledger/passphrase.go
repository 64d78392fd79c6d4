package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const passphraseEnv = "TONLEDGER_PASSPHRASE"

// readPassphrase reads a passphrase from the terminal without echo, or from
// TONLEDGER_PASSPHRASE when it is set.
func readPassphrase(prompt string) (string, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		return p, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.Errorf("no terminal to read the passphrase from, set %s", passphraseEnv)
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrap(err, "failed to read passphrase from terminal")
	}

	return string(raw), nil
}

func readNewPassphrase() (string, error) {
	if p, ok := os.LookupEnv(passphraseEnv); ok {
		return p, nil
	}

	first, err := readPassphrase("New passphrase: ")
	if err != nil {
		return "", err
	}

	second, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return "", err
	}

	if first != second {
		return "", errors.New("passphrases do not match")
	}

	return first, nil
}
