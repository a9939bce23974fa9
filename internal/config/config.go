// Package config loads run defaults — which variant, word width, and
// memory-protection mode to use — from an optional .env file ahead of
// flag parsing, grounded on the pack's godotenv.Load() idiom
// (bitbucket-api, googledrive's main.go). The CLI uses only
// ProtectMemory, as the default of its --protect-memory/-m flag; the
// CLI has no variant or width flags, and Variant, WordBits and
// AddressBits are not read by the CLI or the loader, which take those
// settings from each program's own directives.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults holds the variant/width/protection settings read from the
// environment. Of these, the CLI consumes only ProtectMemory.
type Defaults struct {
	Variant       string
	WordBits      int
	AddressBits   int
	ProtectMemory bool
}

// Load reads .env (if present — a missing file is not an error, exactly
// as godotenv.Load's callers in the pack treat it) and returns the
// defaults it describes, falling back to the package's own built-in
// defaults for anything unset.
func Load() Defaults {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using built-in defaults")
	}

	d := Defaults{
		Variant:       "mm-2",
		WordBits:      16,
		AddressBits:   8,
		ProtectMemory: false,
	}

	if v := os.Getenv("MM_VARIANT"); v != "" {
		d.Variant = v
	}
	if v := os.Getenv("MM_WORD_BITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			d.WordBits = n
		}
	}
	if v := os.Getenv("MM_ADDRESS_BITS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			d.AddressBits = n
		}
	}
	if v := os.Getenv("MM_PROTECT_MEMORY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			d.ProtectMemory = b
		}
	}

	return d
}
