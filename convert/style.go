package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// StylesheetName is the name of the optional stylesheet file looked up next
// to the executable.
const StylesheetName = "style.css"

// LoadStylesheet reads the optional stylesheet that sits in the same
// directory as the running executable. A missing stylesheet is not an
// error: conversion simply proceeds without style injection. Any other
// read failure is reported.
func LoadStylesheet() ([]byte, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, nil
	}

	css, err := os.ReadFile(filepath.Join(filepath.Dir(exe), StylesheetName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}

	return css, nil
}
