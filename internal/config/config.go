// Package config loads the optional web-garnish.toml file into a small
// toml-tagged struct.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// File is the shape of web-garnish.toml. Every field is optional; a
// missing file is not an error (Load returns a zero File).
type File struct {
	ServePath string     `toml:"serve_path"`
	LogLevel  string     `toml:"log_level"`
	HTTP      HTTPConfig `toml:"http"`
}

// HTTPConfig is the [http] table of web-garnish.toml.
type HTTPConfig struct {
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// Load reads path if it exists. A missing file returns a zero File and a
// nil error; any other read or parse failure is returned.
func Load(path string) (File, error) {
	var f File
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return f, nil
	}
	_, err := toml.DecodeFile(path, &f)
	return f, err
}

// Resolved holds the final values for the settings that can come from a
// flag, an environment variable, or the config file, in that precedence
// order (flag wins, then env, then file, then the built-in default).
// CORSAllowedOrigins has no flag or environment-variable override; it comes
// from the file only, defaulting to a fully permissive "*".
type Resolved struct {
	ServePath          string
	LogLevel           string
	CORSAllowedOrigins []string
}

// Resolve applies the flag > env > file > default precedence described in
// the CLI's external interface.
func Resolve(flagServePath, flagLogLevel string, flagServePathSet, flagLogLevelSet bool, file File) Resolved {
	r := Resolved{ServePath: ".", LogLevel: "info", CORSAllowedOrigins: []string{"*"}}

	if file.ServePath != "" {
		r.ServePath = file.ServePath
	}
	if file.LogLevel != "" {
		r.LogLevel = file.LogLevel
	}
	if len(file.HTTP.CORSAllowedOrigins) > 0 {
		r.CORSAllowedOrigins = file.HTTP.CORSAllowedOrigins
	}

	if v := os.Getenv("WEB_GARNISH_SERVE_PATH"); v != "" {
		r.ServePath = v
	}
	if v := os.Getenv("WEB_GARNISH_LOG_LEVEL"); v != "" {
		r.LogLevel = v
	}

	if flagServePathSet {
		r.ServePath = flagServePath
	}
	if flagLogLevelSet {
		r.LogLevel = flagLogLevel
	}

	return r
}
