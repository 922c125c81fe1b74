// Package config loads and validates application configuration.
//
// Values come from, in increasing precedence: built-in defaults, an
// optional config.yaml, a .env file, and STUDYTRACK_-prefixed environment
// variables (database.url becomes STUDYTRACK_DATABASE_URL). The result is
// validated with go-playground/validator struct tags before use.
package config
