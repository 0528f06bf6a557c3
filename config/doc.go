// Package config loads and validates gateway configuration.
//
// Configuration is layered: built-in defaults, an optional YAML config
// file, then EMBEDGATE_-prefixed environment variables. All layers are
// merged through viper and decoded into a typed Config, which is
// validated before use. Construction fails fast on an invalid value; a
// gateway never starts with a zero-capacity cache or a negative window.
package config
