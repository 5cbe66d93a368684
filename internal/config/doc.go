// Package config defines the application's configuration structure and loading.
package config
