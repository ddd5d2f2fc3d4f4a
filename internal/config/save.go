package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/memo/internal/logging"
	"github.com/amirbrooks/memo/internal/store"
)

// Set validates value for key, writes it to the loaded config file (or
// DefaultFile when none was loaded) and updates c. It returns the file
// written. Other keys already in the file are preserved.
func (c *Config) Set(key, value string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	next := *c
	var stored any
	switch key {
	case "path":
		if value == "" {
			return "", fmt.Errorf("%w: path is empty", ErrInvalid)
		}
		next.Path, stored = value, value
	case "temp_path":
		if isNone(value) {
			value = ""
		}
		next.TempPath, stored = value, value
	case "confirm_delete_all":
		b, ok := parseBool(value)
		if !ok {
			return "", fmt.Errorf("%w: confirm_delete_all: %q", ErrInvalid, value)
		}
		next.ConfirmDelete, stored = b, b
	case "auto_done_before":
		if isNone(value) {
			value = ""
		} else if _, err := store.ParseDate(value); err != nil {
			return "", fmt.Errorf("%w: auto_done_before: %v", ErrInvalid, err)
		}
		next.AutoDoneBefore, stored = value, value
	case "auto_done_days":
		n, err := parseDays(value)
		if err != nil {
			return "", err
		}
		next.AutoDoneDays, stored = n, n
	case "log.level":
		if _, err := logging.ParseLevel(value); err != nil {
			return "", fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
		}
		next.Log.Level, stored = strings.ToLower(value), strings.ToLower(value)
	default:
		return "", fmt.Errorf("%w: unknown key %q (allowed: %s)", ErrInvalid, key, strings.Join(Keys, ", "))
	}
	if err := next.validate(); err != nil {
		return "", err
	}

	path := c.file
	if path == "" {
		path = DefaultFile()
	}
	doc, err := readYAML(path)
	if err != nil {
		return "", err
	}
	setNested(doc, strings.Split(key, "."), stored)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := atomicWriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}

	next.file = path
	*c = next
	return path, nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func readYAML(path string) (map[string]any, error) {
	doc := map[string]any{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalid, path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func setNested(doc map[string]any, path []string, value any) {
	for _, k := range path[:len(path)-1] {
		child, ok := doc[k].(map[string]any)
		if !ok {
			child = map[string]any{}
			doc[k] = child
		}
		doc = child
	}
	doc[path[len(path)-1]] = value
}

func atomicWriteFile(path string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".tmp-%d", time.Now().UnixNano()))
	if err := os.WriteFile(tmp, data, perm); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
