package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a configuration file.
type Format int

// Formats understood by the loaders.
const (
	TOML Format = iota
	YAML
)

const (
	errMsgInvalidConfigFile = "config: Failed to load config file"
)

// FormatOf picks the format from the file extension, toml is the default.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return YAML
	}
	return TOML
}

// FromFile loads and validates a configuration file.
func FromFile(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}
	defer file.Close()

	c, err := FromReader(file, FormatOf(filename))
	if err != nil {
		return nil, err
	}
	c.filename = filename
	return c, nil
}

// FromReader decodes a configuration. It is not validated since the
// environment may still change it.
func FromReader(reader io.Reader, format Format) (*Config, error) {
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}

	c := NewConfig()
	switch format {
	case YAML:
		err = yaml.Unmarshal(buf, c)
	default:
		_, err = toml.Decode(string(buf), c)
	}
	if err != nil {
		return nil, errors.Wrap(err, errMsgInvalidConfigFile)
	}

	for name, net := range c.Networks {
		if net == nil {
			net = &Network{}
			c.Networks[name] = net
		}
		net.Name = name
	}
	return c, nil
}

// ToWriter writes a config out to a writer
func ToWriter(c *Config, writer io.Writer, format Format) error {
	var err error
	buf := &bytes.Buffer{}
	switch format {
	case YAML:
		enc := yaml.NewEncoder(buf)
		err = enc.Encode(c)
		enc.Close()
	default:
		err = toml.NewEncoder(buf).Encode(c)
	}
	if err != nil {
		return errors.Wrap(err, "config: encode")
	}

	_, err = writer.Write(buf.Bytes())
	return errors.Wrap(err, "config: write")
}
