package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Link mode values for the command link.
const (
	// LinkTCP serves the command protocol over a framed TCP connection.
	LinkTCP = "tcp"
	// LinkMQTT exchanges command and response frames over MQTT topics.
	LinkMQTT = "mqtt"
	// LinkOff disables the command link entirely.
	LinkOff = "off"
)

// Clock source values.
const (
	// ClockSystem reads the host wall clock.
	ClockSystem = "system"
	// ClockDS3231 reads a DS3231 RTC over the I2C character device.
	ClockDS3231 = "ds3231"
)

// Config holds the runtime settings of the alarm clock daemon.
type Config struct {
	// ListenAddress is the TCP address the command link listens on.
	ListenAddress string `yaml:"listen_addr"`
	// AlarmsFile is the path to the JSON file storing the alarm list.
	AlarmsFile string `yaml:"alarms_file"`
	// Link selects the command link: tcp, mqtt or off.
	Link string `yaml:"link"`
	// ClockSource selects the clock collaborator: system or ds3231.
	ClockSource string `yaml:"clock_source"`
	// I2CDevice is the I2C character device the DS3231 hangs off.
	I2CDevice string `yaml:"i2c_device"`
	// TickInterval is the cadence of the alarm evaluation loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// BackoffInterval replaces TickInterval after repeated clock read failures.
	BackoffInterval time.Duration `yaml:"backoff_interval"`

	// MQTTBroker is the broker URL used when Link is mqtt.
	MQTTBroker string `yaml:"mqtt_broker"`
	// MQTTCommandTopic carries inbound command frames.
	MQTTCommandTopic string `yaml:"mqtt_command_topic"`
	// MQTTResponseTopic carries outbound response frames.
	MQTTResponseTopic string `yaml:"mqtt_response_topic"`

	// GPIOChip names the GPIO character device chip for the motor and the
	// cancel button. Empty disables both.
	GPIOChip string `yaml:"gpio_chip"`
	// MotorForwardPin and MotorReversePin are the motor direction lines.
	MotorForwardPin int `yaml:"motor_forward_pin"`
	MotorReversePin int `yaml:"motor_reverse_pin"`
	// ButtonPin is the hold-to-cancel button line.
	ButtonPin int `yaml:"button_pin"`
	// ButtonHold is how long the button must stay pressed to cancel a
	// running alarm pattern.
	ButtonHold time.Duration `yaml:"button_hold"`
}

const (
	// DefaultConfigFilename is the default filename for daemon settings.
	DefaultConfigFilename = "alarm-clock-settings.yaml"

	// DefaultAlarmsFilename is the default filename for the alarm list JSON.
	DefaultAlarmsFilename = "alarms.json"

	// DefaultListenAddress is the default command link listen address.
	DefaultListenAddress = "127.0.0.1:7600"

	// DefaultTickInterval is the normal evaluation cadence.
	DefaultTickInterval = 1 * time.Second

	// DefaultBackoffInterval is the degraded cadence after repeated clock
	// read failures.
	DefaultBackoffInterval = 5 * time.Second

	// DefaultButtonHold is the default hold-to-cancel duration.
	DefaultButtonHold = 5 * time.Second

	// DefaultI2CDevice is where a DS3231 usually shows up on a Pi.
	DefaultI2CDevice = "/dev/i2c-1"

	// DefaultMQTTCommandTopic and DefaultMQTTResponseTopic are the default
	// MQTT frame topics.
	DefaultMQTTCommandTopic  = "home/alarm-clock/command"
	DefaultMQTTResponseTopic = "home/alarm-clock/response"

	// DefaultFilePermissions is the default file permission for config and
	// state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLink is returned for an unrecognized link mode.
	errUnknownLink = errors.New("link must be tcp, mqtt or off")
	// errUnknownClockSource is returned for an unrecognized clock source.
	errUnknownClockSource = errors.New("clock_source must be system or ds3231")
	// errBrokerRequired is returned when the MQTT link has no broker URL.
	errBrokerRequired = errors.New("mqtt_broker must be provided for the mqtt link")
)

// Default returns a configuration with every field at its default value.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential
// fields. A missing file yields the defaults rather than an error, so the
// daemon runs out of the box.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks the remaining fields for
// consistency.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	switch cfg.Link {
	case LinkTCP:
		if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
			return fmt.Errorf("invalid listen address: %w", err)
		}
	case LinkMQTT:
		if cfg.MQTTBroker == "" {
			return errBrokerRequired
		}

		if _, err := url.Parse(cfg.MQTTBroker); err != nil {
			return fmt.Errorf("invalid mqtt broker URL: %w", err)
		}
	case LinkOff:
	default:
		return errUnknownLink
	}

	switch cfg.ClockSource {
	case ClockSystem, ClockDS3231:
	default:
		return errUnknownClockSource
	}

	return nil
}

// applyDefaults sets every empty field to its default value.
func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if cfg.AlarmsFile == "" {
		cfg.AlarmsFile = DefaultAlarmsFilename
	}

	if cfg.Link == "" {
		cfg.Link = LinkTCP
	}

	if cfg.ClockSource == "" {
		cfg.ClockSource = ClockSystem
	}

	if cfg.I2CDevice == "" {
		cfg.I2CDevice = DefaultI2CDevice
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.BackoffInterval <= 0 {
		cfg.BackoffInterval = DefaultBackoffInterval
	}

	if cfg.ButtonHold <= 0 {
		cfg.ButtonHold = DefaultButtonHold
	}

	if cfg.MQTTCommandTopic == "" {
		cfg.MQTTCommandTopic = DefaultMQTTCommandTopic
	}

	if cfg.MQTTResponseTopic == "" {
		cfg.MQTTResponseTopic = DefaultMQTTResponseTopic
	}
}
