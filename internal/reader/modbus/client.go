// internal/reader/modbus/client.go
package modbus

import (
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/pkg/errors"
)

// Client wraps a goburrow RTU client behind the reader's Conn contract.
// The serial port is an exclusively-owned resource: one Client, one port.
type Client struct {
	handler *gomodbus.RTUClientHandler
	client  gomodbus.Client
}

// Config is the serial transport config. No negotiation; the baud rate must
// match the device's own setting.
type Config struct {
	Port     string
	BaudRate int
	SlaveID  uint8
	Timeout  time.Duration
}

// New opens the serial port and returns a connected RTU client.
func New(cfg Config) (*Client, error) {
	if cfg.Port == "" {
		return nil, errors.New("modbus client: serial port required")
	}

	handler := gomodbus.NewRTUClientHandler(cfg.Port)
	handler.BaudRate = cfg.BaudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = cfg.SlaveID
	handler.Timeout = cfg.Timeout

	if err := handler.Connect(); err != nil {
		return nil, errors.Wrapf(err, "modbus client: open %s", cfg.Port)
	}

	return &Client{handler: handler, client: gomodbus.NewClient(handler)}, nil
}

// ---- reader.Conn interface ----

func (c *Client) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	return c.client.ReadHoldingRegisters(address, quantity)
}

func (c *Client) ReadInputRegisters(address, quantity uint16) ([]byte, error) {
	return c.client.ReadInputRegisters(address, quantity)
}

// Close releases the serial port.
func (c *Client) Close() error {
	if c == nil || c.handler == nil {
		return nil
	}
	return c.handler.Close()
}
