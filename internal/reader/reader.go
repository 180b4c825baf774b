// internal/reader/reader.go
package reader

import (
	"errors"
	"fmt"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

// Conn abstracts the Modbus operations the reader needs. Register payloads
// come back as raw big-endian bytes, the way goburrow hands them over.
type Conn interface {
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error) // FC 3
	ReadInputRegisters(address, quantity uint16) ([]byte, error)   // FC 4
	Close() error
}

// Factory creates a connected Conn. ONE attempt per call.
type Factory func() (Conn, error)

// CommError marks a transport-level failure: dead serial link, timeout, or a
// Modbus exception from the slave. Transient; scoped to one poll cycle.
type CommError struct {
	Span      profile.Span
	Exception uint8 // Modbus exception code, 0 if none
	Err       error
}

func (e *CommError) Error() string {
	if e.Exception != 0 {
		return fmt.Sprintf("read %s %d+%d: modbus exception %d", e.Span.Table, e.Span.Start, e.Span.Quantity, e.Exception)
	}
	return fmt.Sprintf("read %s %d+%d: %v", e.Span.Table, e.Span.Start, e.Span.Quantity, e.Err)
}

func (e *CommError) Unwrap() error { return e.Err }

// ModbusCode exposes the exception code for callers that sniff error codes.
func (e *CommError) ModbusCode() uint16 { return uint16(e.Exception) }

// Config is the minimal runtime config the reader needs.
type Config struct {
	Plan profile.ReadPlan

	// ReadDelay is inserted between span transactions. The UPS firmware
	// drops back-to-back requests on slow links.
	ReadDelay time.Duration
}

// Reader owns the serial connection and performs one batched read per span.
// The connection is reused while healthy and discarded on transport death;
// a future cycle re-dials through the factory.
type Reader struct {
	cfg     Config
	factory Factory
	conn    Conn
	logger  zerolog.Logger
}

// New creates a reader and dials the initial connection (fail fast at setup).
func New(cfg Config, factory Factory, logger zerolog.Logger) (*Reader, error) {
	if len(cfg.Plan) == 0 {
		return nil, errors.New("reader: read plan required")
	}
	if factory == nil {
		return nil, errors.New("reader: connection factory required")
	}
	conn, err := factory()
	if err != nil {
		return nil, fmt.Errorf("reader: connect: %w", err)
	}
	return &Reader{cfg: cfg, factory: factory, conn: conn, logger: logger}, nil
}

// ReadCycle performs exactly one poll cycle over every planned span.
// All-or-nothing: the first failure aborts the cycle.
func (r *Reader) ReadCycle() (*Frame, error) {
	words := make([][]uint16, 0, len(r.cfg.Plan))

	for i, span := range r.cfg.Plan {
		if i > 0 && r.cfg.ReadDelay > 0 {
			time.Sleep(r.cfg.ReadDelay)
		}

		conn, err := r.ensureConn()
		if err != nil {
			return nil, &CommError{Span: span, Err: err}
		}

		var payload []byte
		switch span.Table {
		case profile.TableHolding:
			payload, err = conn.ReadHoldingRegisters(span.Start, span.Quantity)
		case profile.TableInput:
			payload, err = conn.ReadInputRegisters(span.Start, span.Quantity)
		default:
			return nil, fmt.Errorf("reader: unsupported table %v", span.Table)
		}
		if err != nil {
			r.dropConn()
			r.logger.Warn().Err(err).Stringer("table", span.Table).
				Uint16("start", span.Start).Uint16("quantity", span.Quantity).
				Msg("span read failed")
			return nil, commError(span, err)
		}

		regs, err := unpackRegisters(payload, span.Quantity)
		if err != nil {
			r.dropConn()
			return nil, commError(span, err)
		}
		words = append(words, regs)
	}

	return NewFrame(r.cfg.Plan, words), nil
}

// Close releases the serial connection.
func (r *Reader) Close() error {
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

func (r *Reader) ensureConn() (Conn, error) {
	if r.conn != nil {
		return r.conn, nil
	}
	conn, err := r.factory()
	if err != nil {
		return nil, err
	}
	r.conn = conn
	return conn, nil
}

func (r *Reader) dropConn() {
	if r.conn == nil {
		return
	}
	_ = r.conn.Close()
	r.conn = nil
}

// commError classifies a transport error, surfacing the slave's exception
// code when the failure is a Modbus exception response.
func commError(span profile.Span, err error) *CommError {
	var mberr *gomodbus.ModbusError
	if errors.As(err, &mberr) {
		return &CommError{Span: span, Exception: mberr.ExceptionCode, Err: err}
	}
	return &CommError{Span: span, Err: err}
}

// unpackRegisters converts a big-endian payload into register words.
func unpackRegisters(data []byte, qty uint16) ([]uint16, error) {
	if len(data) != int(qty)*2 {
		return nil, fmt.Errorf("short register payload: got %d bytes, want %d", len(data), int(qty)*2)
	}
	out := make([]uint16, qty)
	for i := range out {
		out[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return out, nil
}
