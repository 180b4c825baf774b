// internal/reader/reader_test.go
package reader

import (
	"errors"
	"testing"

	gomodbus "github.com/goburrow/modbus"
	"github.com/rs/zerolog"

	"github.com/tamzrod/east-ups-bridge/internal/profile"
)

type fakeConn struct {
	holding map[uint16][]byte
	input   map[uint16][]byte
	err     error

	reads  int
	closed bool
}

func (f *fakeConn) ReadHoldingRegisters(addr, qty uint16) ([]byte, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.holding[addr], nil
}

func (f *fakeConn) ReadInputRegisters(addr, qty uint16) ([]byte, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.input[addr], nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func staticFactory(conn Conn) Factory {
	return func() (Conn, error) { return conn, nil }
}

var testPlan = profile.ReadPlan{
	{Table: profile.TableInput, Start: 0, Quantity: 2},
	{Table: profile.TableHolding, Start: 5, Quantity: 1},
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}, staticFactory(&fakeConn{}), zerolog.Nop()); err == nil {
		t.Fatalf("expected error for empty plan, got nil")
	}
	if _, err := New(Config{Plan: testPlan}, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil factory, got nil")
	}
}

func TestNew_DialFailsFast(t *testing.T) {
	factory := func() (Conn, error) { return nil, errors.New("no such port") }
	if _, err := New(Config{Plan: testPlan}, factory, zerolog.Nop()); err == nil {
		t.Fatalf("expected dial error, got nil")
	}
}

func TestReadCycle_Success(t *testing.T) {
	conn := &fakeConn{
		input:   map[uint16][]byte{0: {0x09, 0x6F, 0x00, 0x01}}, // 2415, 1
		holding: map[uint16][]byte{5: {0x00, 0x10}},             // 16
	}

	r, err := New(Config{Plan: testPlan}, staticFactory(conn), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	frame, err := r.ReadCycle()
	if err != nil {
		t.Fatalf("ReadCycle() err=%v", err)
	}

	words, err := frame.Slice(profile.TableInput, 0, 2)
	if err != nil {
		t.Fatalf("Slice() err=%v", err)
	}
	if words[0] != 2415 || words[1] != 1 {
		t.Fatalf("input words=%v, want [2415 1]", words)
	}

	words, err = frame.Slice(profile.TableHolding, 5, 1)
	if err != nil {
		t.Fatalf("Slice() err=%v", err)
	}
	if words[0] != 16 {
		t.Fatalf("holding word=%d, want 16", words[0])
	}
}

func TestReadCycle_FailureIsCommError(t *testing.T) {
	conn := &fakeConn{err: errors.New("serial: timeout")}

	r, err := New(Config{Plan: testPlan}, staticFactory(conn), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	_, err = r.ReadCycle()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var commErr *CommError
	if !errors.As(err, &commErr) {
		t.Fatalf("error %v is not a CommError", err)
	}
	if !conn.closed {
		t.Fatalf("dead connection was not dropped")
	}
}

func TestReadCycle_ExceptionCodeSurfaced(t *testing.T) {
	conn := &fakeConn{err: &gomodbus.ModbusError{FunctionCode: 4, ExceptionCode: 2}}

	r, err := New(Config{Plan: testPlan}, staticFactory(conn), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	_, err = r.ReadCycle()
	var commErr *CommError
	if !errors.As(err, &commErr) {
		t.Fatalf("error %v is not a CommError", err)
	}
	if commErr.ModbusCode() != 2 {
		t.Fatalf("ModbusCode()=%d, want 2", commErr.ModbusCode())
	}
}

func TestReadCycle_RedialsAfterFailure(t *testing.T) {
	dials := 0
	bad := &fakeConn{err: errors.New("serial: timeout")}
	good := &fakeConn{
		input:   map[uint16][]byte{0: {0x00, 0x01, 0x00, 0x02}},
		holding: map[uint16][]byte{5: {0x00, 0x03}},
	}
	factory := func() (Conn, error) {
		dials++
		if dials == 1 {
			return bad, nil
		}
		return good, nil
	}

	r, err := New(Config{Plan: testPlan}, factory, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if _, err := r.ReadCycle(); err == nil {
		t.Fatalf("expected first cycle to fail")
	}
	if _, err := r.ReadCycle(); err != nil {
		t.Fatalf("second cycle err=%v", err)
	}
	if dials != 2 {
		t.Fatalf("dials=%d, want 2", dials)
	}
}

func TestReadCycle_ShortPayloadFails(t *testing.T) {
	conn := &fakeConn{
		input:   map[uint16][]byte{0: {0x09}}, // one byte for a 2-word span
		holding: map[uint16][]byte{5: {0x00, 0x10}},
	}

	r, err := New(Config{Plan: testPlan}, staticFactory(conn), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() err=%v", err)
	}

	if _, err := r.ReadCycle(); err == nil {
		t.Fatalf("expected error for short payload, got nil")
	}
}
