package receiver

import (
	"fmt"

	"go.bug.st/serial"
)

// Port is a serial byte source. The receiver never reopens or reconfigures
// it; closing the port is how a caller cancels a blocked read.
type Port struct {
	port serial.Port
}

// OpenPort opens the serial device in 8N1 framing at the given baud rate.
func OpenPort(path string, baud int) (*Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("receiver: open serial port %s: %w", path, err)
	}
	return &Port{port: p}, nil
}

func (p *Port) Read(b []byte) (int, error)  { return p.port.Read(b) }
func (p *Port) Write(b []byte) (int, error) { return p.port.Write(b) }
func (p *Port) Close() error                { return p.port.Close() }
