package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	GA   byte = 249 // Go Ahead
	NOP  byte = 241
	SE   byte = 240 // Sub-negotiation End

	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

const (
	backspace byte = 8
	del       byte = 127
)

// maxLineLength bounds a single input line; excess bytes are discarded.
const maxLineLength = 512

// Conn wraps a TCP connection with line-oriented Telnet I/O.
// Reads must come from one goroutine; writes are serialized.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead. Echo stays with the client.
//
// Postcondition: Negotiation bytes are written to the connection.
func (c *Conn) Negotiate() error {
	return c.Write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads one line of input. IAC sequences and control characters are
// dropped, backspace and DEL erase the previous byte, and the line ends at LF,
// CR, or CR LF. Lines longer than maxLineLength are truncated.
//
// Postcondition: Returns the line without its terminator, or an error (including io.EOF)
// together with whatever was read before it.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	line := make([]byte, 0, 64)
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return string(line), err
		}

		switch {
		case b == IAC:
			if err := c.skipCommand(); err != nil {
				return string(line), err
			}
		case b == '\n':
			return string(line), nil
		case b == '\r':
			if next, err := c.reader.Peek(1); err == nil && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			return string(line), nil
		case b == backspace || b == del:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b < 32 && b != '\t':
		default:
			if len(line) < maxLineLength {
				line = append(line, b)
			}
		}
	}
}

// skipCommand consumes the remainder of an IAC sequence whose IAC byte has
// already been read.
func (c *Conn) skipCommand() error {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		_, err = c.reader.ReadByte()
		return err
	case SB:
		var prev byte
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return err
			}
			if prev == IAC && b == SE {
				return nil
			}
			prev = b
		}
	}
	return nil
}

// WriteLines sends each entry followed by CRLF. Embedded newlines inside an
// entry are converted to CRLF so multi-line entries render on raw terminals.
//
// Postcondition: Every entry is written, or the first write error is returned.
func (c *Conn) WriteLines(lines ...string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(strings.ReplaceAll(strings.TrimRight(l, "\n"), "\n", "\r\n"))
		b.WriteString("\r\n")
	}
	return c.Write([]byte(b.String()))
}

// WritePrompt sends a prompt string without a trailing newline.
//
// Postcondition: The prompt text is written to the connection.
func (c *Conn) WritePrompt(prompt string) error {
	return c.Write([]byte(prompt))
}

// Write sends raw bytes to the client under the write deadline.
//
// Postcondition: The data is written to the connection, or an error is returned.
func (c *Conn) Write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the underlying TCP connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}

// FilterIAC removes Telnet IAC sequences from raw input bytes. An escaped
// IAC IAC pair yields one literal 0xFF; a trailing lone IAC is kept.
//
// Postcondition: Returns input with all IAC sequences removed.
func FilterIAC(input []byte) []byte {
	out := make([]byte, 0, len(input))
	for i := 0; i < len(input); {
		if input[i] != IAC || i+1 >= len(input) {
			out = append(out, input[i])
			i++
			continue
		}
		switch input[i+1] {
		case WILL, WONT, DO, DONT:
			i += 3
		case SB:
			j := i + 2
			for j < len(input) && !(input[j-1] == IAC && input[j] == SE && j-1 > i+1) {
				j++
			}
			i = j + 1
		case IAC:
			out = append(out, IAC)
			i += 2
		default:
			i += 2
		}
	}
	return out
}
