// Package telnet serves game sessions over Telnet, one session per connection.
package telnet

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"
)

// RFC 854 command bytes and the options the server talks about.
const (
	cmdSE   byte = 240
	cmdSB   byte = 250
	cmdWILL byte = 251
	cmdWONT byte = 252
	cmdDO   byte = 253
	cmdDONT byte = 254
	cmdIAC  byte = 255

	optSuppressGoAhead byte = 3
)

const (
	keyBackspace byte = 0x08
	keyDelete    byte = 0x7f
)

// Conn is one player's Telnet connection. It strips protocol commands and line
// editing from input and exposes the line surface a console.Prompter drives.
type Conn struct {
	raw net.Conn
	in  *bufio.Reader

	// afterCR is set when the last line ended on CR; a following LF or NUL belongs to it.
	afterCR bool

	writeMu sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps raw. A zero timeout disables that deadline.
//
// Precondition: raw must be an open connection.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		in:           bufio.NewReader(raw),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate tells the client the server will not send go-ahead. Echo stays with the client.
func (c *Conn) Negotiate() error {
	return c.send([]byte{cmdIAC, cmdWILL, optSuppressGoAhead})
}

// ReadLine returns the next answer the player typed.
//
// Telnet commands are dropped, backspace and delete erase the previous character,
// other control bytes except tab are ignored. CR, LF, CR LF and CR NUL all end a line.
//
// Postcondition: On error the partial line read so far is returned with it (io.EOF included).
// ReadLine must not be called concurrently.
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line []byte
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			return string(line), err
		}
		if c.afterCR {
			c.afterCR = false
			if b == '\n' || b == 0 {
				continue
			}
		}
		switch {
		case b == cmdIAC:
			if err := c.skipCommand(); err != nil {
				return string(line), err
			}
		case b == '\r':
			c.afterCR = true
			return string(line), nil
		case b == '\n':
			return string(line), nil
		case b == keyBackspace || b == keyDelete:
			if len(line) > 0 {
				line = line[:len(line)-1]
			}
		case b < ' ' && b != '\t':
		default:
			line = append(line, b)
		}
	}
}

// skipCommand consumes the rest of a command whose IAC has been read.
func (c *Conn) skipCommand() error {
	cmd, err := c.in.ReadByte()
	if err != nil {
		return err
	}
	switch cmd {
	case cmdWILL, cmdWONT, cmdDO, cmdDONT:
		_, err = c.in.ReadByte()
		return err
	case cmdSB:
		return c.skipSubnegotiation()
	}
	return nil
}

func (c *Conn) skipSubnegotiation() error {
	sawIAC := false
	for {
		b, err := c.in.ReadByte()
		if err != nil {
			return err
		}
		if sawIAC && b == cmdSE {
			return nil
		}
		sawIAC = b == cmdIAC && !sawIAC
	}
}

// WriteLine sends text and a CR LF. Embedded newlines are sent as CR LF too.
func (c *Conn) WriteLine(text string) error {
	return c.send([]byte(strings.ReplaceAll(text, "\n", "\r\n") + "\r\n"))
}

// WritePrompt sends prompt and leaves the cursor after it.
func (c *Conn) WritePrompt(prompt string) error {
	return c.send([]byte(prompt))
}

func (c *Conn) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// Close closes the connection; a blocked ReadLine returns an error.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the client address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raw.RemoteAddr()
}
