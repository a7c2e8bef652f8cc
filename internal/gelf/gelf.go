package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// GELF syslog levels used by Write.
const (
	LevelError   = 3
	LevelWarning = 4
	LevelInfo    = 6
)

// Writer ships each log line as one GELF 1.1 message over UDP. It is an
// io.Writer so main can tee the standard logger into it.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New dials addr (e.g. "graylog:12201") and tags every message with service.
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}

// Write never fails the log call; a dropped datagram is acceptable.
func (w *Writer) Write(p []byte) (int, error) {
	short := stripLogPrefix(strings.TrimRight(string(p), "\n"))

	payload, err := json.Marshal(map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": short,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
		"level":         levelOf(short),
		"_service":      w.service,
	})
	if err != nil {
		return len(p), nil
	}

	w.conn.Write(payload)
	return len(p), nil
}

// stripLogPrefix drops the standard logger's "2006/01/02 15:04:05 " stamp.
func stripLogPrefix(msg string) string {
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' && msg[13] == ':' && msg[19] == ' ' {
		return msg[20:]
	}
	return msg
}

func levelOf(msg string) int {
	switch {
	case strings.Contains(msg, "PANIC:"), strings.Contains(msg, "Fatal"), strings.HasPrefix(msg, "Error:"):
		return LevelError
	case strings.HasPrefix(msg, "Warning:"):
		return LevelWarning
	}
	return LevelInfo
}
