// Package x11 enumerates window titles over a native X connection using the
// EWMH _NET_CLIENT_LIST property on the root window.
package x11

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Snapshotter implements window.Snapshotter for X11
type Snapshotter struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

// NewSnapshotter connects to the X server and interns the atoms needed for
// client-list and window-name lookups.
func NewSnapshotter() (*Snapshotter, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	setup := xproto.Setup(conn)
	root := setup.DefaultScreen(conn).Root

	s := &Snapshotter{
		conn:  conn,
		root:  root,
		atoms: make(map[string]xproto.Atom),
	}

	atomNames := []string{
		"_NET_CLIENT_LIST",
		"_NET_WM_NAME",
		"WM_NAME",
		"UTF8_STRING",
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to intern atom %s: %w", name, err)
		}
		s.atoms[name] = reply.Atom
	}

	return s, nil
}

// Source returns "x11"
func (s *Snapshotter) Source() string {
	return "x11"
}

// IsAvailable checks whether an X display is reachable
func (s *Snapshotter) IsAvailable() bool {
	return os.Getenv("DISPLAY") != ""
}

// Close shuts down the X connection
func (s *Snapshotter) Close() error {
	s.conn.Close()
	return nil
}

// Titles returns the title of every client window known to the window
// manager. Windows without a name property are skipped.
func (s *Snapshotter) Titles() ([]string, error) {
	clients, err := s.clientList()
	if err != nil {
		return nil, err
	}

	var titles []string
	for _, w := range clients {
		if title := s.windowName(w); title != "" {
			titles = append(titles, title)
		}
	}

	return titles, nil
}

// clientList reads _NET_CLIENT_LIST from the root window.
func (s *Snapshotter) clientList() ([]xproto.Window, error) {
	data, err := s.getProperty(s.root, s.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 1024)
	if err != nil {
		return nil, fmt.Errorf("failed to read _NET_CLIENT_LIST: %w", err)
	}

	windows := make([]xproto.Window, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		windows = append(windows, xproto.Window(binary.LittleEndian.Uint32(data[i:i+4])))
	}

	return windows, nil
}

// windowName tries _NET_WM_NAME first (UTF-8), then the legacy WM_NAME.
func (s *Snapshotter) windowName(w xproto.Window) string {
	data, err := s.getProperty(w, s.atoms["_NET_WM_NAME"], s.atoms["UTF8_STRING"], 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	data, err = s.getProperty(w, s.atoms["WM_NAME"], xproto.AtomString, 256)
	if err == nil && len(data) > 0 {
		return strings.TrimRight(string(data), "\x00")
	}

	return ""
}

func (s *Snapshotter) getProperty(w xproto.Window, atom xproto.Atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(s.conn, false, w, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}
