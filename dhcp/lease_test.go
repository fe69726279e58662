package dhcp

import (
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

func TestGrantThenLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leases.csv")
	s := NewStore(path)
	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")

	require.NoError(t, s.Grant(mac, net.ParseIP("192.168.1.10")))

	lease, ok := s.Lookup(mac)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.10", lease.IP.String())
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leases.csv")
	s := NewStore(path)
	mac, _ := net.ParseMAC("11:22:33:44:55:66")
	require.NoError(t, s.Grant(mac, net.ParseIP("10.0.0.5")))

	reloaded := NewStore(path)
	require.NoError(t, reloaded.Load(discardLogger()))

	lease, ok := reloaded.Lookup(mac)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", lease.IP.String())
}

func TestLoadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leases.csv")
	require.NoError(t, os.WriteFile(path, []byte("not,a,valid,line\naa:bb:cc:dd:ee:ff,10.0.0.1,9999999999\ngarbage\n"), 0o644))

	s := NewStore(path)
	require.NoError(t, s.Load(discardLogger()))

	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")
	lease, ok := s.Lookup(mac)
	require.True(t, ok)
	assert.Equal(t, "10.0.0.1", lease.IP.String())
	assert.Equal(t, 1, len(s.leases))
}

func TestNextIPSkipsZeroOctetAndActiveLeases(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "leases.csv"))
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	from := net.ParseIP("192.168.1.0")
	to := net.ParseIP("192.168.1.10")

	macA, _ := net.ParseMAC("00:00:00:00:00:01")
	require.NoError(t, s.Grant(macA, net.ParseIP("192.168.1.1")))

	ip, ok := s.NextIP(from, to)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.2", ip.String())
}

func TestNextIPExhausted(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "leases.csv"))
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	from := net.ParseIP("192.168.1.1")
	to := net.ParseIP("192.168.1.1")
	mac, _ := net.ParseMAC("00:00:00:00:00:02")
	require.NoError(t, s.Grant(mac, net.ParseIP("192.168.1.1")))

	_, ok := s.NextIP(from, to)
	assert.False(t, ok)
}

func TestNextIPIgnoresExpiredLease(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "leases.csv"))
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return past }

	mac, _ := net.ParseMAC("00:00:00:00:00:03")
	require.NoError(t, s.Grant(mac, net.ParseIP("192.168.1.1")))

	s.now = func() time.Time { return past.Add(48 * time.Hour) }

	ip, ok := s.NextIP(net.ParseIP("192.168.1.1"), net.ParseIP("192.168.1.1"))
	require.True(t, ok)
	assert.Equal(t, "192.168.1.1", ip.String())
}
