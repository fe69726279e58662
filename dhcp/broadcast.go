package dhcp

import (
	"syscall"
)

// setBroadcast enables SO_BROADCAST on conn's underlying file
// descriptor so the worker can reply with sendto's destination set
// to the configured broadcast address.
func setBroadcast(conn syscall.Conn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = syscall.SetsockoptInt(int(fd), syscall.SOL_SOCKET, syscall.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
