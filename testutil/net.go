/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package testutil

import (
	"errors"
	"fmt"
	"net"
	"time"
)

// GetLocalFreeTCPPort returns free (not listening by somebody) TCP port on the 127.0.0.1 network interface.
func GetLocalFreeTCPPort() int {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic(err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	if err = listener.Close(); err != nil {
		panic(err)
	}
	return port
}

// GetLocalAddrWithFreeTCPPort returns 127.0.0.1:<free-tcp-port> address.
func GetLocalAddrWithFreeTCPPort() string {
	return fmt.Sprintf("127.0.0.1:%d", GetLocalFreeTCPPort())
}

// WaitListeningServer waits until the server is ready to accept TCP connection on the passing address.
func WaitListeningServer(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if conn, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
			return conn.Close()
		}
		if time.Now().After(deadline) {
			return errors.New("waiting listening server timed out")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
