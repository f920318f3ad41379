//go:build !linux

package server

import "net"

// listen на прочих платформах использует системный backlog по умолчанию.
func listen(address string, _ int) (net.Listener, error) {
	return net.Listen("tcp", address)
}
