package server

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/lightcrafter/dlpc350/internal/discovery"
	"github.com/lightcrafter/dlpc350/internal/logging"
	"github.com/lightcrafter/dlpc350/internal/version"
)

// TXTRecords returns the mDNS TXT records describing the bridge
func TXTRecords() []string {
	return []string{
		discovery.TXTPath + "=" + PacketPath,
		discovery.TXTVersion + "=" + version.Version,
	}
}

// Advertise registers the bridge as a discovery.ServiceType service.
// The caller must Shutdown the returned server.
func Advertise(instance string, port int) (*zeroconf.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "dlpc350"
		}
		instance = "dlpc350-bridge-" + host
	}

	srv, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, TXTRecords(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("mDNS service registered",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return srv, nil
}
