// Package discovery finds DLPC350 WebSocket bridges on the local network.
//
// Bridges started with advertisement enabled register a "_dlpc350._tcp"
// service via multicast DNS. The scanner browses for that service type and
// turns each answer into a Bridge carrying the WebSocket URL a transport can
// dial.
//
// # Usage Example
//
//	bridges, err := discovery.ScanForBridges(3 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, b := range bridges {
//	    fmt.Println(b.Instance, b.URL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Bridges must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
