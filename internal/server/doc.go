// Package server exposes a DLPC350 transport over WebSocket.
//
// The bridge lets a host without USB access drive a controller (or the
// emulator) attached to another machine. Each binary WebSocket message
// carries exactly one 64-byte packet in either direction; the bridge does not
// look inside transactions, it only forwards packets.
//
// # Endpoints
//
//	GET /packets   WebSocket upgrade, one client at a time
//	GET /status    JSON summary of the bridge and the device link
//
// A second client is refused with 409 Conflict while the first is attached,
// since the controller protocol has no way to multiplex transactions.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8350, Advertise: true}, dev)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Service Advertisement
//
// With Advertise set, the bridge registers a "_dlpc350._tcp" service via
// mDNS so that the discovery package can find it. TXT records carry the
// WebSocket path.
//
// # Packet Capture
//
// When CaptureDir is set, every forwarded packet is appended to a JSON Lines
// file in that directory together with its decoded header.
//
// # Graceful Shutdown
//
// The server handles SIGINT and SIGTERM signals for graceful shutdown:
//  1. Withdraw the mDNS advertisement
//  2. Close the attached client
//  3. Stop the HTTP server
package server
