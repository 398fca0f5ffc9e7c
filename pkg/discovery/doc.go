// Package discovery finds meshlink radios on the local network via mDNS.
//
// Network-attached radios announce a _meshlink._tcp service carrying their
// node identity in TXT records. Browser watches for these announcements and
// aggregates addresses across interfaces; Advertiser publishes the service
// for radios (and simulators) that accept TCP clients.
package discovery
