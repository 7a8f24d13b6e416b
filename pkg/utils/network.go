package utils

import (
	"encoding/binary"
	"net"
)

// IPToInt converts an IP address to a 32-bit integer for sorting
func IPToInt(ip net.IP) uint32 {
	if ip == nil {
		return 0
	}
	if len(ip) == 16 {
		if ip.To4() == nil {
			return 0
		}
		return binary.BigEndian.Uint32(ip[12:16])
	}
	return binary.BigEndian.Uint32(ip)
}

// IntToIP converts a 32-bit integer back to an IP address
func IntToIP(n uint32) net.IP {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, n)
	return ip
}

// SortKey returns a sortable integer for a textual IP, 0 when unparseable
func SortKey(ip string) uint32 {
	return IPToInt(net.ParseIP(ip))
}
