package server

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// LANAddresses returns the non-loopback IPv4 addresses of this host.
func LANAddresses() ([]string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list network interfaces")
	}
	return lanIPv4(addrs), nil
}

func lanIPv4(addrs []net.Addr) []string {
	ips := lo.FilterMap(addrs, func(a net.Addr, _ int) (string, bool) {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			return "", false
		}
		ip4 := ipNet.IP.To4()
		if ip4 == nil {
			return "", false
		}
		return ip4.String(), true
	})
	return lo.Uniq(ips)
}

// URLs lists the addresses a browser can use to reach a server listening on
// host:port. A wildcard host expands to localhost plus every LAN address.
func URLs(host string, port int, lan []string) []string {
	p := strconv.Itoa(port)
	if host != "" && host != "0.0.0.0" && host != "::" {
		return []string{"http://" + net.JoinHostPort(host, p)}
	}
	urls := []string{"http://" + net.JoinHostPort("localhost", p)}
	for _, ip := range lan {
		urls = append(urls, "http://"+net.JoinHostPort(ip, p))
	}
	return urls
}
