package entity

import (
	"fmt"
	"net"
	"net/url"
)

// maxURLLength caps url-type source inputs so a hostile caller cannot feed
// multi-megabyte strings into parsing and DNS resolution.
const maxURLLength = 2048

// privateIPv4Ranges lists the ranges a fetched source URL must not resolve
// to: RFC 1918 networks plus link-local, which covers the cloud metadata
// endpoint at 169.254.169.254.
var privateIPv4Ranges = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, subnet, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("bad CIDR literal %q: %v", cidr, err))
		}
		nets = append(nets, subnet)
	}
	return nets
}

// ValidateURL checks that a url-type source is well-formed, uses http or
// https, names a host, and does not resolve into a private network. The
// private-range check guards against server-side request forgery when the
// fetcher later retrieves the document.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	// A failed lookup is not rejected here; the fetcher will surface its
	// own error with retry semantics attached.
	ips, err := net.LookupIP(parsedURL.Hostname())
	if err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return &ValidationError{
					Field:   "url",
					Message: "url cannot point to private network",
				}
			}
		}
	}

	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return true
	}
	for _, subnet := range privateIPv4Ranges {
		if subnet.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateMaterialSource checks the transient source input before processing.
func ValidateMaterialSource(src MaterialSource) error {
	if src.Type == "" {
		return &ValidationError{Field: "type", Message: "source type is required"}
	}
	if src.Content == "" {
		return &ValidationError{Field: "content", Message: "source content is required"}
	}
	if src.Type == "url" {
		return ValidateURL(src.Content)
	}
	return nil
}
