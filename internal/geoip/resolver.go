// Package geoip annotates exit IPs with country/city/provider data
// from a local MaxMind database. The resolver is optional; without a
// database path the checker runs unannotated.
package geoip

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/layerist/proxy-checker/internal/model"
)

type Resolver struct {
	db *geoip2.Reader
}

var _ model.IPResolver = (*Resolver)(nil)

// Open loads a GeoIP2/GeoLite2 .mmdb file.
func Open(path string) (*Resolver, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &Resolver{db: db}, nil
}

func (r *Resolver) Close() error {
	return r.db.Close()
}

func (r *Resolver) Lookup(ip string) (model.GeoInfo, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return model.GeoInfo{}, fmt.Errorf("invalid ip: %q", ip)
	}

	city, err := r.db.City(parsed)
	if err != nil {
		return model.GeoInfo{}, fmt.Errorf("city lookup: %w", err)
	}

	info := model.GeoInfo{
		Country: city.Country.Names["en"],
		City:    city.City.Names["en"],
	}

	// ISP comes from the ASN org when the database carries it; a
	// City-only database simply leaves it blank.
	if asn, err := r.db.ASN(parsed); err == nil {
		info.ISP = asn.AutonomousSystemOrganization
	}

	return info, nil
}
