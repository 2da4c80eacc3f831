// Package enricher adds country and AS information to tagged messages by
// resolving their addresses against MaxMind databases.
package enricher

import (
	"fmt"
	"net"

	lru "github.com/hashicorp/golang-lru"
	"github.com/oschwald/geoip2-golang"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/flowtally/flowtally/metrics"
	"github.com/flowtally/flowtally/producer"
)

// DefaultCacheSize bounds the address cache. Flow logs repeat the same
// addresses heavily, so a small cache absorbs most lookups.
const DefaultCacheSize = 8192

type geoEntry struct {
	country string
	asn     uint32
}

// Enricher resolves addresses against ASN and country databases, caching
// results per address. Either database can be absent.
type Enricher struct {
	dbAsn     *geoip2.Reader
	dbCountry *geoip2.Reader
	cache     *lru.Cache
}

// New opens the given databases. Empty paths are skipped. A cacheSize of
// zero or less disables caching.
func New(asnPath, countryPath string, cacheSize int) (*Enricher, error) {
	e := &Enricher{}

	if asnPath != "" {
		db, err := geoip2.Open(asnPath)
		if err != nil {
			return nil, fmt.Errorf("error opening ASN database: %w", err)
		}
		e.dbAsn = db
	}
	if countryPath != "" {
		db, err := geoip2.Open(countryPath)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("error opening country database: %w", err)
		}
		e.dbCountry = db
	}

	if cacheSize > 0 {
		cache, err := lru.New(cacheSize)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// Enrich fills in the country and AS attributes for both addresses.
// Lookup failures leave the attributes empty.
func (e *Enricher) Enrich(msg *producer.Message) {
	src := e.lookup(msg.SrcAddr)
	msg.SrcCountry = src.country
	msg.SrcAS = src.asn

	dst := e.lookup(msg.DstAddr)
	msg.DstCountry = dst.country
	msg.DstAS = dst.asn
}

func (e *Enricher) lookup(addr net.IP) geoEntry {
	if addr == nil {
		return geoEntry{}
	}

	key := string(addr)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			metrics.EnricherCacheStats.With(prometheus.Labels{"result": "hit"}).Inc()
			return cached.(geoEntry)
		}
	}

	var entry geoEntry
	if e.dbAsn != nil {
		if record, err := e.dbAsn.ASN(addr); err == nil {
			entry.asn = uint32(record.AutonomousSystemNumber)
		}
	}
	if e.dbCountry != nil {
		if record, err := e.dbCountry.Country(addr); err == nil {
			entry.country = record.Country.IsoCode
		}
	}

	if e.cache != nil {
		e.cache.Add(key, entry)
		metrics.EnricherCacheStats.With(prometheus.Labels{"result": "miss"}).Inc()
	}
	return entry
}

// Close closes the databases.
func (e *Enricher) Close() {
	if e.dbAsn != nil {
		e.dbAsn.Close()
		e.dbAsn = nil
	}
	if e.dbCountry != nil {
		e.dbCountry.Close()
		e.dbCountry = nil
	}
}
