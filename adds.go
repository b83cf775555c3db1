package main

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog/log"
)

// adUserFilter selects person user objects that carry a UPN; entries without
// one cannot be joined to the cloud directory anyway.
const adUserFilter = "(&(objectCategory=person)(objectClass=user)(userPrincipalName=*))"

const adPageSize = 1000

// filetimeEpochDiff is the number of 100ns intervals between the Windows
// FILETIME epoch (1601-01-01) and the Unix epoch.
const filetimeEpochDiff = 116444736000000000

// ADSource is the optional on-prem Active Directory collaborator. It reads
// lastLogonTimestamp for every user so hybrid identities that never touch
// cloud endpoints still show activity.
type ADSource struct {
	serverURL    string
	baseDN       string
	bindDN       string
	bindPassword string
}

func newADSource(config Config) *ADSource {
	return &ADSource{
		serverURL:    config.ADServer,
		baseDN:       config.ADBaseDN,
		bindDN:       config.ADBindDN,
		bindPassword: config.ADBindPassword,
	}
}

// FetchLogons returns last-logon times keyed by lowercased UPN.
// lastLogonTimestamp is replicated lazily and can lag the true last logon by
// up to 14 days.
func (s *ADSource) FetchLogons() (map[string]time.Time, error) {
	conn, err := ldap.DialURL(s.serverURL, ldap.DialWithDialer(&net.Dialer{Timeout: 10 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AD at %s: %w", s.serverURL, err)
	}
	defer conn.Close()

	if s.bindDN != "" {
		if err := conn.Bind(s.bindDN, s.bindPassword); err != nil {
			return nil, fmt.Errorf("AD bind failed for %s: %w", s.bindDN, err)
		}
	}

	req := ldap.NewSearchRequest(
		s.baseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		adUserFilter,
		[]string{"userPrincipalName", "lastLogonTimestamp"},
		nil,
	)
	res, err := conn.SearchWithPaging(req, adPageSize)
	if err != nil {
		return nil, fmt.Errorf("AD search failed: %w", err)
	}

	logons := logonsFromEntries(res.Entries)
	log.Debug().Int("entries", len(res.Entries)).Int("logons", len(logons)).Msg("fetched on-prem last logons")
	return logons, nil
}

func logonsFromEntries(entries []*ldap.Entry) map[string]time.Time {
	logons := make(map[string]time.Time, len(entries))
	for _, entry := range entries {
		upn := normalizeKey(entry.GetAttributeValue("userPrincipalName"))
		if upn == "" {
			continue
		}
		raw := entry.GetAttributeValue("lastLogonTimestamp")
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			// 0 means "never logged on"; treat like absent.
			continue
		}
		logons[upn] = filetimeToTime(v)
	}
	return logons
}

// filetimeToTime converts a Windows FILETIME (100ns intervals since
// 1601-01-01) to UTC.
func filetimeToTime(v int64) time.Time {
	shifted := v - filetimeEpochDiff
	return time.Unix(shifted/10000000, (shifted%10000000)*100).UTC()
}
