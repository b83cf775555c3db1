package main

import (
	"testing"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
)

func TestFiletimeToTime(t *testing.T) {
	// 2024-01-01T00:00:00Z expressed as 100ns intervals since 1601-01-01.
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), filetimeToTime(133485408000000000))
	assert.Equal(t, time.Unix(0, 0).UTC(), filetimeToTime(filetimeEpochDiff))
	assert.Equal(t, time.Unix(1, 0).UTC(), filetimeToTime(filetimeEpochDiff+10000000))
}

func TestLogonsFromEntries(t *testing.T) {
	entries := []*ldap.Entry{
		ldap.NewEntry("CN=Jane,OU=Users,DC=x,DC=com", map[string][]string{
			"userPrincipalName":  {"Jane@X.COM"},
			"lastLogonTimestamp": {"133485408000000000"},
		}),
		ldap.NewEntry("CN=NeverLoggedOn,OU=Users,DC=x,DC=com", map[string][]string{
			"userPrincipalName":  {"fresh@x.com"},
			"lastLogonTimestamp": {"0"},
		}),
		ldap.NewEntry("CN=NoTimestamp,OU=Users,DC=x,DC=com", map[string][]string{
			"userPrincipalName": {"stale@x.com"},
		}),
		ldap.NewEntry("CN=Garbage,OU=Users,DC=x,DC=com", map[string][]string{
			"userPrincipalName":  {"garbage@x.com"},
			"lastLogonTimestamp": {"not-a-number"},
		}),
		ldap.NewEntry("CN=NoUPN,OU=Users,DC=x,DC=com", map[string][]string{
			"lastLogonTimestamp": {"133485408000000000"},
		}),
	}

	logons := logonsFromEntries(entries)

	// Only the entry with a UPN and a positive timestamp survives, keyed
	// lowercase so the merge stage finds it.
	assert.Len(t, logons, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), logons["jane@x.com"])
}
