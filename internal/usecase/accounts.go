// Package usecase contains application business logic.
package usecase

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/eliteGoblin/focusd/launch_mgr/internal/domain"
	"github.com/eliteGoblin/focusd/launch_mgr/internal/keyvalue"
)

// ListAccounts builds the display list of cached logins from the raw
// loginusers.vdf text, most recent login first. Records without an account
// name are dropped. Unparseable input yields an empty list.
func ListAccounts(raw string) []domain.CachedAccount {
	records := keyvalue.Parse(raw)
	accounts := make([]domain.CachedAccount, 0, records.Len())

	for _, id := range records.Keys() {
		rec, _ := records.Get(id)
		name, _ := rec.Get("AccountName")
		if name == "" {
			continue
		}

		acc := domain.CachedAccount{
			ExternalID:  id,
			AccountName: name,
			DisplayName: domain.UnknownName,
		}
		if persona, ok := rec.Get("PersonaName"); ok {
			acc.DisplayName = persona
		}
		if ts, ok := rec.Get("Timestamp"); ok {
			if n, err := strconv.ParseUint(strings.TrimSpace(ts), 10, 64); err == nil {
				acc.LastLoginTimestamp = n
			}
		}
		acc.IsMostRecent = flag(rec, "MostRecent")
		acc.AllowAutoLogin = flag(rec, "AllowAutoLogin")
		acc.WantsOfflineMode = flag(rec, "WantsOfflineMode")

		accounts = append(accounts, acc)
	}

	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].LastLoginTimestamp > accounts[j].LastLoginTimestamp
	})
	return accounts
}

func flag(rec keyvalue.Record, field string) bool {
	v, _ := rec.Get(field)
	return v == "1"
}

// ResolveAccountID maps an account name to the 32-bit local id the running
// client reports. The match is case-insensitive. ok is false when no usable
// record exists for the name.
func ResolveAccountID(raw, accountName string) (uint32, bool) {
	records := keyvalue.Parse(raw)
	for _, id := range records.Keys() {
		rec, _ := records.Get(id)
		name, _ := rec.Get("AccountName")
		if !strings.EqualFold(name, accountName) {
			continue
		}
		if local, ok := localAccountID(id); ok {
			return local, true
		}
	}
	return 0, false
}

// localAccountID converts a 64-bit external id to its local id.
func localAccountID(externalID string) (uint32, bool) {
	id64, err := strconv.ParseUint(externalID, 10, 64)
	if err != nil || id64 <= domain.SteamIDBase {
		return 0, false
	}
	local := id64 - domain.SteamIDBase
	if local > math.MaxUint32 {
		return 0, false
	}
	return uint32(local), true
}

// LoadAccounts reads the login cache at path. A missing file is an empty list.
func LoadAccounts(files domain.TextFileStore, path string) ([]domain.CachedAccount, error) {
	if !files.Exists(path) {
		return []domain.CachedAccount{}, nil
	}
	raw, err := files.ReadText(path)
	if err != nil {
		return nil, fmt.Errorf("read login cache: %w", err)
	}
	return ListAccounts(raw), nil
}

// ResolveFromFile is ResolveAccountID over the login cache at path.
func ResolveFromFile(files domain.TextFileStore, path, accountName string) (uint32, bool) {
	raw, err := files.ReadText(path)
	if err != nil {
		return 0, false
	}
	return ResolveAccountID(raw, accountName)
}
