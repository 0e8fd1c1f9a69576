package domain

// Session-cached views of game accounts. Cross-references between the
// legacy and evol sides are carried as plain ids and resolved lazily;
// the structs never hold pointers into the other variant.

// GameAccount is the field set common to both game account variants.
type GameAccount struct {
	AccountID int    `json:"accountId"`
	Name      string `json:"name"`
}

// Char is the field set common to both character variants.
type Char struct {
	CharID    int    `json:"charId"`
	Name      string `json:"name"`
	BaseLevel int    `json:"level"`
	Gender    string `json:"sex"`
}

// LegacyAccount is a claimed account on the legacy server. RevoltID
// is the evol account it migrated into, 0 before migration.
type LegacyAccount struct {
	GameAccount
	RevoltID int           `json:"revoltId"`
	Chars    []*LegacyChar `json:"chars"`
}

// LegacyChar is a character on a legacy account. RevoltID is the evol
// character it was ported to, 0 before migration.
type LegacyChar struct {
	Char
	RevoltID   int `json:"revoltId"`
	BossPoints int `json:"-"`
}

// EvolAccount is a claimed account on the evol server. LegacyID is
// the source legacy account when the account was migrated, 0 for
// accounts created directly.
type EvolAccount struct {
	GameAccount
	LegacyID int         `json:"legacyId"`
	Chars    []*EvolChar `json:"chars"`
}

// EvolChar is a character on an evol account. LegacyID is the source
// legacy character when ported.
type EvolChar struct {
	Char
	LegacyID int `json:"legacyId"`
}

// FindLegacy returns the cached legacy account with the given id.
func FindLegacy(accounts []*LegacyAccount, accountID int) *LegacyAccount {
	for _, acc := range accounts {
		if acc.AccountID == accountID {
			return acc
		}
	}
	return nil
}

// FindEvol returns the cached evol account with the given id.
func FindEvol(accounts []*EvolAccount, accountID int) *EvolAccount {
	for _, acc := range accounts {
		if acc.AccountID == accountID {
			return acc
		}
	}
	return nil
}
