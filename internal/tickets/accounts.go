package tickets

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

//go:embed accounts.json
var accountsJSON []byte

var loadAccounts = sync.OnceValues(func() (map[string]Account, error) {
	var catalog struct {
		Accounts []Account `json:"accounts"`
	}
	if err := json.Unmarshal(accountsJSON, &catalog); err != nil {
		return nil, fmt.Errorf("decode account catalog: %w", err)
	}

	byName := make(map[string]Account, len(catalog.Accounts))
	for _, a := range catalog.Accounts {
		byName[a.Name] = a
	}
	return byName, nil
})

// LookupAccount returns the catalog account whose name equals organization,
// or nil when the organization is empty or unknown.
func LookupAccount(organization string) (*Account, error) {
	if organization == "" {
		return nil, nil
	}
	accounts, err := loadAccounts()
	if err != nil {
		return nil, err
	}
	a, ok := accounts[organization]
	if !ok {
		return nil, nil
	}
	return &a, nil
}
